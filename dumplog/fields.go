package dumplog

import (
	"errors"
	"strings"
)

var errUnbalancedBrackets = errors.New("unbalanced '[' ']'")

// parseBatchHeader parses a batch-header line into a partially-populated
// Batch (Label/Line/Messages are filled in by the caller). text is the full
// line, not yet trimmed of the "| " record prefix (batch headers never carry
// one).
func parseBatchHeader(label string, lineNum int, text string) (*Batch, error) {
	sc := newScanner(text)
	b := &Batch{Label: label, Line: lineNum}

	type step struct {
		key string
		fn  func(v string) error
	}
	steps := []step{
		{"baseOffset", func(v string) (err error) { b.BaseOffset, err = parseInt64(v); return }},
		{"lastOffset", func(v string) (err error) { b.LastOffset, err = parseInt64(v); return }},
		{"count", func(v string) error { n, err := parseInt32(v); b.Count = n; return err }},
		{"baseSequence", func(v string) error { n, err := parseInt32(v); b.BaseSequence = n; return err }},
		{"lastSequence", func(v string) error { n, err := parseInt32(v); b.LastSequence = n; return err }},
		{"producerId", func(v string) (err error) { b.ProducerID, err = parseInt64(v); return }},
		{"producerEpoch", func(v string) error { n, err := parseInt16(v); b.ProducerEpoch = n; return err }},
		{"partitionLeaderEpoch", func(v string) error { n, err := parseInt32(v); b.PartitionLeaderEpoch = n; return err }},
		{"isTransactional", func(v string) (err error) { b.IsTransactional, err = parseBool(v); return }},
		{"isControl", func(v string) (err error) { b.IsControl, err = parseBool(v); return }},
	}
	for _, st := range steps {
		if err := sc.expectKey(st.key); err != nil {
			return nil, unexpected(label, lineNum, "batch header: %v", err)
		}
		v, err := sc.valueToken()
		if err != nil {
			return nil, unexpected(label, lineNum, "batch header field %q: %v", st.key, err)
		}
		if err := st.fn(v); err != nil {
			return nil, unexpected(label, lineNum, "batch header field %q value %q: %v", st.key, v, err)
		}
	}

	if sc.peekKey("deleteHorizonMs") {
		_ = sc.expectKey("deleteHorizonMs")
		v, err := sc.valueToken()
		if err != nil {
			return nil, unexpected(label, lineNum, "batch header field %q: %v", "deleteHorizonMs", err)
		}
		if v != "OptionalLong.empty" {
			n, err := parseInt64(v)
			if err != nil {
				return nil, unexpected(label, lineNum, "batch header field %q value %q: %v", "deleteHorizonMs", v, err)
			}
			b.DeleteHorizonMs = &n
		}
	}

	tailSteps := []step{
		{"position", func(v string) (err error) { b.Position, err = parseInt64(v); return }},
		{"CreateTime", func(v string) (err error) { b.CreateTime, err = parseInt64(v); return }},
		{"size", func(v string) error { n, err := parseInt32(v); b.Size = n; return err }},
		{"magic", func(v string) (err error) { b.Magic, err = parseInt8(v); return }},
	}
	for _, st := range tailSteps {
		if err := sc.expectKey(st.key); err != nil {
			return nil, unexpected(label, lineNum, "batch header: %v", err)
		}
		v, err := sc.valueToken()
		if err != nil {
			return nil, unexpected(label, lineNum, "batch header field %q: %v", st.key, err)
		}
		if err := st.fn(v); err != nil {
			return nil, unexpected(label, lineNum, "batch header field %q value %q: %v", st.key, v, err)
		}
	}

	if err := sc.expectKey("compresscodec"); err != nil {
		return nil, unexpected(label, lineNum, "batch header: %v", err)
	}
	codec, err := sc.valueToken()
	if err != nil {
		return nil, unexpected(label, lineNum, "batch header field %q: %v", "compresscodec", err)
	}
	if strings.EqualFold(codec, "none") {
		b.CompressCodec = "none"
	} else {
		b.CompressCodec = strings.ToUpper(codec)
	}

	if err := sc.expectKey("crc"); err != nil {
		return nil, unexpected(label, lineNum, "batch header: %v", err)
	}
	crcStr, err := sc.valueToken()
	if err != nil {
		return nil, unexpected(label, lineNum, "batch header field %q: %v", "crc", err)
	}
	if b.CRC, err = parseUint32(crcStr); err != nil {
		return nil, unexpected(label, lineNum, "batch header field %q value %q: %v", "crc", crcStr, err)
	}

	if err := sc.expectKey("isvalid"); err != nil {
		return nil, unexpected(label, lineNum, "batch header: %v", err)
	}
	validStr, err := sc.valueToken()
	if err != nil {
		return nil, unexpected(label, lineNum, "batch header field %q: %v", "isvalid", err)
	}
	if b.IsValid, err = parseBool(validStr); err != nil {
		return nil, unexpected(label, lineNum, "batch header field %q value %q: %v", "isvalid", validStr, err)
	}

	return b, nil
}

// parseRecordPrefix parses the common shape of every record line, up through
// headerKeys, shared by data, control, and transaction-state records.
func parseRecordPrefix(label string, lineNum int, text string) (base, *scanner, error) {
	if !strings.HasPrefix(text, "| ") {
		return base{}, nil, unexpected(label, lineNum, "record line missing '| ' prefix")
	}
	sc := newScanner(text[2:])
	bm := base{Label: label, Line: lineNum}

	if err := sc.expectKey("offset"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	v, err := sc.valueToken()
	if err != nil {
		return base{}, nil, illegalState(label, lineNum, "record offset: %v", err)
	}
	if bm.Offset, err = parseInt64(v); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record offset %q: %v", v, err)
	}

	if err := sc.expectKey("CreateTime"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	if v, err = sc.valueToken(); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record CreateTime: %v", err)
	}
	if bm.CreateTime, err = parseInt64(v); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record CreateTime %q: %v", v, err)
	}

	if err := sc.expectKey("keySize"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	if v, err = sc.valueToken(); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record keySize: %v", err)
	}
	if n, err := parseInt32(v); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record keySize %q: %v", v, err)
	} else {
		bm.KeySize = n
	}

	if err := sc.expectKey("valueSize"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	if v, err = sc.valueToken(); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record valueSize: %v", err)
	}
	if n, err := parseInt32(v); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record valueSize %q: %v", v, err)
	} else {
		bm.ValueSize = n
	}

	if err := sc.expectKey("sequence"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	if v, err = sc.valueToken(); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record sequence: %v", err)
	}
	if n, err := parseInt32(v); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record sequence %q: %v", v, err)
	} else {
		bm.Sequence = n
	}

	if err := sc.expectKey("headerKeys"); err != nil {
		return base{}, nil, illegalState(label, lineNum, "record: %v", err)
	}
	hk, err := sc.bracketValue()
	if err != nil {
		return base{}, nil, illegalState(label, lineNum, "record headerKeys: %v", err)
	}
	bm.HeaderKeys = hk

	return bm, sc, nil
}

// parseDataOrControl parses the remainder of a record line after headerKeys,
// for DATA/CONSUMER_OFFSETS-flavored segments: either an optional opaque
// "payload: ..." (data) or "endTxnMarker: COMMIT|ABORT coordinatorEpoch: N"
// (control).
func parseDataOrControl(label string, lineNum int, bm base, sc *scanner) (BaseMessage, error) {
	if sc.atEnd() {
		return DataMessage{bm}, nil
	}
	if sc.peekKey("endTxnMarker") {
		_ = sc.expectKey("endTxnMarker")
		marker, err := sc.valueToken()
		if err != nil {
			return nil, illegalState(label, lineNum, "control record endTxnMarker: %v", err)
		}
		var commit bool
		switch marker {
		case "COMMIT":
			commit = true
		case "ABORT":
			commit = false
		default:
			return nil, illegalState(label, lineNum, "control record endTxnMarker %q, want COMMIT or ABORT", marker)
		}
		if err := sc.expectKey("coordinatorEpoch"); err != nil {
			return nil, illegalState(label, lineNum, "control record: %v", err)
		}
		v, err := sc.valueToken()
		if err != nil {
			return nil, illegalState(label, lineNum, "control record coordinatorEpoch: %v", err)
		}
		epoch, err := parseInt32(v)
		if err != nil {
			return nil, illegalState(label, lineNum, "control record coordinatorEpoch %q: %v", v, err)
		}
		return ControlMessage{base: bm, Commit: commit, CoordinatorEpoch: epoch}, nil
	}
	if err := sc.expectKey("payload"); err != nil {
		return nil, illegalState(label, lineNum, "data record: %v", err)
	}
	return DataMessage{bm}, nil
}

// parseTransactionState parses the remainder of a record line after
// headerKeys, for TRANSACTION_STATE segments.
func parseTransactionState(label string, lineNum int, bm base, sc *scanner) (BaseMessage, error) {
	if err := sc.expectKey("key"); err != nil {
		return nil, unexpected(label, lineNum, "transaction-state record: %v", err)
	}
	keyTok, err := sc.valueToken()
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state record key: %v", err)
	}
	const keyPrefix = "transaction_metadata::transactionalId="
	if !strings.HasPrefix(keyTok, keyPrefix) {
		return nil, unexpected(label, lineNum, "transaction-state record key %q missing %q prefix", keyTok, keyPrefix)
	}
	transactionalID := strings.TrimPrefix(keyTok, keyPrefix)

	if err := sc.expectKey("payload"); err != nil {
		return nil, unexpected(label, lineNum, "transaction-state record: %v", err)
	}
	payload := sc.remaining()

	if payload == "<DELETE>" {
		return TransactionStateDeletion{base: bm, TransactionalID: transactionalID}, nil
	}

	fields, err := splitTopLevelCommas(payload)
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state payload %q: %v", payload, err)
	}
	vals := map[string]string{}
	for _, f := range fields {
		k, v, ok := cutKV(f)
		if !ok {
			return nil, unexpected(label, lineNum, "transaction-state payload field %q missing ':' or '='", f)
		}
		vals[k] = v
	}
	want := []string{"producerId", "producerEpoch", "state", "partitions", "txnLastUpdateTimestamp", "txnTimeoutMs"}
	for _, k := range want {
		if _, ok := vals[k]; !ok {
			return nil, unexpected(label, lineNum, "transaction-state payload %q missing field %q", payload, k)
		}
	}

	producerID, err := parseInt64(vals["producerId"])
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state payload producerId %q: %v", vals["producerId"], err)
	}
	producerEpoch, err := parseInt16(vals["producerEpoch"])
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state payload producerEpoch %q: %v", vals["producerEpoch"], err)
	}
	state, ok := parseTxnState(vals["state"])
	if !ok {
		return nil, unexpected(label, lineNum, "transaction-state payload unknown state %q", vals["state"])
	}
	lastUpdate, err := parseInt64(vals["txnLastUpdateTimestamp"])
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state payload txnLastUpdateTimestamp %q: %v", vals["txnLastUpdateTimestamp"], err)
	}
	timeoutMs, err := parseInt64(vals["txnTimeoutMs"])
	if err != nil {
		return nil, unexpected(label, lineNum, "transaction-state payload txnTimeoutMs %q: %v", vals["txnTimeoutMs"], err)
	}

	return TransactionStateChange{
		base:                   bm,
		TransactionalID:        transactionalID,
		ProducerID:             producerID,
		ProducerEpoch:          producerEpoch,
		State:                  state,
		Partitions:             vals["partitions"],
		TxnLastUpdateTimestamp: lastUpdate,
		TxnTimeoutMs:           timeoutMs,
	}, nil
}

// splitTopLevelCommas splits on commas that are not nested inside brackets.
func splitTopLevelCommas(s string) ([]string, error) {
	var fields []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, errUnbalancedBrackets
			}
		case ',':
			if depth == 0 {
				fields = append(fields, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errUnbalancedBrackets
	}
	fields = append(fields, s[start:])
	return fields, nil
}

// cutKV splits a "key:value" or "key=value" field on whichever of ':' or '='
// appears first.
func cutKV(field string) (key, value string, ok bool) {
	idx := strings.IndexAny(field, ":=")
	if idx < 0 {
		return "", "", false
	}
	return field[:idx], field[idx+1:], true
}
