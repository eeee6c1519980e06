package dumplog

import (
	"strings"
	"testing"
)

func headerLine(fields string) string {
	return fields
}

const baseHeaderFields = "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: 0 lastSequence: 0 " +
	"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
	"position: 0 CreateTime: 1000 size: 80 magic: 2 compresscodec: NONE crc: 1234 isvalid: true"

func TestReadSegment_HeaderOnly(t *testing.T) {
	dump := strings.Join([]string{
		"Dumping /logs/orders-0/00000000000000000000.log",
		"Starting offset: 0",
		headerLine(baseHeaderFields),
	}, "\n") + "\n"

	seg, err := ReadSegment("orders-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	if seg.Type != DATA || seg.Topic != "orders" || seg.DeepIteration {
		t.Fatalf("got type=%v topic=%q deep=%v", seg.Type, seg.Topic, seg.DeepIteration)
	}

	it := seg.Batches()
	b, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if b == nil || b.BaseOffset != 0 || b.Count != 1 {
		t.Fatalf("unexpected batch: %+v", b)
	}
	if b, err := it.Next(); err != nil || b != nil {
		t.Fatalf("expected end of stream, got (%+v, %v)", b, err)
	}
}

func TestReadSegment_DeepTransactionalCommit(t *testing.T) {
	dataHeader := "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: 0 lastSequence: 0 " +
		"producerId: 7 producerEpoch: 0 partitionLeaderEpoch: 0 isTransactional: true isControl: false " +
		"position: 0 CreateTime: 1000 size: 90 magic: 2 compresscodec: NONE crc: 1 isvalid: true"
	dataRecord := "| offset: 0 CreateTime: 1000 keySize: 4 valueSize: 10 sequence: 0 headerKeys: [] payload: hello"

	controlHeader := "baseOffset: 1 lastOffset: 1 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: 7 producerEpoch: 0 partitionLeaderEpoch: 0 isTransactional: true isControl: true " +
		"position: 90 CreateTime: 2000 size: 70 magic: 2 compresscodec: NONE crc: 2 isvalid: true"
	controlRecord := "| offset: 1 CreateTime: 2000 keySize: 4 valueSize: 6 sequence: -1 headerKeys: [] endTxnMarker: COMMIT coordinatorEpoch: 5"

	dump := strings.Join([]string{
		"Dumping /logs/orders-0/00000000000000000000.log",
		"Starting offset: 0",
		dataHeader,
		dataRecord,
		controlHeader,
		controlRecord,
	}, "\n") + "\n"

	seg, err := ReadSegment("orders-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	if !seg.DeepIteration {
		t.Fatalf("expected deep iteration to be detected")
	}

	info, err := Collect(seg.Batches())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if info.Committed != 1 || info.Aborted != 0 {
		t.Fatalf("got committed=%d aborted=%d", info.Committed, info.Aborted)
	}
	if len(info.OpenTransactions) != 0 {
		t.Fatalf("expected no open transactions, got %d", len(info.OpenTransactions))
	}
	if info.TxnSizeStats.Count != 1 || info.TxnSizeStats.Mean() != 1 {
		t.Fatalf("unexpected txn size stats: %+v", info.TxnSizeStats)
	}
	if info.TxnDurationStats.Sum != 1000 {
		t.Fatalf("expected txn duration 1000ms, got %+v", info.TxnDurationStats)
	}
}

func TestReadSegment_DialectCaseInsensitiveKeys(t *testing.T) {
	header := "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: 0 lastSequence: 0 " +
		"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
		"position: 0 CreateTime: 1000 size: 80 magic: 2 compresscodec: none crc: 1234 isvalid: true"
	record := "| offset: 0 createtime: 1000 keysize: 4 valuesize: 10 sequence: 0 HEADERKEYS: [] payload: hi"

	dump := strings.Join([]string{
		"Dumping /logs/orders-0/00000000000000000000.log",
		"Starting offset: 0",
		header,
		record,
	}, "\n") + "\n"

	seg, err := ReadSegment("orders-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	it := seg.Batches()
	b, err := it.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(b.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(b.Messages))
	}
	if b.CompressCodec != "none" {
		t.Fatalf("expected normalized codec %q, got %q", "none", b.CompressCodec)
	}
}

func TestReadSegment_TransactionStateMachine(t *testing.T) {
	ongoingHeader := "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
		"position: 0 CreateTime: 1000 size: 80 magic: 2 compresscodec: NONE crc: 1 isvalid: true"
	ongoingRecord := "| offset: 0 CreateTime: 1000 keySize: 4 valueSize: 10 sequence: -1 headerKeys: [] " +
		"key: transaction_metadata::transactionalId=txn-1 payload: producerId:7,producerEpoch:0,state=Ongoing,partitions=[orders-0],txnLastUpdateTimestamp=1000,txnTimeoutMs=60000"

	commitHeader := "baseOffset: 1 lastOffset: 1 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
		"position: 80 CreateTime: 2000 size: 80 magic: 2 compresscodec: NONE crc: 2 isvalid: true"
	commitRecord := "| offset: 1 CreateTime: 2000 keySize: 4 valueSize: 10 sequence: -1 headerKeys: [] " +
		"key: transaction_metadata::transactionalId=txn-1 payload: producerId:7,producerEpoch:0,state=PrepareCommit,partitions=[orders-0],txnLastUpdateTimestamp=2000,txnTimeoutMs=60000"

	dump := strings.Join([]string{
		"Dumping /logs/__transaction_state-0/00000000000000000000.log",
		"Starting offset: 0",
		ongoingHeader,
		ongoingRecord,
		commitHeader,
		commitRecord,
	}, "\n") + "\n"

	seg, err := ReadSegment("__transaction_state-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}
	if seg.Type != TRANSACTION_STATE {
		t.Fatalf("expected TRANSACTION_STATE, got %v", seg.Type)
	}

	it := seg.Batches()
	for i := 0; i < 2; i++ {
		if _, err := it.Next(); err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}
}

func TestReadSegment_TransactionStateIllegalTransition(t *testing.T) {
	deadHeader := "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
		"position: 0 CreateTime: 1000 size: 80 magic: 2 compresscodec: NONE crc: 1 isvalid: true"
	deadRecord := "| offset: 0 CreateTime: 1000 keySize: 4 valueSize: 10 sequence: -1 headerKeys: [] " +
		"key: transaction_metadata::transactionalId=txn-1 payload: producerId:7,producerEpoch:0,state=Dead,partitions=[],txnLastUpdateTimestamp=1000,txnTimeoutMs=60000"

	commitHeader := "baseOffset: 1 lastOffset: 1 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: -1 producerEpoch: -1 partitionLeaderEpoch: 0 isTransactional: false isControl: false " +
		"position: 80 CreateTime: 2000 size: 80 magic: 2 compresscodec: NONE crc: 2 isvalid: true"
	commitRecord := "| offset: 1 CreateTime: 2000 keySize: 4 valueSize: 10 sequence: -1 headerKeys: [] " +
		"key: transaction_metadata::transactionalId=txn-1 payload: producerId:7,producerEpoch:0,state=PrepareCommit,partitions=[],txnLastUpdateTimestamp=2000,txnTimeoutMs=60000"

	dump := strings.Join([]string{
		"Dumping /logs/__transaction_state-0/00000000000000000000.log",
		"Starting offset: 0",
		deadHeader,
		deadRecord,
		commitHeader,
		commitRecord,
	}, "\n") + "\n"

	seg, err := ReadSegment("__transaction_state-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}

	it := seg.Batches()
	if _, err := it.Next(); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if _, err := it.Next(); err == nil {
		t.Fatalf("expected illegal Dead -> PrepareCommit transition to fail")
	}
}

func TestReadSegment_MalformedPreamble(t *testing.T) {
	_, err := ReadSegment("bad.log", strings.NewReader("not a dump at all\n"))
	if err == nil {
		t.Fatalf("expected error for malformed preamble")
	}
	if _, ok := err.(*UnexpectedFileContentError); !ok {
		t.Fatalf("expected *UnexpectedFileContentError, got %T: %v", err, err)
	}
}

func TestReadSegment_FilenameOffsetMismatch(t *testing.T) {
	dump := strings.Join([]string{
		"Dumping /logs/orders-0/00000000000000000005.log",
		"Starting offset: 0",
		headerLine(baseHeaderFields),
	}, "\n") + "\n"

	_, err := ReadSegment("orders-0.log", strings.NewReader(dump))
	if err == nil {
		t.Fatalf("expected error for filename/declared offset mismatch")
	}
}
