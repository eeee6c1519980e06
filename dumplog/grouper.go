package dumplog

// grouper folds a line stream into a lazy, single-pass sequence of Batch
// (C3). expect's sign is the only thing that discriminates data records
// from control records in deep-iteration mode: positive counts down
// remaining data (or transaction-state) records, negative counts up toward
// zero remaining control records. It is set once, by the batch header, never
// by peeking at a record line's own shape.
type grouper struct {
	lr            *lineReader
	label         string
	segType       SegmentType
	deepIteration bool

	expect int32
	cur    *Batch

	exhausted bool
}

func newGrouper(lr *lineReader, label string, segType SegmentType, deepIteration bool) *grouper {
	return &grouper{lr: lr, label: label, segType: segType, deepIteration: deepIteration}
}

// Next implements BatchIter.
func (g *grouper) Next() (*Batch, error) {
	if g.exhausted {
		return nil, nil
	}
	for {
		rl, ok, err := g.lr.read()
		if err != nil {
			return nil, err
		}
		if !ok {
			if g.expect != 0 {
				return nil, unexpected(g.label, g.lr.nextNum, "unexpected end of input: batch still expects %d more records", absInt32(g.expect))
			}
			g.exhausted = true
			return nil, nil
		}

		if g.expect == 0 {
			if classifyLine(rl.text) != lineBatchHeader {
				return nil, unexpected(g.label, rl.num, "expected a batch header line")
			}
			b, err := parseBatchHeader(g.label, rl.num, rl.text)
			if err != nil {
				return nil, err
			}
			if b.Count < 1 {
				return nil, illegalState(g.label, rl.num, "batch count must be >= 1, got %d", b.Count)
			}
			if b.LastOffset < b.BaseOffset {
				return nil, illegalState(g.label, rl.num, "batch lastOffset %d less than baseOffset %d", b.LastOffset, b.BaseOffset)
			}
			if b.IsControl && b.Count != 1 {
				return nil, illegalState(g.label, rl.num, "control batch must have count 1, got %d", b.Count)
			}

			g.cur = b
			if !g.deepIteration {
				return g.cur, nil
			}
			if b.IsControl {
				g.expect = -b.Count
			} else {
				g.expect = b.Count
			}
			g.cur.Messages = make([]BaseMessage, 0, b.Count)
			continue
		}

		if classifyLine(rl.text) != lineRecord {
			return nil, illegalState(g.label, rl.num, "expected %d more %s, but this doesn't look like a record",
				absInt32(g.expect), recordKindName(g.expect))
		}

		bm, sc, err := parseRecordPrefix(g.label, rl.num, rl.text)
		if err != nil {
			return nil, err
		}

		var msg BaseMessage
		if g.expect < 0 {
			msg, err = parseDataOrControl(g.label, rl.num, bm, sc)
			if err != nil {
				return nil, err
			}
			if _, isControl := msg.(ControlMessage); !isControl {
				return nil, illegalState(g.label, rl.num, "expected %d more control records, but this doesn't look like a control record", -g.expect)
			}
			g.expect++
		} else {
			if g.segType == TRANSACTION_STATE {
				msg, err = parseTransactionState(g.label, rl.num, bm, sc)
			} else {
				msg, err = parseDataOrControl(g.label, rl.num, bm, sc)
				if err == nil {
					if _, isControl := msg.(ControlMessage); isControl {
						return nil, illegalState(g.label, rl.num, "expected %d more data records, but this doesn't look like a data record", g.expect)
					}
				}
			}
			if err != nil {
				return nil, err
			}
			g.expect--
		}

		g.cur.Messages = append(g.cur.Messages, msg)
		if g.expect == 0 {
			done := g.cur
			g.cur = nil
			return done, nil
		}
	}
}

func absInt32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

func recordKindName(expect int32) string {
	if expect < 0 {
		return "control records"
	}
	return "data records"
}
