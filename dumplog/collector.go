package dumplog

// Collect folds a validated batch stream into a TransactionalInfo summary
// (C7). It is inherently sequential: sessions may straddle whatever split
// produced separate streams, so no parallel combiner is offered here or
// anywhere in this package — see SPEC_FULL.md §12.
func Collect(it BatchIter) (*TransactionalInfo, error) {
	info := &TransactionalInfo{
		OpenTransactions: map[ProducerSession]*FirstBatchInTxn{},
	}

	for {
		b, err := it.Next()
		if err != nil {
			return nil, err
		}
		if b == nil {
			break
		}

		if info.FirstBatch == nil {
			info.FirstBatch = b
		}
		info.LastBatch = b

		if b.IsTransactional {
			session := b.Session()
			if !b.IsControl {
				if fb, ok := info.OpenTransactions[session]; ok {
					fb.Count++
				} else {
					info.OpenTransactions[session] = &FirstBatchInTxn{Batch: b, Count: 1}
				}
			}
		}

		for i := range b.Messages {
			ctrl, ok := b.Messages[i].(ControlMessage)
			if !ok {
				continue
			}
			if ctrl.Commit {
				info.Committed++
			} else {
				info.Aborted++
			}

			session := b.Session()
			fb, open := info.OpenTransactions[session]
			if !open {
				info.EmptyTransactions = append(info.EmptyTransactions, EmptyTransaction{
					ControlBatch:  b,
					ControlRecord: &ctrl,
				})
				continue
			}
			delete(info.OpenTransactions, session)
			info.TxnSizeStats.accept(int64(fb.Count))
			info.TxnDurationStats.accept(b.CreateTime - fb.Batch.CreateTime)
		}
	}

	return info, nil
}
