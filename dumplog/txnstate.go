package dumplog

// legalPredecessors maps each TxnState to the set of states legally
// preceding it for a given transactional ID, per the transaction
// coordinator's own state machine (spec.md §4.5). A missing entry for a
// target state that had no prior observation is always legal; it is only
// consulted when a prior state is already on record.
var legalPredecessors = map[TxnState]map[TxnState]bool{
	Empty:         {CompleteCommit: true, CompleteAbort: true},
	Ongoing:       {Empty: true, CompleteCommit: true, CompleteAbort: true},
	PrepareCommit: {Ongoing: true},
	PrepareAbort:  {Ongoing: true},
	CompleteCommit: {PrepareCommit: true},
	CompleteAbort:  {PrepareAbort: true},
	Dead:          {Empty: true, CompleteCommit: true, CompleteAbort: true},
}

// txnStateValidator validates legal state transitions per transactional ID,
// for TRANSACTION_STATE segments only (C6).
type txnStateValidator struct {
	inner BatchIter
	last  map[string]TxnState
}

func newTxnStateValidator(inner BatchIter) *txnStateValidator {
	return &txnStateValidator{inner: inner, last: map[string]TxnState{}}
}

func (v *txnStateValidator) Next() (*Batch, error) {
	b, err := v.inner.Next()
	if err != nil || b == nil {
		return b, err
	}
	for _, m := range b.Messages {
		change, ok := m.(TransactionStateChange)
		if !ok {
			continue
		}
		prior, seen := v.last[change.TransactionalID]
		if seen {
			if !legalPredecessors[change.State][prior] {
				return nil, illegalState(change.Label, change.Line,
					"illegal transaction state transition for %q: %s -> %s",
					change.TransactionalID, prior, change.State)
			}
		}
		v.last[change.TransactionalID] = change.State
	}
	return b, nil
}
