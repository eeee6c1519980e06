package dumplog

// batchesValid asserts every batch's IsValid field is true (C5).
type batchesValid struct{ inner BatchIter }

func newBatchesValid(inner BatchIter) *batchesValid { return &batchesValid{inner: inner} }

func (v *batchesValid) Next() (*Batch, error) {
	b, err := v.inner.Next()
	if err != nil || b == nil {
		return b, err
	}
	if !b.IsValid {
		return nil, illegalState(b.Label, b.Line, "batch is not valid")
	}
	return b, nil
}

// positionMonotonic asserts file position and base/last offset are
// monotonically increasing across consecutive batches (C5).
type positionMonotonic struct {
	inner BatchIter
	prev  *Batch
}

func newPositionMonotonic(inner BatchIter) *positionMonotonic {
	return &positionMonotonic{inner: inner}
}

func (v *positionMonotonic) Next() (*Batch, error) {
	b, err := v.inner.Next()
	if err != nil || b == nil {
		return b, err
	}
	if v.prev != nil {
		if b.Position < v.prev.Position+int64(v.prev.Size) {
			return nil, illegalState(b.Label, b.Line,
				"batch position %d less than previous batch's position %d + size %d",
				b.Position, v.prev.Position, v.prev.Size)
		}
		if b.BaseOffset <= v.prev.LastOffset {
			return nil, illegalState(b.Label, b.Line,
				"batch baseOffset %d not greater than previous batch's lastOffset %d",
				b.BaseOffset, v.prev.LastOffset)
		}
	}
	v.prev = b
	return b, nil
}

// producerIdentityInvariant asserts the producerId/producerEpoch shape
// spec.md §3 requires: transactional batches outside TRANSACTION_STATE
// segments must carry a real producer identity; batches inside a
// TRANSACTION_STATE segment never do.
type producerIdentityInvariant struct {
	inner   BatchIter
	segType SegmentType
}

func newProducerIdentityInvariant(inner BatchIter, segType SegmentType) *producerIdentityInvariant {
	return &producerIdentityInvariant{inner: inner, segType: segType}
}

func (v *producerIdentityInvariant) Next() (*Batch, error) {
	b, err := v.inner.Next()
	if err != nil || b == nil {
		return b, err
	}
	if v.segType == TRANSACTION_STATE {
		if b.ProducerID != -1 || b.ProducerEpoch != -1 {
			return nil, unexpected(b.Label, b.Line, "transaction-state batch must have producerId = -1 and producerEpoch = -1")
		}
	} else if b.IsTransactional {
		if b.ProducerID == -1 || b.ProducerEpoch == -1 {
			return nil, illegalState(b.Label, b.Line, "transactional batch must have a producerId and producerEpoch")
		}
	}
	return b, nil
}

// leaderEpochMonotonic asserts partitionLeaderEpoch never regresses across
// consecutive batches (C5).
type leaderEpochMonotonic struct {
	inner BatchIter
	prev  *Batch
}

func newLeaderEpochMonotonic(inner BatchIter) *leaderEpochMonotonic {
	return &leaderEpochMonotonic{inner: inner}
}

func (v *leaderEpochMonotonic) Next() (*Batch, error) {
	b, err := v.inner.Next()
	if err != nil || b == nil {
		return b, err
	}
	if v.prev != nil && b.PartitionLeaderEpoch < v.prev.PartitionLeaderEpoch {
		return nil, illegalState(b.Label, b.Line,
			"partitionLeaderEpoch %d regressed from previous batch's %d",
			b.PartitionLeaderEpoch, v.prev.PartitionLeaderEpoch)
	}
	v.prev = b
	return b, nil
}
