// Package dumplog parses the textual output of a Kafka broker's offline
// log-segment dump tool into a structured, validated stream of batches and
// records, and folds that stream into a transactional activity summary.
//
// The package never touches a broker connection or the binary log format; it
// consumes only the human-readable dump text a broker's own inspection tool
// already produced.
package dumplog

import "strconv"

// SegmentType classifies which internal (or user) topic a dumped segment
// belongs to, which determines which record kinds and validators apply.
type SegmentType int8

const (
	// DATA is any ordinary user-topic (or unrecognized internal topic) segment.
	DATA SegmentType = iota
	// TRANSACTION_STATE is the __transaction_state internal topic.
	TRANSACTION_STATE
	// CONSUMER_OFFSETS is the __consumer_offsets internal topic.
	CONSUMER_OFFSETS
)

func (t SegmentType) String() string {
	switch t {
	case TRANSACTION_STATE:
		return "TRANSACTION_STATE"
	case CONSUMER_OFFSETS:
		return "CONSUMER_OFFSETS"
	default:
		return "DATA"
	}
}

// ProducerSession identifies one incarnation of a transactional producer: the
// identity a transaction is tracked under.
type ProducerSession struct {
	ProducerID    int64
	ProducerEpoch int16
}

// MarshalText renders the session as "producerID/producerEpoch", so that
// maps keyed by ProducerSession (TransactionalInfo.OpenTransactions) can be
// encoded as JSON.
func (s ProducerSession) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatInt(s.ProducerID, 10) + "/" + strconv.Itoa(int(s.ProducerEpoch))), nil
}

// Batch is one record batch extracted from a dump.
type Batch struct {
	Label string // source file name
	Line  int    // 1-based source line number of the batch-header line

	BaseOffset           int64
	LastOffset           int64
	Count                int32
	BaseSequence         int32
	LastSequence         int32
	ProducerID           int64
	ProducerEpoch        int16
	PartitionLeaderEpoch int32
	IsTransactional      bool
	IsControl            bool
	Position             int64
	CreateTime           int64 // epoch millis
	Size                 int32
	Magic                int8
	CompressCodec        string
	CRC                  uint32
	IsValid              bool
	DeleteHorizonMs      *int64

	// Messages holds one entry per record when the dump was produced with
	// deep iteration. It is empty for header-only dumps.
	Messages []BaseMessage
}

// Session returns the batch's producer identity.
func (b *Batch) Session() ProducerSession {
	return ProducerSession{ProducerID: b.ProducerID, ProducerEpoch: b.ProducerEpoch}
}

// Segment is a single parsed dump: its declared type, inferred topic, and a
// single-pass, lazily-produced sequence of its batches.
type Segment struct {
	Label          string
	Type           SegmentType
	Topic          string // empty when not derivable
	DeepIteration  bool

	grouper *grouper
	closer  func() error
}

// Batches returns the segment's single-pass batch iterator. It must not be
// called more than once.
func (s *Segment) Batches() BatchIter {
	var it BatchIter = s.grouper
	switch s.Type {
	case TRANSACTION_STATE:
		it = newTxnStateValidator(it)
	}
	it = newProducerIdentityInvariant(it, s.Type)
	it = newLeaderEpochMonotonic(newPositionMonotonic(newBatchesValid(it)))
	return it
}

// Close releases any file handle backing the segment. Safe to call more than
// once and safe to call on a segment opened over an in-memory reader (a
// no-op in that case).
func (s *Segment) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer()
	s.closer = nil
	return err
}

// BatchIter is a pull-based, single-pass iterator over a segment's batches.
type BatchIter interface {
	// Next advances the iterator. It returns (nil, nil) at end of stream.
	Next() (*Batch, error)
}

// FirstBatchInTxn is the first data batch observed for a session mid-transaction,
// plus a running count of the data batches seen for it so far.
type FirstBatchInTxn struct {
	Batch *Batch
	Count int
}

// EmptyTransaction is a commit/abort control record observed for a session
// that had no preceding data batches in this segment.
type EmptyTransaction struct {
	ControlBatch  *Batch
	ControlRecord *ControlMessage
}

// RunningStats accumulates count/min/max/sum over a stream of int64 samples.
type RunningStats struct {
	Count int64
	Min   int64
	Max   int64
	Sum   int64
}

func (s *RunningStats) accept(v int64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Sum += v
	s.Count++
}

// Mean returns Sum/Count, or 0 if Count is 0.
func (s *RunningStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// TransactionalInfo is the terminal summary produced by folding a validated
// batch stream with Collect.
type TransactionalInfo struct {
	FirstBatch *Batch
	LastBatch  *Batch

	// OpenTransactions holds every session whose transaction was never
	// closed by the time the stream was exhausted.
	OpenTransactions map[ProducerSession]*FirstBatchInTxn
	EmptyTransactions []EmptyTransaction

	Committed int64
	Aborted   int64

	TxnSizeStats     RunningStats
	TxnDurationStats RunningStats
}
