package dumplog

import (
	"strings"
	"testing"
)

func TestCollect_AbortAndEmptyTransaction(t *testing.T) {
	abortHeader := "baseOffset: 0 lastOffset: 0 count: 1 baseSequence: -1 lastSequence: -1 " +
		"producerId: 9 producerEpoch: 0 partitionLeaderEpoch: 0 isTransactional: true isControl: true " +
		"position: 0 CreateTime: 1000 size: 70 magic: 2 compresscodec: NONE crc: 1 isvalid: true"
	abortRecord := "| offset: 0 CreateTime: 1000 keySize: 4 valueSize: 6 sequence: -1 headerKeys: [] endTxnMarker: ABORT coordinatorEpoch: 1"

	dump := strings.Join([]string{
		"Dumping /logs/orders-0/00000000000000000000.log",
		"Starting offset: 0",
		abortHeader,
		abortRecord,
	}, "\n") + "\n"

	seg, err := ReadSegment("orders-0.log", strings.NewReader(dump))
	if err != nil {
		t.Fatalf("ReadSegment: %v", err)
	}

	info, err := Collect(seg.Batches())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if info.Aborted != 1 || info.Committed != 0 {
		t.Fatalf("got committed=%d aborted=%d", info.Committed, info.Aborted)
	}
	if len(info.EmptyTransactions) != 1 {
		t.Fatalf("expected 1 empty transaction, got %d", len(info.EmptyTransactions))
	}
}

func TestRunningStats(t *testing.T) {
	var s RunningStats
	if s.Mean() != 0 {
		t.Fatalf("expected mean 0 for empty stats, got %v", s.Mean())
	}
	for _, v := range []int64{10, 20, 30} {
		s.accept(v)
	}
	if s.Count != 3 || s.Min != 10 || s.Max != 30 || s.Sum != 60 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.Mean() != 20 {
		t.Fatalf("expected mean 20, got %v", s.Mean())
	}
}
