package dumplog

import "testing"

func TestClassifySegment(t *testing.T) {
	cases := []struct {
		path       string
		wantType   SegmentType
		wantTopic  string
	}{
		{"/data/kafka-logs/orders-0/00000000000000000000.log", DATA, "orders"},
		{"/data/kafka-logs/__transaction_state-12/00000000000000000000.log", TRANSACTION_STATE, "__transaction_state"},
		{"/data/kafka-logs/__consumer_offsets-3/00000000000000000000.log", CONSUMER_OFFSETS, "__consumer_offsets"},
		{"/data/kafka-logs/weird-parent/00000000000000000000.log", DATA, "weird-parent"},
		{"00000000000000000000.log", DATA, ""},
	}

	for _, tc := range cases {
		gotType, gotTopic := classifySegment(tc.path)
		if gotType != tc.wantType || gotTopic != tc.wantTopic {
			t.Errorf("classifySegment(%q) = (%v, %q), want (%v, %q)",
				tc.path, gotType, gotTopic, tc.wantType, tc.wantTopic)
		}
	}
}

func TestSplitTrailingDigits(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantNum  int
		wantOK   bool
	}{
		{"orders-0", "orders", 0, true},
		{"__transaction_state-12", "__transaction_state", 12, true},
		{"no-digits-here", "", 0, false},
		{"trailing-", "", 0, false},
		{"nohyphen123", "", 0, false},
	}

	for _, tc := range cases {
		name, num, ok := splitTrailingDigits(tc.in)
		if ok != tc.wantOK || (ok && (name != tc.wantName || num != tc.wantNum)) {
			t.Errorf("splitTrailingDigits(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tc.in, name, num, ok, tc.wantName, tc.wantNum, tc.wantOK)
		}
	}
}
