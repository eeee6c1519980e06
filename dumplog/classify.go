package dumplog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Warnf reports non-fatal diagnostics (currently just "bare filename, no
// parent directory" per spec.md §4.3). Tests and callers that want to
// capture diagnostics instead of printing them can replace it.
var Warnf = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// classifySegment derives a segment's type and topic name from the dumped
// file's path (C4).
func classifySegment(path string) (SegmentType, string) {
	parent := filepath.Base(filepath.Dir(path))
	if parent == "" || parent == "." || parent == string(filepath.Separator) {
		Warnf("dump %q has no parent directory; assuming segment type DATA", path)
		return DATA, ""
	}

	if name, _, ok := splitTrailingDigits(parent); ok {
		switch name {
		case "__transaction_state":
			return TRANSACTION_STATE, name
		case "__consumer_offsets":
			return CONSUMER_OFFSETS, name
		default:
			return DATA, name
		}
	}
	return DATA, parent
}

// splitTrailingDigits splits "name-digits" into (name, digits, true). It
// requires at least one digit and a preceding '-'.
func splitTrailingDigits(s string) (string, int, bool) {
	idx := strings.LastIndexByte(s, '-')
	if idx < 0 || idx == len(s)-1 {
		return "", 0, false
	}
	digits := s[idx+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, false
	}
	return s[:idx], n, true
}
