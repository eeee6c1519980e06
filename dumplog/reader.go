package dumplog

import "bufio"

// rawLine is one line of dump text tagged with its 1-based position in the
// original input.
type rawLine struct {
	text string
	num  int
}

// lineReader is a pull-based, single-pass source of rawLines with a push-back
// buffer, used by Segment construction to peek ahead without losing line
// numbers, and by the grouper to fold lines into batches one Next() at a time.
type lineReader struct {
	sc      *bufio.Scanner
	nextNum int
	pending []rawLine
}

func newLineReader(sc *bufio.Scanner) *lineReader {
	return &lineReader{sc: sc, nextNum: 1}
}

// read returns the next line, or ok=false at end of input. A non-nil err
// means the underlying scanner failed (e.g. a line exceeded its buffer).
func (lr *lineReader) read() (rawLine, bool, error) {
	if len(lr.pending) > 0 {
		rl := lr.pending[0]
		lr.pending = lr.pending[1:]
		return rl, true, nil
	}
	if !lr.sc.Scan() {
		return rawLine{}, false, lr.sc.Err()
	}
	rl := rawLine{text: lr.sc.Text(), num: lr.nextNum}
	lr.nextNum++
	return rl, true, nil
}

// pushBack replays lines in the order given on the next calls to read.
func (lr *lineReader) pushBack(lines ...rawLine) {
	lr.pending = append(append([]rawLine{}, lines...), lr.pending...)
}
