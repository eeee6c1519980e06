package dumplog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxLineBytes = 16 << 20 // 16MiB: a deep-iteration payload line can be long

// ReadSegment parses a dump's preamble and returns a Segment whose batch
// sequence is lazy and single-pass. label is used only for error messages.
func ReadSegment(label string, r io.Reader) (*Segment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lr := newLineReader(sc)

	dumpingLine, ok, err := lr.read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, unexpected(label, 1, "empty input, expected \"Dumping <path>\"")
	}
	const dumpingPrefix = "Dumping "
	if !strings.HasPrefix(dumpingLine.text, dumpingPrefix) {
		return nil, unexpected(label, dumpingLine.num, "expected line to start with %q", dumpingPrefix)
	}
	path := strings.TrimPrefix(dumpingLine.text, dumpingPrefix)

	startLine, ok, err := lr.read()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, unexpected(label, dumpingLine.num+1, "missing starting-offset preamble line")
	}
	declaredOffset, err := parseStartingOffsetLine(startLine.text)
	if err != nil {
		return nil, unexpected(label, startLine.num, "%v", err)
	}

	fileOffset, err := offsetFromFilename(path)
	if err != nil {
		return nil, unexpected(label, startLine.num, "%v", err)
	}
	if fileOffset != declaredOffset {
		return nil, unexpected(label, startLine.num, "declared starting offset %d disagrees with filename offset %d", declaredOffset, fileOffset)
	}

	segType, topic := classifySegment(path)

	first, haveFirst, err := lr.read()
	if err != nil {
		return nil, err
	}
	deepIteration := false
	var peeked []rawLine
	if haveFirst {
		if classifyLine(first.text) != lineBatchHeader {
			return nil, unexpected(label, first.num, "expected a batch header line")
		}
		peeked = append(peeked, first)

		second, haveSecond, err := lr.read()
		if err != nil {
			return nil, err
		}
		if haveSecond {
			if classifyLine(second.text) == lineRecord {
				deepIteration = true
			}
			peeked = append(peeked, second)
		}
	}
	lr.pushBack(peeked...)

	g := newGrouper(lr, label, segType, deepIteration)

	return &Segment{
		Label:         label,
		Type:          segType,
		Topic:         topic,
		DeepIteration: deepIteration,
		grouper:       g,
	}, nil
}

// Open opens path and returns a Segment that owns the underlying file handle.
// The handle is released by Segment.Close, which callers must call once they
// are done iterating (even on error, including via defer).
func Open(path string) (*Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	seg, err := ReadSegment(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	seg.closer = f.Close
	return seg, nil
}

func parseStartingOffsetLine(text string) (int64, error) {
	for _, prefix := range []string{"Starting offset: ", "Log starting offset: "} {
		if strings.HasPrefix(text, prefix) {
			return parseInt64(strings.TrimSpace(strings.TrimPrefix(text, prefix)))
		}
	}
	return 0, fmt.Errorf("expected \"Starting offset: N\" or \"Log starting offset: N\", got %q", text)
}

// offsetFromFilename extracts the numeric prefix of "<basename>.log".
func offsetFromFilename(path string) (int64, error) {
	base := filepath.Base(path)
	const suffix = ".log"
	if !strings.HasSuffix(base, suffix) {
		return 0, fmt.Errorf("expected dumped path to end in %q, got %q", suffix, base)
	}
	digits := strings.TrimSuffix(base, suffix)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected a numeric filename, got %q: %v", base, err)
	}
	return n, nil
}
