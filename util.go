package nacha

import (
	"bufio"
	"bytes"
	"fmt"
)

// splitScanAt returns a split function that will return records of length recordLen. The records
// may optionally be terminated via new-lines, ether Dos (\r\n) or Unix(\n),
// but no termination is required. New-lines are not allowed within record. The
// function also ignores the SUB (\x1a) character if it is at EOF.
func splitScanAt(recordLen int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if atEOF && len(dropSub(data)) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			d := dropCR(data[0:i])
			if len(d) == recordLen {
				return i + 1, d, nil
			}
			if len(d) == 0 && len(data) == i+1 {
				// Trailing blank line.
				return 0, nil, nil
			}
			return 0, nil, fmt.Errorf("invalid record length %d: %q: %w", len(d), d, ErrStructuralDefect)
		}
		if len(data) >= recordLen {
			if !atEOF && len(data) < recordLen+2 {
				// A line terminator may still follow.
				return 0, nil, nil
			}
			return recordLen, data[0:recordLen], nil
		}
		if atEOF {
			return 0, nil, fmt.Errorf("short record at end of file: %q: %w", data, ErrStructuralDefect)
		}
		return 0, nil, nil
	}
}

// dropCR drops a terminal \r from the data.
func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[0 : len(data)-1]
	}
	return data
}

// dropSub drops a terminal \x1a from the data. This is often
// used to indicate EOF.
func dropSub(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\x1a' {
		return data[0 : len(data)-1]
	}
	return data
}
