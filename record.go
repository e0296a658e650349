package nacha

import "fmt"

const (
	// RecordLength is the width of every NACHA record, excluding the line terminator.
	RecordLength   = 94
	blockingFactor = 10
	crlf           = "\r\n"
)

// Record is one rendered fixed-width line.
type Record string

// Type returns the record type code, the first character of the record.
func (r Record) Type() byte {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}

func (r Record) String() string {
	return string(r)
}

// newRecord enforces the fixed-width invariant on an assembled line.
func newRecord(kind, line string) (Record, error) {
	if len(line) != RecordLength {
		return "", fmt.Errorf("%s record has %d characters: %w", kind, len(line), ErrStructuralDefect)
	}
	return Record(line), nil
}
