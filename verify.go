package nacha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

var isControl = regexp.MustCompile(`[^9]`)

// Verify checks that r holds a structurally complete file: every record is
// RecordLength characters, records appear in file header, batch, file control
// order, and the record count is a whole number of blocks. It does not check
// control totals.
func Verify(r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Split(splitScanAt(RecordLength))

	var (
		records     int
		inBatch     bool
		haveEntry   bool
		haveHeader  bool
		haveControl bool
	)
	for s.Scan() {
		data := s.Bytes()
		records++
		if haveControl {
			if isControl.Match(data) {
				return fmt.Errorf("record %d: found data after the file control record: %w", records, ErrSequencingViolation)
			}
			continue
		}
		switch data[0] {
		case '1':
			if haveHeader {
				return fmt.Errorf("record %d: multiple file header records: %w", records, ErrSequencingViolation)
			}
			haveHeader = true
		case '5':
			if !haveHeader {
				return fmt.Errorf("record %d: batch header before file header: %w", records, ErrSequencingViolation)
			}
			if inBatch {
				return fmt.Errorf("record %d: batch header before the close of the previous batch: %w", records, ErrSequencingViolation)
			}
			inBatch, haveEntry = true, false
		case '6':
			if !inBatch {
				return fmt.Errorf("record %d: entry detail record outside a batch: %w", records, ErrSequencingViolation)
			}
			haveEntry = true
		case '7':
			if !inBatch || !haveEntry {
				return fmt.Errorf("record %d: addenda record without an entry detail record: %w", records, ErrSequencingViolation)
			}
		case '8':
			if !inBatch {
				return fmt.Errorf("record %d: batch control record without a batch header: %w", records, ErrSequencingViolation)
			}
			inBatch = false
		case '9':
			if !haveHeader || inBatch || !isControl.Match(data) {
				return fmt.Errorf("record %d: unexpected file control record: %w", records, ErrSequencingViolation)
			}
			haveControl = true
		default:
			return fmt.Errorf("record %d: invalid record type code %q: %w", records, data[0], ErrStructuralDefect)
		}
	}
	if err := s.Err(); err != nil {
		return err
	}
	if !haveControl {
		return fmt.Errorf("missing file control record: %w", ErrSequencingViolation)
	}
	if records%blockingFactor != 0 {
		return fmt.Errorf("%d records is not a multiple of %d: %w", records, blockingFactor, ErrStructuralDefect)
	}
	return nil
}
