package nacha

import "errors"

var (
	// ErrStructuralDefect is returned when an assembled record is not exactly
	// RecordLength characters wide.
	ErrStructuralDefect = errors.New("nacha: record is not 94 characters")

	// ErrInvalidPayment is returned when a payment cannot be encoded. The
	// payment is kept in the file's error records.
	ErrInvalidPayment = errors.New("nacha: invalid payment")

	// ErrSequencingViolation is returned when an operation is called out of
	// order, e.g. closing a batch that was never opened.
	ErrSequencingViolation = errors.New("nacha: operation out of sequence")

	// ErrFieldOverflow is returned when a numeric value has more digits than
	// its field can hold.
	ErrFieldOverflow = errors.New("nacha: numeric field overflow")

	ErrInvalidConfig = errors.New("nacha: invalid configuration")
)
