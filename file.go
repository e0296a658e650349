package nacha

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type state int

const (
	stateNew state = iota
	stateOpen
	stateBatchOpen
	stateClosed
)

// File assembles one NACHA file. Calls must follow the record order:
// ConfigureFile, Open, then for each batch ConfigureBatch (when company
// settings change), OpenBatch, AddDebit/AddCredit and CloseBatch, and finally
// Close. A File is not safe for concurrent use; build separate files with
// separate values.
type File struct {
	id      uuid.UUID
	base    *slog.Logger
	logger  *slog.Logger
	now     func() time.Time
	created time.Time

	header            FileHeader
	configured        bool
	company           CompanyHeader
	companyConfigured bool

	state       state
	contents    strings.Builder
	batch       *batch
	batchNumber int
	batchCount  int
	addendaSeq  int

	entryCount  int64
	entryHash   int64
	debitTotal  decimal.Decimal
	creditTotal decimal.Decimal
	blockCount  int

	errorRecords []Payment
}

type Option func(*File)

// WithLogger sets the logger used for record and rejection events.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		f.base = l
	}
}

// WithClock sets the time source for the file creation date and time.
func WithClock(now func() time.Time) Option {
	return func(f *File) {
		f.now = now
	}
}

func NewFile(opts ...Option) *File {
	f := &File{
		base: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.Reset()
	return f
}

// Reset returns the file to its initial state, clearing settings, totals,
// assembled text and error records. The file gets a new ID.
func (f *File) Reset() {
	*f = File{
		id:          uuid.New(),
		base:        f.base,
		now:         f.now,
		addendaSeq:  1,
		debitTotal:  decimal.Zero,
		creditTotal: decimal.Zero,
	}
	f.logger = f.base.With("file_id", f.id.String())
}

func (f *File) ID() uuid.UUID {
	return f.id
}

// ConfigureFile applies the file header settings. It must be called before Open.
func (f *File) ConfigureFile(h FileHeader) error {
	if f.state != stateNew {
		return fmt.Errorf("configure file: header already written: %w", ErrSequencingViolation)
	}
	if err := h.Validate(); err != nil {
		return err
	}
	h.applyDefaults()
	f.header = h
	f.configured = true
	return nil
}

// ConfigureBatch applies the company settings used by the batches opened
// after it. A zero NextBatchNumber keeps the current batch numbering.
func (f *File) ConfigureBatch(c CompanyHeader) error {
	if f.state == stateBatchOpen {
		return fmt.Errorf("configure batch: batch %d is still open: %w", f.batch.number, ErrSequencingViolation)
	}
	if f.state == stateClosed {
		return fmt.Errorf("configure batch: file is closed: %w", ErrSequencingViolation)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NextBatchNumber == 0 && f.batchNumber > 0 {
		c.NextBatchNumber = f.batchNumber
	}
	c.applyDefaults()
	f.company = c
	f.companyConfigured = true
	f.batchNumber = c.NextBatchNumber
	return nil
}

// Open renders the file header record.
func (f *File) Open() (Record, error) {
	if f.state != stateNew {
		return "", fmt.Errorf("open file: already open: %w", ErrSequencingViolation)
	}
	if !f.configured {
		return "", fmt.Errorf("open file: file settings not applied: %w", ErrSequencingViolation)
	}
	h := f.header
	created := f.now()

	dest, err := formatRouting(h.ImmediateDestination, 10)
	if err != nil {
		return "", fmt.Errorf("open file: immediate destination: %w: %w", err, ErrStructuralDefect)
	}
	orig, err := formatRouting(h.ImmediateOrigin, 10)
	if err != nil {
		return "", fmt.Errorf("open file: immediate origin: %w: %w", err, ErrStructuralDefect)
	}
	ref, err := formatInt(int64(h.BatchID), 8)
	if err != nil {
		return "", fmt.Errorf("open file: reference code: %w: %w", err, ErrStructuralDefect)
	}
	rec, err := newRecord("file header", "1"+
		"01"+
		dest+
		orig+
		created.Format("0601021504")+
		h.FileModifier+
		"094"+
		"10"+
		"1"+
		formatText(h.ImmediateDestinationName, 23)+
		formatText(h.ImmediateOriginName, 23)+
		ref)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	f.created = created
	f.state = stateOpen
	f.emit(rec)
	f.logger.Debug("file opened", "destination", h.ImmediateDestination, "origin", h.ImmediateOrigin)
	return rec, nil
}

// Close renders the file control record followed by the filler records that
// pad the file to a whole number of 10 record blocks.
func (f *File) Close() ([]Record, error) {
	switch f.state {
	case stateBatchOpen:
		return nil, fmt.Errorf("close file: batch %d is still open: %w", f.batch.number, ErrSequencingViolation)
	case stateNew, stateClosed:
		return nil, fmt.Errorf("close file: file is not open: %w", ErrSequencingViolation)
	}

	lines := f.entryCount + int64(f.batchCount)*2 + 2
	blocks := (lines + blockingFactor - 1) / blockingFactor
	fillers := blocks*blockingFactor - lines

	batchCount, err := formatInt(int64(f.batchCount), 6)
	if err != nil {
		return nil, fmt.Errorf("close file: batch count: %w: %w", err, ErrStructuralDefect)
	}
	blockCount, err := formatInt(blocks, 6)
	if err != nil {
		return nil, fmt.Errorf("close file: block count: %w: %w", err, ErrStructuralDefect)
	}
	entryCount, err := formatInt(f.entryCount, 8)
	if err != nil {
		return nil, fmt.Errorf("close file: entry count: %w: %w", err, ErrStructuralDefect)
	}
	debit, err := formatAmount(f.debitTotal, 12)
	if err != nil {
		return nil, fmt.Errorf("close file: debit total: %w: %w", err, ErrStructuralDefect)
	}
	credit, err := formatAmount(f.creditTotal, 12)
	if err != nil {
		return nil, fmt.Errorf("close file: credit total: %w: %w", err, ErrStructuralDefect)
	}
	rec, err := newRecord("file control", "9"+
		batchCount+
		blockCount+
		entryCount+
		formatHash(f.entryHash)+
		debit+
		credit+
		formatText("", 39))
	if err != nil {
		return nil, fmt.Errorf("close file: %w", err)
	}

	records := []Record{rec}
	filler := Record(strings.Repeat("9", RecordLength))
	for i := int64(0); i < fillers; i++ {
		records = append(records, filler)
	}

	f.blockCount = int(blocks)
	f.state = stateClosed
	for _, r := range records {
		f.emit(r)
	}
	f.logger.Debug("file closed", "batches", f.batchCount, "blocks", blocks, "entries", f.entryCount,
		"debits", f.debitTotal.StringFixed(2), "credits", f.creditTotal.StringFixed(2))
	return records, nil
}

func (f *File) emit(r Record) {
	f.contents.WriteString(string(r))
	f.contents.WriteString(crlf)
}

// odfi is the originating DFI identification carried in batch and entry
// records: the first 8 digits of the immediate destination.
func (f *File) odfi() string {
	return f.header.ImmediateDestination[:8]
}

// Contents returns the text assembled so far. Before Close it is a partial file.
func (f *File) Contents() string {
	return f.contents.String()
}

// Write copies the assembled text to w.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(f.contents.String()); err != nil {
		return err
	}
	return bw.Flush()
}

// ErrorRecords returns the payments rejected since the last Reset.
func (f *File) ErrorRecords() []Payment {
	out := make([]Payment, len(f.errorRecords))
	copy(out, f.errorRecords)
	return out
}

// BatchCount returns the number of batches opened so far.
func (f *File) BatchCount() int {
	return f.batchCount
}

// EntryCount returns the number of entry detail and addenda records in
// closed batches.
func (f *File) EntryCount() int64 {
	return f.entryCount
}

// BlockCount returns the number of 10 record blocks, known once the file is closed.
func (f *File) BlockCount() int {
	return f.blockCount
}

// Hash returns the file entry hash as rendered in the file control record.
func (f *File) Hash() string {
	return formatHash(f.entryHash)
}

func (f *File) DebitTotal() decimal.Decimal {
	return f.debitTotal
}

func (f *File) CreditTotal() decimal.Decimal {
	return f.creditTotal
}

func (f *File) FileID() string {
	return f.header.FileModifier
}

// FileCreationTimeStamp returns the minute the file header was rendered.
func (f *File) FileCreationTimeStamp() (time.Time, error) {
	if f.state == stateNew {
		return time.Time{}, fmt.Errorf("file header not written: %w", ErrSequencingViolation)
	}
	return f.created.Truncate(time.Minute), nil
}
