package nacha

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 10, 19, 14, 30, 45, 0, time.UTC)

func testFileHeader() FileHeader {
	return FileHeader{
		ImmediateDestination:     "081000032",
		ImmediateOrigin:          "123456789",
		ImmediateDestinationName: "Federal Reserve Bank",
		ImmediateOriginName:      "Knox Payments",
	}
}

func testCompanyHeader() CompanyHeader {
	return CompanyHeader{
		CompanyName:             "Knox Payments",
		CompanyID:               "1234567890",
		CompanyEntryDescription: "Payroll",
		CompanyDescriptiveDate:  "Oct 19",
		EffectiveEntryDate:      time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
	}
}

func newTestFile(t *testing.T) *File {
	t.Helper()
	f := NewFile(WithClock(func() time.Time { return testNow }))
	if err := f.ConfigureFile(testFileHeader()); err != nil {
		t.Fatal(err)
	}
	if err := f.ConfigureBatch(testCompanyHeader()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Open(); err != nil {
		t.Fatal(err)
	}
	return f
}

func credit(routing, amount string) *Payment {
	return &Payment{
		AccountType:        Checking,
		RDFIIdentification: routing,
		DFIAccount:         "000111222",
		Amount:             decimal.RequireFromString(amount),
		IndividualName:     "Jane Doe",
	}
}

func lines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
}

func TestSingleCreditFile(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AddCredit(credit("021000021", "100.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CloseBatch(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Close(); err != nil {
		t.Fatal(err)
	}

	text := f.Contents()
	if !strings.HasSuffix(text, "\r\n") {
		t.Error("file does not end with CRLF")
	}
	got := lines(text)
	if len(got) != 10 {
		t.Fatalf("got %d lines, want 10", len(got))
	}
	for i, l := range got {
		if len(l) != RecordLength {
			t.Errorf("line %d has %d characters", i+1, len(l))
		}
	}

	wantHeader := "101" + " 081000032" + " 123456789" + "2610191430" + "A" + "094" + "10" + "1" +
		"FEDERAL RESERVE BANK   " + "KNOX PAYMENTS          " + "00000000"
	if got[0] != wantHeader {
		t.Errorf("file header\n got %q\nwant %q", got[0], wantHeader)
	}
	wantBatch := "5200" + "KNOX PAYMENTS   " + strings.Repeat(" ", 20) + "1234567890" + "PPD" +
		"PAYROLL   " + "OCT 19" + "261020" + "   1" + "08100003" + "0000001"
	if got[1] != wantBatch {
		t.Errorf("batch header\n got %q\nwant %q", got[1], wantBatch)
	}
	wantControl := "8200" + "000001" + "0002100002" + "000000000000" + "000000010000" + "1234567890" +
		strings.Repeat(" ", 25) + "08100003" + "0000001"
	if got[3] != wantControl {
		t.Errorf("batch control\n got %q\nwant %q", got[3], wantControl)
	}
	wantFile := "9" + "000001" + "000001" + "00000001" + "0002100002" + "000000000000" + "000000010000" +
		strings.Repeat(" ", 39)
	if got[4] != wantFile {
		t.Errorf("file control\n got %q\nwant %q", got[4], wantFile)
	}
	for i := 5; i < 10; i++ {
		if got[i] != strings.Repeat("9", RecordLength) {
			t.Errorf("line %d is not a filler record: %q", i+1, got[i])
		}
	}

	if f.BlockCount() != 1 || f.BatchCount() != 1 || f.EntryCount() != 1 {
		t.Errorf("blocks=%d batches=%d entries=%d, want 1 1 1", f.BlockCount(), f.BatchCount(), f.EntryCount())
	}
	if f.NextBatchNumber() != 2 {
		t.Errorf("NextBatchNumber() = %d, want 2", f.NextBatchNumber())
	}
	if err := Verify(strings.NewReader(text)); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestBatchTotals(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	debit := credit("021000021", "10.50")
	savings := credit("021000021", "20.25")
	savings.AccountType = Savings
	savings.Addendum = "Rent October"
	if _, err := f.AddDebit(debit); err != nil {
		t.Fatal(err)
	}
	recs, err := f.AddDebit(savings)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records for a payment with addendum, want 2", len(recs))
	}
	if _, err := f.AddCredit(credit("021000021", "100.00")); err != nil {
		t.Fatal(err)
	}
	control, err := f.CloseBatch()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		field      string
		start, end int
		want       string
	}{
		{"entry count", 4, 10, "000004"},
		{"entry hash", 10, 20, "0006300006"},
		{"debit total", 20, 32, "000000003075"},
		{"credit total", 32, 44, "000000010000"},
	}
	for _, tt := range tests {
		if got := string(control[tt.start:tt.end]); got != tt.want {
			t.Errorf("batch control %s = %q, want %q", tt.field, got, tt.want)
		}
	}
	if debit.TransactionCode != "27" || savings.TransactionCode != "37" {
		t.Errorf("transaction codes = %q %q, want 27 37", debit.TransactionCode, savings.TransactionCode)
	}
}

func TestFileTotalsAcrossBatches(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(CreditsOnly, PPD); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AddCredit(credit("021000021", "100.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CloseBatch(); err != nil {
		t.Fatal(err)
	}

	company := testCompanyHeader()
	company.CompanyName = "Knox Collections"
	if err := f.ConfigureBatch(company); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenBatch(DebitsOnly, CCD); err != nil {
		t.Fatal(err)
	}
	withAddenda := credit("081000032", "1.01")
	withAddenda.Addendum = "Fee"
	if _, err := f.AddDebit(withAddenda); err != nil {
		t.Fatal(err)
	}
	if _, err := f.AddDebit(credit("081000032", "2.02")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.CloseBatch(); err != nil {
		t.Fatal(err)
	}
	recs, err := f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("got %d file control and filler records, want 1", len(recs))
	}

	control := string(recs[0])
	tests := []struct {
		field      string
		start, end int
		want       string
	}{
		{"batch count", 1, 7, "000002"},
		{"block count", 7, 13, "000001"},
		{"entry count", 13, 21, "00000004"},
		{"entry hash", 21, 31, "0018300008"},
		{"debit total", 31, 43, "000000000303"},
		{"credit total", 43, 55, "000000010000"},
	}
	for _, tt := range tests {
		if got := control[tt.start:tt.end]; got != tt.want {
			t.Errorf("file control %s = %q, want %q", tt.field, got, tt.want)
		}
	}
	if !f.DebitTotal().Equal(decimal.RequireFromString("3.03")) {
		t.Errorf("DebitTotal() = %s, want 3.03", f.DebitTotal())
	}
	if !f.CreditTotal().Equal(decimal.RequireFromString("100")) {
		t.Errorf("CreditTotal() = %s, want 100", f.CreditTotal())
	}
	if f.Hash() != "0018300008" {
		t.Errorf("Hash() = %q", f.Hash())
	}

	got := lines(f.Contents())
	if len(got) != 10 {
		t.Fatalf("got %d lines, want 10", len(got))
	}
	if got[4][1:4] != "225" || got[4][50:53] != "CCD" || got[4][87:] != "0000002" {
		t.Errorf("second batch header = %q", got[4])
	}
	if got[5][87:] != "0000001" {
		t.Errorf("second batch trace numbering did not restart: %q", got[5])
	}
	if err := Verify(strings.NewReader(f.Contents())); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestTraceNumbers(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	first := credit("021000021", "1.00")
	rejected := credit("021000021", "2.00")
	rejected.AccountType = "MONEY_MARKET"
	second := credit("021000021", "3.00")

	for _, p := range []*Payment{first, rejected, second} {
		f.AddCredit(p)
	}
	if first.TraceNumber != 1 || second.TraceNumber != 2 {
		t.Errorf("trace numbers = %d, %d, want 1, 2", first.TraceNumber, second.TraceNumber)
	}
	if rejected.TraceNumber != 0 {
		t.Errorf("rejected payment trace number = %d, want 0", rejected.TraceNumber)
	}
}

func TestRejectedPayment(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	before := f.Contents()

	p := credit("021000021", "100.00")
	p.AccountType = "MONEY_MARKET"
	recs, err := f.AddCredit(p)
	if !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("AddCredit error = %v, want ErrInvalidPayment", err)
	}
	if recs != nil {
		t.Errorf("got records for a rejected payment")
	}
	if f.Contents() != before {
		t.Error("rejected payment changed the assembled text")
	}
	if n := len(f.ErrorRecords()); n != 1 {
		t.Fatalf("got %d error records, want 1", n)
	}

	p = credit("021000021", "0.005")
	if _, err := f.AddCredit(p); !errors.Is(err, ErrInvalidPayment) {
		t.Fatalf("AddCredit error = %v, want ErrInvalidPayment", err)
	}
	if n := len(f.ErrorRecords()); n != 2 {
		t.Fatalf("got %d error records, want 2", n)
	}

	control, err := f.CloseBatch()
	if err != nil {
		t.Fatal(err)
	}
	if got := string(control[4:10]); got != "000000" {
		t.Errorf("batch entry count = %q, want 000000", got)
	}
	if got := string(control[10:20]); got != "0000000000" {
		t.Errorf("batch entry hash = %q, want 0000000000", got)
	}
}

func TestAddendaSequenceAcrossBatches(t *testing.T) {
	f := newTestFile(t)
	var addenda []Record
	for i := 0; i < 2; i++ {
		if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
			t.Fatal(err)
		}
		p := credit("021000021", "5.00")
		p.Addendum = "Memo"
		recs, err := f.AddCredit(p)
		if err != nil {
			t.Fatal(err)
		}
		addenda = append(addenda, recs[1])
		if _, err := f.CloseBatch(); err != nil {
			t.Fatal(err)
		}
	}
	if got := string(addenda[0][83:87]); got != "0001" {
		t.Errorf("first addenda sequence = %q, want 0001", got)
	}
	if got := string(addenda[1][83:87]); got != "0002" {
		t.Errorf("second addenda sequence = %q, want 0002", got)
	}
	if got := string(addenda[1][87:]); got != "0000001" {
		t.Errorf("second addenda entry sequence = %q, want 0000001", got)
	}
}

func TestSequencingViolations(t *testing.T) {
	f := NewFile()
	if _, err := f.Open(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("Open before ConfigureFile error = %v", err)
	}
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("OpenBatch before Open error = %v", err)
	}

	f = newTestFile(t)
	if _, err := f.Open(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("second Open error = %v", err)
	}
	if err := f.ConfigureFile(testFileHeader()); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("ConfigureFile after Open error = %v", err)
	}
	if _, err := f.CloseBatch(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("CloseBatch without batch error = %v", err)
	}
	if _, err := f.AddCredit(credit("021000021", "1.00")); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("AddCredit without batch error = %v", err)
	}
	if len(f.ErrorRecords()) != 0 {
		t.Error("out of sequence payment was kept as an error record")
	}
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("OpenBatch with open batch error = %v", err)
	}
	if err := f.ConfigureBatch(testCompanyHeader()); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("ConfigureBatch with open batch error = %v", err)
	}
	if _, err := f.Close(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("Close with open batch error = %v", err)
	}
	if _, err := f.CloseBatch(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Close(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("second Close error = %v", err)
	}
}

func TestOpenBatchWithoutCompany(t *testing.T) {
	f := NewFile(WithClock(func() time.Time { return testNow }))
	if err := f.ConfigureFile(testFileHeader()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("OpenBatch without company error = %v", err)
	}
	if _, err := f.OpenBatch("20", PPD); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("OpenBatch without company error = %v", err)
	}
}

func TestOpenBatchInvalidCodes(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch("20", PPD); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("OpenBatch(\"20\") error = %v", err)
	}
	for _, sec := range []SecCode{"PP", "ppd", "XYZ", "Pé"} {
		if _, err := f.OpenBatch(MixedDebitsAndCredits, sec); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("OpenBatch(%q) error = %v", sec, err)
		}
	}
	if f.BatchCount() != 0 {
		t.Errorf("BatchCount() = %d after failed opens", f.BatchCount())
	}
}

func TestConfigureFileValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FileHeader)
	}{
		{"short destination", func(h *FileHeader) { h.ImmediateDestination = "08100003" }},
		{"letters in destination", func(h *FileHeader) { h.ImmediateDestination = "08100003X" }},
		{"long origin", func(h *FileHeader) { h.ImmediateOrigin = "12345678901" }},
		{"bad modifier", func(h *FileHeader) { h.FileModifier = "ab" }},
		{"negative batch id", func(h *FileHeader) { h.BatchID = -1 }},
	}
	for _, tt := range tests {
		h := testFileHeader()
		tt.modify(&h)
		if err := NewFile().ConfigureFile(h); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: error = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestConfigureBatchValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CompanyHeader)
	}{
		{"missing name", func(c *CompanyHeader) { c.CompanyName = "" }},
		{"missing id", func(c *CompanyHeader) { c.CompanyID = "" }},
		{"long id", func(c *CompanyHeader) { c.CompanyID = "12345678901" }},
		{"missing effective date", func(c *CompanyHeader) { c.EffectiveEntryDate = time.Time{} }},
	}
	for _, tt := range tests {
		c := testCompanyHeader()
		tt.modify(&c)
		if err := NewFile().ConfigureBatch(c); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: error = %v, want ErrInvalidConfig", tt.name, err)
		}
	}
}

func TestNextBatchNumber(t *testing.T) {
	f := NewFile()
	c := testCompanyHeader()
	c.NextBatchNumber = 41
	if err := f.ConfigureBatch(c); err != nil {
		t.Fatal(err)
	}
	if f.NextBatchNumber() != 41 {
		t.Errorf("NextBatchNumber() = %d, want 41", f.NextBatchNumber())
	}
	c.NextBatchNumber = 0
	if err := f.ConfigureBatch(c); err != nil {
		t.Fatal(err)
	}
	if f.NextBatchNumber() != 41 {
		t.Errorf("NextBatchNumber() after reconfigure = %d, want 41", f.NextBatchNumber())
	}
}

func TestReset(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	bad := credit("021000021", "1.00")
	bad.AccountType = "MONEY_MARKET"
	f.AddCredit(bad)
	id := f.ID()

	f.Reset()
	if f.Contents() != "" {
		t.Error("Reset kept assembled text")
	}
	if len(f.ErrorRecords()) != 0 {
		t.Error("Reset kept error records")
	}
	if f.BatchCount() != 0 || f.EntryCount() != 0 || f.NextBatchNumber() != 0 {
		t.Error("Reset kept counters")
	}
	if f.ID() == id {
		t.Error("Reset kept the file ID")
	}
	if _, err := f.Open(); !errors.Is(err, ErrSequencingViolation) {
		t.Errorf("Open after Reset error = %v, want ErrSequencingViolation", err)
	}

	if err := f.ConfigureFile(testFileHeader()); err != nil {
		t.Fatal(err)
	}
	if err := f.ConfigureBatch(testCompanyHeader()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	p := credit("021000021", "1.00")
	if _, err := f.AddCredit(p); err != nil {
		t.Fatal(err)
	}
	if p.TraceNumber != 1 {
		t.Errorf("trace number after Reset = %d, want 1", p.TraceNumber)
	}
}

func TestIndependentFiles(t *testing.T) {
	a := newTestFile(t)
	b := newTestFile(t)
	if _, err := a.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	if _, err := b.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	pa := credit("021000021", "1.00")
	pb := credit("021000021", "2.00")
	a.AddCredit(credit("021000021", "1.00"))
	a.AddCredit(pa)
	b.AddCredit(pb)
	if pa.TraceNumber != 2 || pb.TraceNumber != 1 {
		t.Errorf("trace numbers = %d, %d, want 2, 1", pa.TraceNumber, pb.TraceNumber)
	}
	if a.ID() == b.ID() {
		t.Error("files share an ID")
	}
}

func TestWrite(t *testing.T) {
	f := newTestFile(t)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != f.Contents() {
		t.Errorf("Write wrote %q, want %q", buf.String(), f.Contents())
	}
}

func TestFileCreationTimeStamp(t *testing.T) {
	if _, err := NewFile().FileCreationTimeStamp(); err == nil {
		t.Error("expected error before Open")
	}
	f := newTestFile(t)
	ts, err := f.FileCreationTimeStamp()
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(testNow.Truncate(time.Minute)) {
		t.Errorf("FileCreationTimeStamp() = %v, want %v", ts, testNow.Truncate(time.Minute))
	}
	if f.FileID() != "A" {
		t.Errorf("FileID() = %q, want A", f.FileID())
	}
}

func TestTotalOverflowLeavesStateUnchanged(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 101; i++ {
		if _, err := f.AddCredit(credit("021000021", "99999999.99")); err != nil {
			t.Fatal(err)
		}
	}
	before := f.Contents()
	if _, err := f.CloseBatch(); !errors.Is(err, ErrStructuralDefect) || !errors.Is(err, ErrFieldOverflow) {
		t.Fatalf("CloseBatch error = %v, want ErrStructuralDefect and ErrFieldOverflow", err)
	}
	if f.Contents() != before || f.NextBatchNumber() != 1 || f.EntryCount() != 0 {
		t.Error("failed CloseBatch changed file state")
	}
}

func TestSubCentAmountsKeepTotalsConsistent(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := f.AddCredit(credit("021000021", "0.005")); !errors.Is(err, ErrInvalidPayment) {
			t.Fatalf("AddCredit(0.005) error = %v, want ErrInvalidPayment", err)
		}
	}
	if _, err := f.AddCredit(credit("021000021", "0.010")); err != nil {
		t.Fatal(err)
	}
	control, err := f.CloseBatch()
	if err != nil {
		t.Fatal(err)
	}
	if got := string(control[32:44]); got != "000000000001" {
		t.Errorf("batch credit total = %q, want 000000000001", got)
	}
	if n := len(f.ErrorRecords()); n != 3 {
		t.Errorf("got %d error records, want 3", n)
	}
}

func TestAccentedPayeeAccepted(t *testing.T) {
	f := newTestFile(t)
	if _, err := f.OpenBatch(MixedDebitsAndCredits, PPD); err != nil {
		t.Fatal(err)
	}
	p := credit("021000021", "10.00")
	p.IndividualName = "José Müller"
	recs, err := f.AddCredit(p)
	if err != nil {
		t.Fatalf("AddCredit error = %v", err)
	}
	if len(recs[0]) != RecordLength {
		t.Errorf("detail record has %d bytes", len(recs[0]))
	}
	if len(f.ErrorRecords()) != 0 {
		t.Error("accented payee kept as an error record")
	}
}
