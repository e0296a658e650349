package nacha

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SecCode string

const (
	ARC SecCode = "ARC"
	BOC SecCode = "BOC"
	CBR SecCode = "CBR"
	CCD SecCode = "CCD"
	CIE SecCode = "CIE"
	COR SecCode = "COR"
	CTX SecCode = "CTX"
	DNE SecCode = "DNE"
	IAT SecCode = "IAT"
	MTE SecCode = "MTE"
	PBR SecCode = "PBR"
	POP SecCode = "POP"
	POS SecCode = "POS"
	PPD SecCode = "PPD"
	RCK SecCode = "RCK"
	TEL SecCode = "TEL"
	WEB SecCode = "WEB"
	XCK SecCode = "XCK"
)

var secCodes = map[SecCode]bool{
	ARC: true, BOC: true, CBR: true, CCD: true, CIE: true, COR: true,
	CTX: true, DNE: true, IAT: true, MTE: true, PBR: true, POP: true,
	POS: true, PPD: true, RCK: true, TEL: true, WEB: true, XCK: true,
}

func (c SecCode) valid() bool {
	return secCodes[c]
}

// ServiceClassCode identifies whether a batch holds credits, debits or both.
type ServiceClassCode string

const (
	MixedDebitsAndCredits ServiceClassCode = "200"
	CreditsOnly           ServiceClassCode = "220"
	DebitsOnly            ServiceClassCode = "225"
)

// batch is the running state of the open company batch.
type batch struct {
	scc    ServiceClassCode
	sec    SecCode
	number int

	entryCount  int64
	entryHash   int64
	debitTotal  decimal.Decimal
	creditTotal decimal.Decimal
	traceNumber int
}

func (b *batch) add(e encodedEntry) {
	b.entryCount += int64(len(e.records))
	b.entryHash += e.hash
	if e.debit {
		b.debitTotal = b.debitTotal.Add(e.amount)
	} else {
		b.creditTotal = b.creditTotal.Add(e.amount)
	}
	b.traceNumber++
}

// OpenBatch renders the company batch header and starts a new batch. The file
// must be open and company settings applied with ConfigureBatch.
func (f *File) OpenBatch(scc ServiceClassCode, sec SecCode) (Record, error) {
	switch {
	case f.state == stateBatchOpen:
		return "", fmt.Errorf("open batch: batch %d is still open: %w", f.batch.number, ErrSequencingViolation)
	case f.state != stateOpen:
		return "", fmt.Errorf("open batch: file is not open: %w", ErrSequencingViolation)
	case !f.companyConfigured:
		return "", fmt.Errorf("open batch: company settings not applied: %w", ErrSequencingViolation)
	}
	if len(scc) != 3 || !isDigits(string(scc)) {
		return "", fmt.Errorf("open batch: service class code %q: %w", scc, ErrInvalidConfig)
	}
	if !sec.valid() {
		return "", fmt.Errorf("open batch: sec code %q: %w", sec, ErrInvalidConfig)
	}

	number, err := formatInt(int64(f.batchNumber), 7)
	if err != nil {
		return "", fmt.Errorf("open batch: batch number: %w: %w", err, ErrStructuralDefect)
	}
	c := f.company
	rec, err := newRecord("batch header", "5"+
		string(scc)+
		formatText(c.CompanyName, 16)+
		formatText(c.CompanyDiscretionaryData, 20)+
		formatText(c.CompanyID, 10)+
		string(sec)+
		formatText(c.CompanyEntryDescription, 10)+
		formatText(c.CompanyDescriptiveDate, 6)+
		c.EffectiveEntryDate.Format("060102")+
		"   "+
		"1"+
		f.odfi()+
		number)
	if err != nil {
		return "", fmt.Errorf("open batch: %w", err)
	}

	f.batch = &batch{
		scc:         scc,
		sec:         sec,
		number:      f.batchNumber,
		debitTotal:  decimal.Zero,
		creditTotal: decimal.Zero,
	}
	f.batchCount++
	f.state = stateBatchOpen
	f.emit(rec)
	f.logger.Debug("batch opened", "batch", f.batch.number, "scc", scc, "sec", sec)
	return rec, nil
}

// AddDebit adds a debit to the open batch. Without a transaction code the
// payment is a checking (27) or savings (37) debit depending on AccountType.
func (f *File) AddDebit(p *Payment) ([]Record, error) {
	return f.addEntry(p, true)
}

// AddCredit adds a credit to the open batch. Without a transaction code the
// payment is a checking (22) or savings (32) credit depending on AccountType.
func (f *File) AddCredit(p *Payment) ([]Record, error) {
	return f.addEntry(p, false)
}

func (f *File) addEntry(p *Payment, debit bool) ([]Record, error) {
	if f.state != stateBatchOpen {
		return nil, fmt.Errorf("add entry: no open batch: %w", ErrSequencingViolation)
	}

	err := p.resolveTransactionCode(debit)
	var e encodedEntry
	if err == nil {
		p.TraceNumber = f.batch.traceNumber + 1
		e, err = encodeEntry(*p, f.odfi(), f.addendaSeq)
	}
	if err != nil {
		p.TraceNumber = 0
		f.errorRecords = append(f.errorRecords, *p)
		f.logger.Warn("payment rejected", "batch", f.batch.number, "name", p.IndividualName, "err", err)
		return nil, fmt.Errorf("add entry: %w", err)
	}

	f.batch.add(e)
	if e.hasAddenda() {
		f.addendaSeq++
	}
	for _, rec := range e.records {
		f.emit(rec)
	}
	f.logger.Debug("entry added", "batch", f.batch.number, "trace", p.TraceNumber, "code", p.TransactionCode, "amount", p.Amount.StringFixed(2))
	return e.records, nil
}

// CloseBatch renders the batch control record, folds the batch totals into
// the file totals and clears the batch counters.
func (f *File) CloseBatch() (Record, error) {
	if f.state != stateBatchOpen {
		return "", fmt.Errorf("close batch: no open batch: %w", ErrSequencingViolation)
	}
	b := f.batch

	count, err := formatInt(b.entryCount, 6)
	if err != nil {
		return "", fmt.Errorf("close batch: entry count: %w: %w", err, ErrStructuralDefect)
	}
	debit, err := formatAmount(b.debitTotal, 12)
	if err != nil {
		return "", fmt.Errorf("close batch: debit total: %w: %w", err, ErrStructuralDefect)
	}
	credit, err := formatAmount(b.creditTotal, 12)
	if err != nil {
		return "", fmt.Errorf("close batch: credit total: %w: %w", err, ErrStructuralDefect)
	}
	rec, err := newRecord("batch control", "8"+
		string(b.scc)+
		count+
		formatHash(b.entryHash)+
		debit+
		credit+
		formatText(f.company.CompanyID, 10)+
		formatText("", 25)+
		f.odfi()+
		fmt.Sprintf("%07d", b.number))
	if err != nil {
		return "", fmt.Errorf("close batch: %w", err)
	}

	f.batchNumber++
	f.entryCount += b.entryCount
	f.entryHash += b.entryHash
	f.debitTotal = f.debitTotal.Add(b.debitTotal)
	f.creditTotal = f.creditTotal.Add(b.creditTotal)
	f.batch = nil
	f.state = stateOpen
	f.emit(rec)
	f.logger.Debug("batch closed", "batch", b.number, "entries", b.entryCount,
		"debits", b.debitTotal.StringFixed(2), "credits", b.creditTotal.StringFixed(2))
	return rec, nil
}

// NextBatchNumber returns the number the next opened batch will carry.
func (f *File) NextBatchNumber() int {
	return f.batchNumber
}
