package nacha

import (
	"fmt"
	"strconv"

	"github.com/moov-io/ach"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Checking AccountType = "CHECKING"
	Savings  AccountType = "SAVINGS"
)

var (
	checkingCredit = strconv.Itoa(ach.CheckingCredit)
	checkingDebit  = strconv.Itoa(ach.CheckingDebit)
	savingsCredit  = strconv.Itoa(ach.SavingsCredit)
	savingsDebit   = strconv.Itoa(ach.SavingsDebit)
)

// Payment is one credit or debit instruction.
type Payment struct {
	// TransactionCode is derived from AccountType when empty.
	TransactionCode    string
	// AccountType defaults to Checking.
	AccountType        AccountType
	RDFIIdentification string
	DFIAccount         string
	Amount             decimal.Decimal
	IndividualIDNumber string
	IndividualName     string
	DiscretionaryData  string
	Addendum           string
	// TraceNumber is assigned when the payment is added to a batch and is
	// zero for rejected payments.
	TraceNumber        int
}

// IsDebit reports whether the transaction code is a checking or savings debit.
// Every other code counts toward the credit total.
func (p *Payment) IsDebit() bool {
	return isDebitCode(p.TransactionCode)
}

func isDebitCode(code string) bool {
	return code == checkingDebit || code == savingsDebit
}

// resolveTransactionCode fills in TransactionCode from the account type and
// direction when the caller did not supply one.
func (p *Payment) resolveTransactionCode(debit bool) error {
	if p.TransactionCode != "" {
		if len(p.TransactionCode) != 2 || !isDigits(p.TransactionCode) {
			return fmt.Errorf("transaction code %q: %w", p.TransactionCode, ErrInvalidPayment)
		}
		return nil
	}
	switch p.AccountType {
	case Checking, "":
		p.TransactionCode = checkingCredit
		if debit {
			p.TransactionCode = checkingDebit
		}
	case Savings:
		p.TransactionCode = savingsCredit
		if debit {
			p.TransactionCode = savingsDebit
		}
	default:
		return fmt.Errorf("account type %q: %w", p.AccountType, ErrInvalidPayment)
	}
	return nil
}

// encodedEntry is a detail record, its optional addenda record, and the
// amounts it contributes to the batch control totals.
type encodedEntry struct {
	records []Record
	hash    int64
	amount  decimal.Decimal
	debit   bool
}

func (e encodedEntry) hasAddenda() bool {
	return len(e.records) == 2
}

// encodeEntry renders p as a detail record followed by an addenda record when
// p carries an addendum. Nothing is returned unless every record is valid.
func encodeEntry(p Payment, odfi string, addendaSeq int) (encodedEntry, error) {
	rdfi, err := formatNumeric(p.RDFIIdentification, 9)
	if err != nil {
		return encodedEntry{}, fmt.Errorf("routing number: %w: %w", err, ErrInvalidPayment)
	}
	if !p.Amount.Equal(p.Amount.Round(2)) {
		return encodedEntry{}, fmt.Errorf("amount %s has fractional cents: %w", p.Amount, ErrInvalidPayment)
	}
	amount, err := formatAmount(p.Amount, 10)
	if err != nil {
		return encodedEntry{}, fmt.Errorf("amount: %w: %w", err, ErrInvalidPayment)
	}
	trace, err := formatInt(int64(p.TraceNumber), 7)
	if err != nil {
		return encodedEntry{}, fmt.Errorf("trace number: %w: %w", err, ErrInvalidPayment)
	}

	indicator := "0"
	if p.Addendum != "" {
		indicator = "1"
	}

	detail, err := newRecord("entry detail", "6"+
		p.TransactionCode+
		rdfi+
		formatText(p.DFIAccount, 17)+
		amount+
		formatText(p.IndividualIDNumber, 15)+
		formatText(p.IndividualName, 22)+
		formatText(p.DiscretionaryData, 2)+
		indicator+
		odfi+
		trace)
	if err != nil {
		return encodedEntry{}, err
	}

	hash, err := strconv.ParseInt(rdfi[:8], 10, 64)
	if err != nil {
		return encodedEntry{}, fmt.Errorf("routing number: %w: %w", err, ErrInvalidPayment)
	}
	e := encodedEntry{
		records: []Record{detail},
		hash:    hash,
		amount:  p.Amount,
		debit:   isDebitCode(p.TransactionCode),
	}

	if indicator == "1" {
		seq, err := formatInt(int64(addendaSeq), 4)
		if err != nil {
			return encodedEntry{}, fmt.Errorf("addenda sequence: %w: %w", err, ErrStructuralDefect)
		}
		addenda, err := newRecord("addenda", "705"+formatText(p.Addendum, 80)+seq+trace)
		if err != nil {
			return encodedEntry{}, err
		}
		e.records = append(e.records, addenda)
	}
	return e, nil
}
