package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterhanneman/nacha"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Manifest describes one file: its header settings and company batches.
type Manifest struct {
	File    nacha.FileHeader `yaml:"file"`
	Batches []BatchSpec      `yaml:"batches"`
}

type BatchSpec struct {
	Company          nacha.CompanyHeader    `yaml:"company"`
	ServiceClassCode nacha.ServiceClassCode `yaml:"service_class_code"`
	SecCode          nacha.SecCode          `yaml:"sec_code"`
	Payments         []PaymentSpec          `yaml:"payments"`
	// PaymentsXLSX is a spreadsheet of additional payments, relative to the manifest.
	PaymentsXLSX string `yaml:"payments_xlsx"`
}

// PaymentSpec is a payment as written in a manifest or spreadsheet row.
type PaymentSpec struct {
	// Direction is "credit" or "debit".
	Direction         string `yaml:"direction"`
	AccountType       string `yaml:"account_type"`
	TransactionCode   string `yaml:"transaction_code"`
	RoutingNumber     string `yaml:"routing_number"`
	AccountNumber     string `yaml:"account_number"`
	Amount            string `yaml:"amount"`
	IndividualID      string `yaml:"individual_id"`
	IndividualName    string `yaml:"individual_name"`
	DiscretionaryData string `yaml:"discretionary_data"`
	Addendum          string `yaml:"addendum"`
}

func (p PaymentSpec) isDebit() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(p.Direction)) {
	case "debit":
		return true, nil
	case "credit", "":
		return false, nil
	}
	return false, fmt.Errorf("direction %q must be credit or debit", p.Direction)
}

func (p PaymentSpec) payment() (*nacha.Payment, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", p.Amount, err)
	}
	return &nacha.Payment{
		TransactionCode:    strings.TrimSpace(p.TransactionCode),
		AccountType:        nacha.AccountType(strings.ToUpper(strings.TrimSpace(p.AccountType))),
		RDFIIdentification: strings.TrimSpace(p.RoutingNumber),
		DFIAccount:         p.AccountNumber,
		Amount:             amount,
		IndividualIDNumber: p.IndividualID,
		IndividualName:     p.IndividualName,
		DiscretionaryData:  p.DiscretionaryData,
		Addendum:           p.Addendum,
	}, nil
}

// LoadManifest reads a manifest and resolves spreadsheet paths against its directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	dir := filepath.Dir(path)
	for i := range m.Batches {
		b := &m.Batches[i]
		if b.PaymentsXLSX != "" && !filepath.IsAbs(b.PaymentsXLSX) {
			b.PaymentsXLSX = filepath.Join(dir, b.PaymentsXLSX)
		}
	}
	applyEnv(&m.File)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Validate() error {
	if err := m.File.Validate(); err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if len(m.Batches) == 0 {
		return fmt.Errorf("manifest has no batches")
	}
	for i, b := range m.Batches {
		if err := b.Company.Validate(); err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		if b.ServiceClassCode == "" || b.SecCode == "" {
			return fmt.Errorf("batch %d: service_class_code and sec_code are required", i+1)
		}
	}
	return nil
}

// applyEnv overrides file header settings with NACHA_* environment variables.
func applyEnv(h *nacha.FileHeader) {
	fields := map[string]*string{
		"NACHA_IMMEDIATE_DESTINATION":      &h.ImmediateDestination,
		"NACHA_IMMEDIATE_ORIGIN":           &h.ImmediateOrigin,
		"NACHA_IMMEDIATE_DESTINATION_NAME": &h.ImmediateDestinationName,
		"NACHA_IMMEDIATE_ORIGIN_NAME":      &h.ImmediateOriginName,
		"NACHA_FILE_MODIFIER":              &h.FileModifier,
	}
	for key, field := range fields {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
}
