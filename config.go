package nacha

import (
	"fmt"
	"strings"
	"time"
)

// FileHeader holds the settings for the file header record.
type FileHeader struct {
	// BatchID is rendered as the 8 digit reference code.
	BatchID                  int    `yaml:"batch_id"`
	ImmediateDestination     string `yaml:"immediate_destination"`
	ImmediateOrigin          string `yaml:"immediate_origin"`
	ImmediateDestinationName string `yaml:"immediate_destination_name"`
	ImmediateOriginName      string `yaml:"immediate_origin_name"`
	// FileModifier distinguishes multiple files sent on the same day. Defaults to "A".
	FileModifier             string `yaml:"file_modifier"`
}

func (h *FileHeader) applyDefaults() {
	h.ImmediateDestination = strings.TrimSpace(h.ImmediateDestination)
	h.ImmediateOrigin = strings.TrimSpace(h.ImmediateOrigin)
	if h.FileModifier == "" {
		h.FileModifier = "A"
	}
}

// Validate checks the fields the record layout depends on.
func (h FileHeader) Validate() error {
	dest := strings.TrimSpace(h.ImmediateDestination)
	if len(dest) != 9 || !isDigits(dest) {
		return fmt.Errorf("immediate destination %q must be 9 digits: %w", h.ImmediateDestination, ErrInvalidConfig)
	}
	orig := strings.TrimSpace(h.ImmediateOrigin)
	if len(orig) < 9 || len(orig) > 10 {
		return fmt.Errorf("immediate origin %q must be 9 or 10 characters: %w", h.ImmediateOrigin, ErrInvalidConfig)
	}
	if h.BatchID < 0 {
		return fmt.Errorf("batch id %d is negative: %w", h.BatchID, ErrInvalidConfig)
	}
	if m := h.FileModifier; m != "" {
		if len(m) != 1 || !(m[0] >= 'A' && m[0] <= 'Z' || m[0] >= '0' && m[0] <= '9') {
			return fmt.Errorf("file modifier %q must be A-Z or 0-9: %w", m, ErrInvalidConfig)
		}
	}
	return nil
}

// CompanyHeader holds the settings for the company batches that follow.
type CompanyHeader struct {
	// NextBatchNumber is the number given to the next batch opened. Defaults to 1.
	NextBatchNumber          int       `yaml:"next_batch_number"`
	CompanyName              string    `yaml:"company_name"`
	CompanyDiscretionaryData string    `yaml:"company_discretionary_data"`
	CompanyID                string    `yaml:"company_id"`
	CompanyEntryDescription  string    `yaml:"company_entry_description"`
	CompanyDescriptiveDate   string    `yaml:"company_descriptive_date"`
	EffectiveEntryDate       time.Time `yaml:"effective_entry_date"`
}

func (c *CompanyHeader) applyDefaults() {
	if c.NextBatchNumber == 0 {
		c.NextBatchNumber = 1
	}
}

func (c CompanyHeader) Validate() error {
	if strings.TrimSpace(c.CompanyName) == "" {
		return fmt.Errorf("company name is required: %w", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.CompanyID) == "" {
		return fmt.Errorf("company id is required: %w", ErrInvalidConfig)
	}
	if len(c.CompanyID) > 10 {
		return fmt.Errorf("company id %q is longer than 10 characters: %w", c.CompanyID, ErrInvalidConfig)
	}
	if c.EffectiveEntryDate.IsZero() {
		return fmt.Errorf("effective entry date is required: %w", ErrInvalidConfig)
	}
	if c.NextBatchNumber < 0 {
		return fmt.Errorf("batch number %d is negative: %w", c.NextBatchNumber, ErrInvalidConfig)
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
