package main

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadPaymentsXLSX reads payments from the first sheet of an .xlsx workbook.
// The first row names the columns using the manifest payment keys.
func loadPaymentsXLSX(path string) ([]PaymentSpec, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"routing_number", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing %q column", path, required)
		}
	}

	var payments []PaymentSpec
	for _, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("routing_number") == "" && cell("amount") == "" {
			continue
		}
		payments = append(payments, PaymentSpec{
			Direction:         cell("direction"),
			AccountType:       cell("account_type"),
			TransactionCode:   cell("transaction_code"),
			RoutingNumber:     cell("routing_number"),
			AccountNumber:     cell("account_number"),
			Amount:            cell("amount"),
			IndividualID:      cell("individual_id"),
			IndividualName:    cell("individual_name"),
			DiscretionaryData: cell("discretionary_data"),
			Addendum:          cell("addendum"),
		})
	}
	return payments, nil
}
