package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/peterhanneman/nacha"
	"github.com/spf13/cobra"
)

var (
	manifestPath string
	outputPath   string
	strict       bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a NACHA file from a manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		file, err := buildFile(m, logger, time.Now)
		if err != nil {
			return err
		}
		rejected := file.ErrorRecords()
		if len(rejected) > 0 && strict {
			return fmt.Errorf("%d payments were rejected", len(rejected))
		}
		if err := nacha.Verify(strings.NewReader(file.Contents())); err != nil {
			return fmt.Errorf("assembled file failed verification: %w", err)
		}

		if outputPath == "" || outputPath == "-" {
			err = file.Write(cmd.OutOrStdout())
		} else {
			err = writeFile(file, outputPath)
		}
		if err != nil {
			return err
		}
		logger.Info("file built",
			"file_id", file.ID().String(),
			"batches", file.BatchCount(),
			"entries", file.EntryCount(),
			"blocks", file.BlockCount(),
			"debits", file.DebitTotal().StringFixed(2),
			"credits", file.CreditTotal().StringFixed(2),
			"rejected", len(rejected))
		return nil
	},
}

// buildFile assembles the manifest into a closed file. Payments the file
// rejects are logged and left in the file's error records.
func buildFile(m *Manifest, logger *slog.Logger, now func() time.Time) (*nacha.File, error) {
	f := nacha.NewFile(nacha.WithLogger(logger), nacha.WithClock(now))
	if err := f.ConfigureFile(m.File); err != nil {
		return nil, err
	}
	if _, err := f.Open(); err != nil {
		return nil, err
	}

	for i, b := range m.Batches {
		specs := b.Payments
		if b.PaymentsXLSX != "" {
			more, err := loadPaymentsXLSX(b.PaymentsXLSX)
			if err != nil {
				return nil, fmt.Errorf("batch %d: %w", i+1, err)
			}
			specs = append(specs, more...)
		}

		if err := f.ConfigureBatch(b.Company); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		if _, err := f.OpenBatch(b.ServiceClassCode, b.SecCode); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		for j, spec := range specs {
			debit, err := spec.isDebit()
			if err != nil {
				return nil, fmt.Errorf("batch %d payment %d: %w", i+1, j+1, err)
			}
			p, err := spec.payment()
			if err != nil {
				return nil, fmt.Errorf("batch %d payment %d: %w", i+1, j+1, err)
			}
			if debit {
				_, err = f.AddDebit(p)
			} else {
				_, err = f.AddCredit(p)
			}
			if err != nil {
				logger.Warn("payment rejected", "batch", i+1, "payment", j+1, "err", err)
			}
		}
		if _, err := f.CloseBatch(); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
	}

	if _, err := f.Close(); err != nil {
		return nil, err
	}
	return f, nil
}

func writeFile(f *nacha.File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func init() {
	buildCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "manifest.yaml", "Path to the file manifest")
	buildCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Output path, - for stdout")
	buildCmd.Flags().BoolVar(&strict, "strict", false, "Fail when any payment is rejected")
	rootCmd.AddCommand(buildCmd)
}
