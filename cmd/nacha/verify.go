package main

import (
	"fmt"
	"os"

	"github.com/peterhanneman/nacha"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Check the record layout and ordering of an assembled file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := nacha.Verify(f); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		logger.Info("file verified", "path", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
