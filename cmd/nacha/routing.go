package main

import (
	"fmt"

	"github.com/peterhanneman/nacha"
	"github.com/spf13/cobra"
)

var routingCmd = &cobra.Command{
	Use:   "routing ROUTING_NUMBER...",
	Short: "Check ABA routing number checksums",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invalid := 0
		for _, rn := range args {
			status := "valid"
			if !nacha.IsValidRoutingNumber(rn) {
				status = "invalid"
				invalid++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rn, status)
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d routing numbers are invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routingCmd)
}
