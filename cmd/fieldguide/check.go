// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which manuals need OCR without extracting",
	Long: `Check classifies every catalog manual and prints its PDF size, the
extraction method it would get, and why. Missing PDFs are listed as missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, cat, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Println("Checking PDFs for extraction method...")
		fmt.Println()
		newRunner(cfg, log).Check(ctx, cat.Manuals(), cfg.PDFDir, os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
