// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fieldguide/internal/pipeline"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the manuals in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, cat, err := setup()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%-18s  %-12s  %-12s  %-4s  %-8s  %s\n", "Radio ID", "Manufacturer", "Model", "Rev", "PDF", "Filename")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
		for _, m := range cat.Manuals() {
			present := "missing"
			if _, err := os.Stat(pipeline.PDFPath(cfg.PDFDir, m)); err == nil {
				present = "present"
			}
			name := m.Filename
			if m.ForceOCR {
				name += " (force OCR)"
			}
			fmt.Fprintf(os.Stdout, "%-18s  %-12s  %-12s  %-4s  %-8s  %s\n",
				m.ID, m.Manufacturer, m.Name, m.Revision, present, name)
		}
		fmt.Fprintf(os.Stdout, "\n%d manuals\n", cat.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
