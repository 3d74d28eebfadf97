// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/fieldguide/internal/extract"
	"github.com/pdiddy/fieldguide/internal/ledger"
	"github.com/pdiddy/fieldguide/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [radio-id]",
	Short: "Extract text and a draft skeleton from manual PDFs",
	Long: `Extract processes one manual by radio id, or every catalog manual with
--all. Each manual is classified as text-based or image-based; text-based
PDFs are read from their text layer and image-based PDFs are rendered and
run through tesseract.

Outputs land in the output directory:
  <radio-id>_raw_text.txt     per-page text dump
  <radio-id>_skeleton.json    draft content skeleton
OCR runs use the _ocr suffix (for example <radio-id>_skeleton_ocr.json).

A failing manual does not stop an --all batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if all == (len(args) == 1) {
		return fmt.Errorf("provide a radio id or --all")
	}

	cfg, log, cat, err := setup()
	if err != nil {
		return err
	}

	var manuals []types.Manual
	if all {
		manuals = cat.Manuals()
	} else {
		m, ok := cat.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown radio %q (available: %s)", args[0], strings.Join(cat.IDs(), ", "))
		}
		manuals = []types.Manual{m}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(cfg, log)
	runner.ForceOCR, _ = cmd.Flags().GetBool("force-ocr")
	runner.Progress = progressPrinter(cfg.Jobs)

	if viper.GetBool("record") {
		l, err := ledger.Open(cfg.OutputDir)
		if err != nil {
			return err
		}
		defer l.Close()
		runner.Recorder = l
	}

	result := runner.RunBatch(ctx, manuals, cfg.PDFDir, cfg.Jobs, os.Stdout)
	if result.HasFailures() {
		ids := make([]string, 0, len(result.Errors))
		for id := range result.Errors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			log.Debug("extraction failed", "radio", id, "error", result.Errors[id])
		}
		return fmt.Errorf("%d manual(s) failed extraction", result.Failed)
	}
	if !all && result.Missing > 0 {
		return fmt.Errorf("PDF for %s not found in %s", manuals[0].ID, cfg.PDFDir)
	}
	return nil
}

// progressPrinter prints OCR page progress. Parallel runs prefix the radio
// id so interleaved lines stay attributable.
func progressPrinter(jobs int) func(string, extract.Progress) {
	var mu sync.Mutex
	return func(radioID string, p extract.Progress) {
		mu.Lock()
		defer mu.Unlock()
		if jobs > 1 {
			fmt.Printf("  [%s] Page %d/%d: %d chars (OCR)\n", radioID, p.Page, p.Total, p.Chars)
			return
		}
		fmt.Printf("  Page %d/%d: %d chars (OCR)\n", p.Page, p.Total, p.Chars)
	}
}

func init() {
	extractCmd.Flags().Bool("all", false, "extract every catalog manual")
	extractCmd.Flags().Bool("force-ocr", false, "use OCR even when the PDF has a text layer")
	extractCmd.Flags().IntP("jobs", "j", 1, "number of manuals processed concurrently")
	extractCmd.Flags().Bool("record", false, "record runs and index page text in the extraction ledger")

	viper.BindPFlag("jobs", extractCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("record", extractCmd.Flags().Lookup("record"))

	rootCmd.AddCommand(extractCmd)
}
