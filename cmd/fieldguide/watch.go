// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/fieldguide/internal/ledger"
	"github.com/pdiddy/fieldguide/internal/pipeline"
	"github.com/pdiddy/fieldguide/internal/watch"
	"github.com/pdiddy/fieldguide/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-extract manuals when their PDFs appear or change",
	Long: `Watch observes the PDF directory and runs extraction for catalog manuals
whose file is created or rewritten. Events are debounced so a download in
progress is handled once it settles. With --record, a PDF whose modification
time matches the latest recorded run is skipped. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, cat, err := setup()
	if err != nil {
		return err
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	record, _ := cmd.Flags().GetBool("record")
	forceOCR, _ := cmd.Flags().GetBool("force-ocr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(cfg, log)
	runner.ForceOCR = forceOCR
	runner.Progress = progressPrinter(1)

	var l *ledger.Ledger
	if record {
		l, err = ledger.Open(cfg.OutputDir)
		if err != nil {
			return err
		}
		defer l.Close()
		runner.Recorder = l
	}

	w := &watch.Watcher{
		Dir:      cfg.PDFDir,
		Catalog:  cat,
		Debounce: debounce,
		Logger:   log,
		Handle: func(ctx context.Context, m types.Manual, path string) {
			if l != nil && upToDate(ctx, l, m, path) {
				fmt.Printf("unchanged: %s\n", m.ID)
				return
			}
			res, err := runner.Run(ctx, m, path)
			if err != nil {
				fmt.Printf("failed:    %s (%s)\n", m.ID, pipeline.Describe(err))
				return
			}
			fmt.Printf("extracted: %s (%s, %d pages) -> %s\n", m.ID, res.Method, len(res.Pages), res.SkeletonPath)
		},
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.PDFDir)
	return w.Run(ctx)
}

func upToDate(ctx context.Context, l *ledger.Ledger, m types.Manual, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	current, err := l.Current(ctx, m.ID, info.ModTime())
	return err == nil && current
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed PDF is processed")
	watchCmd.Flags().Bool("record", false, "record runs in the extraction ledger and skip unchanged PDFs")
	watchCmd.Flags().Bool("force-ocr", false, "use OCR even when the PDF has a text layer")

	rootCmd.AddCommand(watchCmd)
}
