// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fieldguide/internal/ledger"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Query the extraction ledger",
	Long: `Index queries the SQLite ledger that "extract --record" maintains in
<output-dir>/index/extraction.db: recorded runs and full-text search over
extracted page text.`,
}

var indexSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over extracted pages",
	Long: `Search runs an FTS5 query over the page text of the latest run of each
radio. Matches are shown with the radio id, page number and a snippet.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndexSearch,
}

func runIndexSearch(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := setup()
	if err != nil {
		return err
	}
	radio, _ := cmd.Flags().GetString("radio")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	l, err := ledger.Open(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer l.Close()

	hits, err := l.Search(context.Background(), strings.Join(args, " "), radio, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-5s  %s\n", "Radio", "Page", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, h := range hits {
		snippet := strings.Join(strings.Fields(h.Snippet), " ")
		fmt.Fprintf(os.Stdout, "%-20s  %-5d  %s\n", h.RadioID, h.Page, snippet)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

var indexRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded extraction runs",
	Args:  cobra.NoArgs,
	RunE:  runIndexRuns,
}

func runIndexRuns(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := setup()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	l, err := ledger.Open(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer l.Close()

	runs, err := l.Runs(context.Background(), limit)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(runs)
	case "table":
	default:
		return fmt.Errorf("unknown format %q: want table, json, or yaml", format)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-20s  %-6s  %5s  %4s  %4s  %s\n", "Radio", "Method", "Pages", "TOC", "Menu", "Recorded")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-20s  %-6s  %5d  %4d  %4d  %s\n",
			r.RadioID, r.Method, r.PageCount, r.TOCCount, r.MenuCount, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	indexSearchCmd.Flags().String("radio", "", "restrict results to one radio id")
	indexSearchCmd.Flags().Int("limit", 20, "maximum number of results")
	indexSearchCmd.Flags().Bool("json", false, "output results as JSON")

	indexRunsCmd.Flags().Int("limit", 20, "maximum number of runs")
	indexRunsCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	indexCmd.AddCommand(indexSearchCmd)
	indexCmd.AddCommand(indexRunsCmd)
	rootCmd.AddCommand(indexCmd)
}
