// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the fieldguide CLI, which turns radio
// manual PDFs into raw text dumps and draft content skeletons.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the fieldguide CLI.
var rootCmd = &cobra.Command{
	Use:   "fieldguide",
	Short: "Extract structured reference data from radio manual PDFs",
	Long: `fieldguide ingests vendor PDF manuals for amateur-radio transceivers.
For each manual it decides whether the PDF carries a usable text layer or is
a scan, extracts per-page text through the matching path (native text or OCR),
and writes a raw text dump plus a draft skeleton for human curation.

Manuals are named by radio id from the catalog (see "fieldguide catalog").`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := defaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./fieldguide.yaml or ~/.config/fieldguide/fieldguide.yaml)")
	pf.String("pdf-dir", defaults.PDFDir, "directory holding the manual PDFs")
	pf.String("output-dir", defaults.OutputDir, "directory for raw text, skeletons and the index")
	pf.String("catalog", "", "catalog YAML file (default: built-in catalog)")
	pf.BoolP("verbose", "v", false, "log debug diagnostics to stderr")

	viper.BindPFlag("pdf_dir", pf.Lookup("pdf-dir"))
	viper.BindPFlag("output_dir", pf.Lookup("output-dir"))
	viper.BindPFlag("catalog", pf.Lookup("catalog"))
	viper.BindPFlag("verbose", pf.Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fieldguide")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "fieldguide"))
		}
	}

	viper.SetEnvPrefix("FIELDGUIDE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
