// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/fieldguide/internal/catalog"
	"github.com/pdiddy/fieldguide/internal/container"
	"github.com/pdiddy/fieldguide/internal/extract"
	"github.com/pdiddy/fieldguide/internal/infer"
	"github.com/pdiddy/fieldguide/internal/ocr"
	"github.com/pdiddy/fieldguide/internal/pdfdoc"
	"github.com/pdiddy/fieldguide/internal/pipeline"
	"github.com/pdiddy/fieldguide/internal/skeleton"
	"github.com/pdiddy/fieldguide/pkg/types"
)

func defaultConfig() types.PipelineConfig {
	return types.DefaultPipelineConfig()
}

// setDefaults registers every configuration key so that file, environment
// and flag values all unmarshal into types.PipelineConfig.
func setDefaults(v *viper.Viper) {
	d := defaultConfig()
	v.SetDefault("pdf_dir", d.PDFDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("classifier.min_text_chars", d.Classifier.MinTextChars)
	v.SetDefault("ocr.engine", string(d.OCR.Engine))
	v.SetDefault("ocr.dpi", d.OCR.DPI)
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.binary", d.OCR.Binary)
	v.SetDefault("ocr.image", d.OCR.Image)
	v.SetDefault("inference.toc_page_window", d.Inference.TOCPageWindow)
	v.SetDefault("inference.max_name_len", d.Inference.MaxNameLen)
	v.SetDefault("inference.min_desc_len", d.Inference.MinDescLen)
	v.SetDefault("inference.max_desc_len", d.Inference.MaxDescLen)
	v.SetDefault("skeleton.sections", skeleton.DefaultSections)
}

// loadConfig returns the merged configuration.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	switch cfg.OCR.Engine {
	case types.EngineAuto, types.EngineTesseract, types.EngineContainer:
	default:
		return cfg, fmt.Errorf("unknown ocr.engine %q: want auto, tesseract, or container", cfg.OCR.Engine)
	}
	return cfg, nil
}

// newLogger returns the diagnostics logger. Progress lines go to stdout;
// diagnostics go to stderr.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func loadCatalog(cfg types.PipelineConfig) (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog)
}

// newRunner wires the pipeline from cfg. The OCR engine is detected on first
// use, so batches that never need OCR never probe for tesseract.
func newRunner(cfg types.PipelineConfig, log *slog.Logger) *pipeline.Runner {
	engine := ocr.NewLazy(func(ctx context.Context) (ocr.Engine, error) {
		e, err := ocr.Detect(ctx, cfg.OCR, container.OSExecutor{})
		if err == nil {
			log.Debug("OCR engine ready", "engine", e.Name())
		}
		return e, err
	})

	return &pipeline.Runner{
		Opener: pdfdoc.FileOpener{},
		Native: extract.NativeExtractor{},
		OCR: &extract.OCRExtractor{
			Engine:   engine,
			DPI:      cfg.OCR.DPI,
			Language: cfg.OCR.Language,
		},
		Classifier: cfg.Classifier,
		Rules:      infer.RulesFrom(cfg.Inference),
		Template:   skeleton.TemplateFrom(cfg.Skeleton.Sections),
		OutputDir:  cfg.OutputDir,
		Logger:     log,
	}
}

// setup loads configuration, logger and catalog for a command.
func setup() (types.PipelineConfig, *slog.Logger, *catalog.Catalog, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return cfg, nil, nil, err
	}
	log := newLogger(os.Stderr, viper.GetBool("verbose"))
	cat, err := loadCatalog(cfg)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, log, cat, nil
}
