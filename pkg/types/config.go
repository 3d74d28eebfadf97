// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ClassifierConfig holds the thresholds for choosing native vs OCR extraction.
type ClassifierConfig struct {
	// MinTextChars is the trimmed text length below which an image-bearing
	// document is treated as a scan (default 500).
	MinTextChars int `json:"min_text_chars" yaml:"min_text_chars" mapstructure:"min_text_chars"`
}

// OCREngineKind selects the recognition engine.
type OCREngineKind string

const (
	// EngineAuto tries the local tesseract binary first, then the container image.
	EngineAuto      OCREngineKind = "auto"
	EngineTesseract OCREngineKind = "tesseract"
	EngineContainer OCREngineKind = "container"
)

// OCRConfig holds settings for the OCR extractor.
type OCRConfig struct {
	// Engine selects the recognition engine: auto, tesseract, or container.
	Engine OCREngineKind `json:"engine" yaml:"engine" mapstructure:"engine"`

	// DPI is the page rendering resolution (default 150).
	DPI float64 `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// Language is the tesseract language model (default "eng").
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// Binary is the tesseract executable name or path (default "tesseract").
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// Image is the container image that provides tesseract as its entrypoint.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// InferenceConfig holds the structural inference bounds.
type InferenceConfig struct {
	// TOCPageWindow is how many leading pages are scanned for TOC lines (default 10).
	TOCPageWindow int `json:"toc_page_window" yaml:"toc_page_window" mapstructure:"toc_page_window"`

	// MaxNameLen is the longest accepted menu name, in characters (default 20).
	MaxNameLen int `json:"max_name_len" yaml:"max_name_len" mapstructure:"max_name_len"`

	// MinDescLen is the description length a menu entry must exceed (default 10).
	MinDescLen int `json:"min_desc_len" yaml:"min_desc_len" mapstructure:"min_desc_len"`

	// MaxDescLen truncates menu descriptions (default 500).
	MaxDescLen int `json:"max_desc_len" yaml:"max_desc_len" mapstructure:"max_desc_len"`
}

// SkeletonConfig holds the section template applied to every radio.
type SkeletonConfig struct {
	// Sections lists the section titles in order. Empty means the built-in template.
	Sections []string `json:"sections" yaml:"sections" mapstructure:"sections"`
}

// PipelineConfig groups the settings for a pipeline run.
type PipelineConfig struct {
	// PDFDir holds the downloaded manuals.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir" mapstructure:"pdf_dir"`

	// OutputDir receives raw text dumps, skeletons, and the ledger index.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Catalog is an optional catalog YAML path; empty uses the built-in catalog.
	Catalog string `json:"catalog" yaml:"catalog" mapstructure:"catalog"`

	// Jobs is the number of documents processed concurrently (default 1).
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`

	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	OCR        OCRConfig        `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Inference  InferenceConfig  `json:"inference" yaml:"inference" mapstructure:"inference"`
	Skeleton   SkeletonConfig   `json:"skeleton" yaml:"skeleton" mapstructure:"skeleton"`
}

// DefaultPipelineConfig returns the configuration used when no file,
// environment variable, or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		PDFDir:    "content/pdfs",
		OutputDir: "content/extracted",
		Jobs:      1,
		Classifier: ClassifierConfig{
			MinTextChars: 500,
		},
		OCR: OCRConfig{
			Engine:   EngineAuto,
			DPI:      150,
			Language: "eng",
			Binary:   "tesseract",
			Image:    "tesseract:latest",
		},
		Inference: InferenceConfig{
			TOCPageWindow: 10,
			MaxNameLen:    20,
			MinDescLen:    10,
			MaxDescLen:    500,
		},
	}
}
