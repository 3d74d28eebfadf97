// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Block is one content block inside a section.
type Block struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

// SectionStub is a placeholder section awaiting manual curation.
type SectionStub struct {
	// ID is "<radio id>-<slugified title>".
	ID string `json:"id" yaml:"id"`

	Title string `json:"title" yaml:"title"`

	// SortOrder runs 1..N across the section template.
	SortOrder int `json:"sortOrder" yaml:"sort_order"`

	Blocks []Block `json:"blocks" yaml:"blocks"`

	// SourcePages is a placeholder the curator replaces with page references.
	SourcePages string `json:"_sourcePages" yaml:"source_pages"`
}

// RadioInfo is the radio metadata block at the top of a skeleton.
type RadioInfo struct {
	ID           string `json:"id" yaml:"id"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Model        string `json:"model" yaml:"model"`
	Revision     string `json:"revision" yaml:"revision"`
	PDFFilename  string `json:"pdfFilename" yaml:"pdf_filename"`
}

// Skeleton is the draft document written for each processed manual. Fields
// prefixed with an underscore in JSON are reference material for the curator
// and are dropped from the final content record.
type Skeleton struct {
	Radio            RadioInfo        `json:"radio" yaml:"radio"`
	Sections         []SectionStub    `json:"sections" yaml:"sections"`
	ExtractedTOC     []TOCEntry       `json:"_extractedTOC" yaml:"extracted_toc"`
	ExtractedMenu    []MenuEntry      `json:"_extractedMenuEntries,omitempty" yaml:"extracted_menu_entries,omitempty"`
	PageCount        int              `json:"_pageCount" yaml:"page_count"`
	ExtractionMethod ExtractionMethod `json:"_extractionMethod" yaml:"extraction_method"`
}
