// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the fieldguide extraction
// pipeline: extracted pages, inferred structure, and the draft skeleton
// handed to curators.
package types

// ExtractionMethod identifies which extractor produced a document's pages.
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native"
	MethodOCR    ExtractionMethod = "ocr"
)

// String returns the method name as written into skeletons and reports.
func (m ExtractionMethod) String() string { return string(m) }

// Label returns the name shown in the check report.
func (m ExtractionMethod) Label() string {
	if m == MethodOCR {
		return "OCR"
	}
	return string(m)
}

// Page holds the text of one physical page. Number is 1-based and pages of a
// document are always contiguous and in document order.
type Page struct {
	// Number is the 1-based page index in document order.
	Number int `json:"page" yaml:"page"`

	// Text is the page text exactly as produced by the extractor.
	Text string `json:"text" yaml:"text"`
}

// TOCEntry is a candidate table-of-contents line.
type TOCEntry struct {
	Title string `json:"title" yaml:"title"`
	Page  int    `json:"page" yaml:"page"`
}

// MenuEntryType is the block type tag carried by every MenuEntry.
const MenuEntryType = "menuEntry"

// MenuEntry is a menu-name / description pair found in manual text.
type MenuEntry struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
