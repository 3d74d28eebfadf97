// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Manual is a catalog record for one radio's PDF manual.
type Manual struct {
	// ID is the radio identifier used in file names and section ids
	// (e.g. "elecraft-kx2").
	ID string `json:"id" yaml:"id"`

	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`

	// Name is the model name (e.g. "KX2").
	Name string `json:"name" yaml:"name"`

	Revision string `json:"revision" yaml:"revision"`

	// Filename is the PDF file name inside the PDF directory.
	Filename string `json:"filename" yaml:"filename"`

	// URL is where the download collaborator fetched the PDF from.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// ForceOCR routes the manual through OCR even when the classifier
	// finds a text layer (e.g. a garbled embedded layer).
	ForceOCR bool `json:"force_ocr,omitempty" yaml:"force_ocr,omitempty"`
}

// Radio returns the skeleton metadata block for the manual.
func (m Manual) Radio() RadioInfo {
	manufacturer := m.Manufacturer
	if manufacturer == "" {
		manufacturer = "Unknown"
	}
	return RadioInfo{
		ID:           m.ID,
		Manufacturer: manufacturer,
		Model:        m.Name,
		Revision:     m.Revision,
		PDFFilename:  m.Filename,
	}
}
