// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package skeleton builds the draft content document curators start from:
// radio metadata, one stub per template section, and the inferred structure
// attached as reference material.
package skeleton

import (
	"fmt"
	"strings"

	"github.com/pdiddy/fieldguide/pkg/types"
)

// DefaultSections is the section template applied to every radio.
var DefaultSections = []string{
	"Operation Basics",
	"Menu System Reference",
	"CW/Keyer Settings",
	"Filters & DSP",
	"Power & Battery",
	"ATU Operation",
	"Specifications",
	"Quick Troubleshooting",
}

const sourcePagesPlaceholder = "[TODO: Add relevant page numbers from PDF]"

// Template is an ordered list of section titles.
type Template []string

// TemplateFrom returns titles as a Template, or the default template when
// titles is empty.
func TemplateFrom(titles []string) Template {
	if len(titles) == 0 {
		return Template(DefaultSections)
	}
	return Template(titles)
}

// Slugify lowercases title and replaces spaces and slashes with hyphens and
// ampersands with "and".
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return strings.ReplaceAll(s, "&", "and")
}

// SectionID returns the stable id of a section for a radio.
func SectionID(radioID, title string) string {
	return radioID + "-" + Slugify(title)
}

// Option adjusts an assembled skeleton.
type Option func(*types.Skeleton)

// WithMenuEntries attaches inferred menu entries as curator reference.
func WithMenuEntries(entries []types.MenuEntry) Option {
	return func(s *types.Skeleton) {
		s.ExtractedMenu = entries
	}
}

// Assemble builds the skeleton for one radio. The section list depends only
// on the template: inferred TOC entries are attached as-is and never mapped
// into sections. method must be the method that produced pages.
func (t Template) Assemble(radio types.RadioInfo, pages []types.Page, toc []types.TOCEntry, method types.ExtractionMethod, opts ...Option) types.Skeleton {
	source := "PDF"
	if method == types.MethodOCR {
		source = "OCR text"
	}

	sections := make([]types.SectionStub, len(t))
	for i, title := range t {
		sections[i] = types.SectionStub{
			ID:        SectionID(radio.ID, title),
			Title:     title,
			SortOrder: i + 1,
			Blocks: []types.Block{{
				Type: "paragraph",
				Text: fmt.Sprintf("[TODO: Extract %s content from %s]", title, source),
			}},
			SourcePages: sourcePagesPlaceholder,
		}
	}

	if toc == nil {
		toc = []types.TOCEntry{}
	}
	s := types.Skeleton{
		Radio:            radio,
		Sections:         sections,
		ExtractedTOC:     toc,
		PageCount:        len(pages),
		ExtractionMethod: method,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Assemble applies the default template.
func Assemble(radio types.RadioInfo, pages []types.Page, toc []types.TOCEntry, method types.ExtractionMethod, opts ...Option) types.Skeleton {
	return TemplateFrom(nil).Assemble(radio, pages, toc, method, opts...)
}
