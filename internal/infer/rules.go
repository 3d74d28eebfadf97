// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package infer scans extracted manual text for structure: table-of-contents
// lines near the front of the document and menu-name / description pairs
// anywhere in it. Both scans are read-only pattern heuristics whose patterns
// and bounds live in Rules so they can be tuned without code changes.
package infer

import (
	"regexp"

	"github.com/pdiddy/fieldguide/pkg/types"
)

var (
	// tocLine matches "Title ......... 42" on a single line: an upper-case
	// initial, title characters, a dot leader of two or more periods, and a
	// page number ending the line.
	tocLine = regexp.MustCompile(`(?m)^([A-Z][A-Za-z &/\t-]+?)\.{2,}[ \t]*(\d+)[ \t\r]*$`)

	// menuHeader matches the start of a menu entry: a line opening with an
	// upper-case name of 3 to 21 characters and a separator (hyphen, colon,
	// or en dash).
	menuHeader = regexp.MustCompile(`(?m)^([A-Z][A-Z0-9 \t]{2,20})[ \t]*[-:–]`)
)

// Rules are the tunable inference heuristics.
type Rules struct {
	// TOC matches one table-of-contents line; group 1 is the title and
	// group 2 the page number.
	TOC *regexp.Regexp

	// MenuHeader matches a menu name and its separator at a line start;
	// group 1 is the name.
	MenuHeader *regexp.Regexp

	// TOCPageWindow limits TOC scanning to the leading pages.
	TOCPageWindow int

	// MaxNameLen rejects longer menu names.
	MaxNameLen int

	// MinDescLen rejects descriptions of this length or shorter.
	MinDescLen int

	// MaxDescLen truncates descriptions.
	MaxDescLen int
}

// DefaultRules returns the stock heuristics: a 10-page TOC window, menu names
// up to 20 characters, descriptions longer than 10 and cut at 500.
func DefaultRules() Rules {
	return Rules{
		TOC:           tocLine,
		MenuHeader:    menuHeader,
		TOCPageWindow: 10,
		MaxNameLen:    20,
		MinDescLen:    10,
		MaxDescLen:    500,
	}
}

// RulesFrom returns DefaultRules with the bounds from cfg applied. Zero
// values keep the defaults.
func RulesFrom(cfg types.InferenceConfig) Rules {
	r := DefaultRules()
	if cfg.TOCPageWindow > 0 {
		r.TOCPageWindow = cfg.TOCPageWindow
	}
	if cfg.MaxNameLen > 0 {
		r.MaxNameLen = cfg.MaxNameLen
	}
	if cfg.MinDescLen > 0 {
		r.MinDescLen = cfg.MinDescLen
	}
	if cfg.MaxDescLen > 0 {
		r.MaxDescLen = cfg.MaxDescLen
	}
	return r
}
