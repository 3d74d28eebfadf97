// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package infer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/fieldguide/pkg/types"
)

// Rejected is a menu candidate that matched the pattern but failed a length
// bound. Rejections are kept so curators can review near misses.
type Rejected struct {
	Page        int    `json:"page,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

const (
	ReasonNameTooLong = "name too long"
	ReasonDescShort   = "description too short"
)

// Structure holds everything inferred from one document.
type Structure struct {
	TOC      []types.TOCEntry
	Menu     []types.MenuEntry
	Rejected []Rejected
}

// Infer runs TOC detection over the leading pages and menu detection over
// every page, keeping results in page order.
func Infer(pages []types.Page, rules Rules) Structure {
	s := Structure{TOC: FindTOC(pages, rules)}
	for _, p := range pages {
		entries, rejected := FindMenuEntries(p.Text, rules)
		s.Menu = append(s.Menu, entries...)
		for _, r := range rejected {
			r.Page = p.Number
			s.Rejected = append(s.Rejected, r)
		}
	}
	return s
}

// FindTOC returns TOC candidates from the first rules.TOCPageWindow pages in
// order of discovery. Duplicates are kept.
func FindTOC(pages []types.Page, rules Rules) []types.TOCEntry {
	window := rules.TOCPageWindow
	if window <= 0 || window > len(pages) {
		window = len(pages)
	}

	var entries []types.TOCEntry
	for _, p := range pages[:window] {
		for _, m := range rules.TOC.FindAllStringSubmatch(p.Text, -1) {
			page, err := strconv.Atoi(m[2])
			if err != nil || page < 1 {
				continue
			}
			entries = append(entries, types.TOCEntry{
				Title: strings.TrimSpace(m[1]),
				Page:  page,
			})
		}
	}
	return entries
}

// FindMenuEntries returns menu entries found in text, plus candidates that
// failed the length bounds.
//
// A description starts after the separator and any following whitespace and
// ends at the newline before the next menu-name line, at a blank line, or at
// the end of text. It then has its whitespace runs collapsed.
func FindMenuEntries(text string, rules Rules) ([]types.MenuEntry, []Rejected) {
	headers := rules.MenuHeader.FindAllStringSubmatchIndex(text, -1)

	var (
		entries  []types.MenuEntry
		rejected []Rejected
		cursor   int
	)
	for i, h := range headers {
		if h[0] < cursor {
			continue
		}
		name := strings.TrimSpace(text[h[2]:h[3]])

		start := h[1]
		for start < len(text) {
			r, size := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += size
		}
		end := descriptionEnd(text, start, headers[i+1:])
		cursor = end

		desc := strings.Join(strings.Fields(text[start:end]), " ")
		switch {
		case utf8.RuneCountInString(name) > rules.MaxNameLen:
			rejected = append(rejected, Rejected{Name: name, Description: desc, Reason: ReasonNameTooLong})
		case utf8.RuneCountInString(desc) <= rules.MinDescLen:
			rejected = append(rejected, Rejected{Name: name, Description: desc, Reason: ReasonDescShort})
		default:
			entries = append(entries, types.MenuEntry{
				Type:        types.MenuEntryType,
				Name:        name,
				Description: truncateRunes(desc, rules.MaxDescLen),
			})
		}
	}
	return entries, rejected
}

// descriptionEnd finds where a description beginning at start stops. A
// description holds at least one character, so terminators are searched from
// start+1.
func descriptionEnd(text string, start int, next [][]int) int {
	if start >= len(text) {
		return len(text)
	}
	end := len(text)
	if i := strings.Index(text[start+1:], "\n\n"); i >= 0 {
		end = start + 1 + i
	}
	for _, h := range next {
		// The newline ending the previous line is the terminator.
		if nl := h[0] - 1; nl >= start+1 {
			if nl < end {
				end = nl
			}
			break
		}
	}
	return end
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
