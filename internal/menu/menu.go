// Package menu is the contextual "pick a block type" menu: filtering by a
// search string, circular keyboard navigation and confirm/cancel.
package menu

import (
	"strings"

	"golang.org/x/text/cases"

	"blockedit/internal/domain"
)

// Option is one entry of the menu.
type Option struct {
	Type   domain.BlockType
	Label  string
	Recent bool
}

// Menu holds the open/closed state. The zero value is closed.
type Menu struct {
	open     bool
	blockID  string
	search   string
	selected int
	label    func(domain.BlockType) string
	fold     cases.Caser
}

// New creates a closed menu. label resolves display names; nil uses the
// raw type name.
func New(label func(domain.BlockType) string) *Menu {
	if label == nil {
		label = func(t domain.BlockType) string { return string(t) }
	}
	return &Menu{label: label, fold: cases.Fold()}
}

// IsOpen reports whether the menu is showing.
func (m *Menu) IsOpen() bool { return m.open }

// BlockID returns the block the menu acts on.
func (m *Menu) BlockID() string { return m.blockID }

// Search returns the current filter text.
func (m *Menu) Search() string { return m.search }

// Selected returns the highlighted index.
func (m *Menu) Selected() int { return m.selected }

// Open shows the menu for a block with an empty search and the first
// option highlighted.
func (m *Menu) Open(blockID string) {
	m.open = true
	m.blockID = blockID
	m.search = ""
	m.selected = 0
}

// Toggle opens the menu for blockID, or closes it when already open.
func (m *Menu) Toggle(blockID string) {
	if m.open {
		m.Close()
		return
	}
	m.Open(blockID)
}

// Close hides the menu without touching any block.
func (m *Menu) Close() {
	m.open = false
	m.blockID = ""
	m.search = ""
	m.selected = 0
}

// SetSearch changes the filter. The highlight is clamped to the new list.
func (m *Menu) SetSearch(search string, recent *Recent) {
	if !m.open {
		return
	}
	m.search = search
	if n := len(m.Options(recent)); m.selected >= n {
		m.selected = 0
	}
}

// Options returns what the menu currently shows. Dividers are never
// offered. With no search the recent types come first, followed by every
// other type; with a search only types whose label contains it
// (case-insensitively) are listed.
func (m *Menu) Options(recent *Recent) []Option {
	if m.search != "" {
		needle := m.fold.String(m.search)
		var out []Option
		for _, t := range domain.BlockTypes {
			if t == domain.BlockTypeDivider {
				continue
			}
			label := m.label(t)
			if strings.Contains(m.fold.String(label), needle) {
				out = append(out, Option{Type: t, Label: label})
			}
		}
		return out
	}

	var out []Option
	seen := map[domain.BlockType]bool{}
	for _, t := range recent.Types() {
		if t == domain.BlockTypeDivider || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, Option{Type: t, Label: m.label(t), Recent: true})
	}
	for _, t := range domain.BlockTypes {
		if t == domain.BlockTypeDivider || seen[t] {
			continue
		}
		out = append(out, Option{Type: t, Label: m.label(t)})
	}
	return out
}

// Next moves the highlight down, wrapping to the top.
func (m *Menu) Next(recent *Recent) {
	if n := len(m.Options(recent)); m.open && n > 0 {
		m.selected = (m.selected + 1) % n
	}
}

// Prev moves the highlight up, wrapping to the bottom.
func (m *Menu) Prev(recent *Recent) {
	if n := len(m.Options(recent)); m.open && n > 0 {
		m.selected = (m.selected - 1 + n) % n
	}
}

// Confirm closes the menu and returns the highlighted type. ok is false
// when the menu was closed or the filtered list is empty; the menu closes
// either way.
func (m *Menu) Confirm(recent *Recent) (blockID string, t domain.BlockType, ok bool) {
	if !m.open {
		return "", "", false
	}
	opts := m.Options(recent)
	blockID = m.blockID
	i := m.clampSelected(len(opts))
	m.Close()
	if len(opts) == 0 {
		return blockID, "", false
	}
	return blockID, opts[i].Type, true
}

func (m *Menu) clampSelected(n int) int {
	if m.selected < 0 || m.selected >= n {
		return 0
	}
	return m.selected
}
