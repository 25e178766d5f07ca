package menu_test

import (
	"strings"
	"testing"

	"blockedit/internal/domain"
	"blockedit/internal/locale"
	"blockedit/internal/menu"
)

func newMenu() *menu.Menu {
	return menu.New(locale.Labeler("en"))
}

func TestOpen_ResetsState(t *testing.T) {
	m := newMenu()
	m.Open("b1")
	m.SetSearch("head", nil)
	m.Next(nil)
	m.Close()
	m.Open("b2")
	if !m.IsOpen() || m.Selected() != 0 || m.Search() != "" || m.BlockID() != "b2" {
		t.Errorf("expected fresh state, got open=%v sel=%d search=%q id=%q", m.IsOpen(), m.Selected(), m.Search(), m.BlockID())
	}
}

func TestOptions_NeverOffersDivider(t *testing.T) {
	m := newMenu()
	m.Open("b")
	recent := menu.NewRecent(0)
	recent.Push(domain.BlockTypeDivider)
	for _, o := range m.Options(recent) {
		if o.Type == domain.BlockTypeDivider {
			t.Fatal("divider offered")
		}
	}
	if got := len(m.Options(recent)); got != len(domain.BlockTypes)-1 {
		t.Errorf("expected %d options, got %d", len(domain.BlockTypes)-1, got)
	}
}

func TestOptions_RecentFirstWithoutDuplicates(t *testing.T) {
	m := newMenu()
	m.Open("b")
	recent := menu.NewRecent(0)
	recent.Push(domain.BlockTypeCode)
	recent.Push(domain.BlockTypeCallout)
	recent.Push(domain.BlockTypeCode)

	opts := m.Options(recent)
	if opts[0].Type != domain.BlockTypeCode || opts[1].Type != domain.BlockTypeCallout {
		t.Fatalf("expected code, callout first; got %v, %v", opts[0].Type, opts[1].Type)
	}
	if !opts[0].Recent || opts[2].Recent {
		t.Error("recent flag misplaced")
	}
	count := map[domain.BlockType]int{}
	for _, o := range opts {
		count[o.Type]++
	}
	for bt, n := range count {
		if n != 1 {
			t.Errorf("%s listed %d times", bt, n)
		}
	}
}

func TestOptions_FilterIsCaseInsensitiveSubstring(t *testing.T) {
	m := newMenu()
	m.Open("b")
	label := locale.Labeler("en")
	for _, search := range []string{"HEAD", "list", "o", "zzz"} {
		m.SetSearch(search, nil)
		got := map[domain.BlockType]bool{}
		for _, o := range m.Options(nil) {
			got[o.Type] = true
		}
		for _, bt := range domain.BlockTypes {
			want := bt != domain.BlockTypeDivider && strings.Contains(strings.ToLower(label(bt)), strings.ToLower(search))
			if got[bt] != want {
				t.Errorf("search %q: %s included=%v want %v", search, bt, got[bt], want)
			}
		}
	}
}

func TestNext_WrapsToZero(t *testing.T) {
	m := newMenu()
	m.Open("b")
	m.SetSearch("e", nil)
	n := len(m.Options(nil))
	if n < 2 {
		t.Fatalf("need at least two options, got %d", n)
	}
	for i := 0; i < n-1; i++ {
		m.Next(nil)
	}
	if m.Selected() != n-1 {
		t.Fatalf("expected last index, got %d", m.Selected())
	}
	m.Next(nil)
	if m.Selected() != 0 {
		t.Errorf("expected wrap to 0, got %d", m.Selected())
	}
	m.Prev(nil)
	if m.Selected() != n-1 {
		t.Errorf("expected wrap to %d, got %d", n-1, m.Selected())
	}
}

func TestNext_FiveOptionsFromLastIndex(t *testing.T) {
	m := newMenu()
	m.Open("b")
	m.SetSearch("t", nil) // Text, Bulleted list, Numbered list, To-do, Callout
	if n := len(m.Options(nil)); n != 5 {
		t.Fatalf("expected 5 options, got %d", n)
	}
	for i := 0; i < 4; i++ {
		m.Next(nil)
	}
	if m.Selected() != 4 {
		t.Fatalf("expected index 4, got %d", m.Selected())
	}
	m.Next(nil)
	if m.Selected() != 0 {
		t.Errorf("expected 0 after ArrowDown at 4, got %d", m.Selected())
	}
}

func TestConfirm_ReturnsHighlightedAndCloses(t *testing.T) {
	m := newMenu()
	m.Open("b1")
	m.SetSearch("heading", nil)
	m.Next(nil)
	id, bt, ok := m.Confirm(nil)
	if !ok || id != "b1" || bt != domain.BlockTypeHeading2 {
		t.Errorf("got %q %s %v", id, bt, ok)
	}
	if m.IsOpen() {
		t.Error("menu still open")
	}
}

func TestConfirm_EmptyFilter(t *testing.T) {
	m := newMenu()
	m.Open("b1")
	m.SetSearch("nothing matches", nil)
	if _, _, ok := m.Confirm(nil); ok {
		t.Error("expected no selection")
	}
}

func TestRecent_Limit(t *testing.T) {
	r := menu.NewRecent(2)
	r.Push(domain.BlockTypeCode)
	r.Push(domain.BlockTypeImage)
	r.Push(domain.BlockTypeCallout)
	got := r.Types()
	if len(got) != 2 || got[0] != domain.BlockTypeCallout || got[1] != domain.BlockTypeImage {
		t.Errorf("unexpected history %v", got)
	}
}
