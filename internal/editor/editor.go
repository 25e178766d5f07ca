// Package editor wires the block store to the host rendering layer. It
// translates keystrokes, input, paste, drag and toolbar events into block
// operations, keeps the insert menu and selection toolbar in step, and
// hands every mutation to the autosave scheduler.
//
// Editor methods are safe to call from multiple goroutines; they serialize
// on one lock. Caret placement after a mutation is always handed to
// Host.Defer so it runs after the host has painted the new content.
package editor

import (
	"sync"
	"time"

	xhtml "golang.org/x/net/html"

	"blockedit/internal/autosave"
	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/dragdrop"
	"blockedit/internal/locale"
	"blockedit/internal/menu"
	"blockedit/internal/surface"
	"blockedit/internal/toolbar"
)

// DefaultTrigger opens the insert menu when typed at the start of a block.
const DefaultTrigger = "/"

// Host is the rendering layer.
type Host interface {
	// Surface returns the editable region showing a block's content, or
	// nil when the block is not rendered.
	Surface(blockID string) surface.Surface
	// ItemSurface returns the editable region of one list item.
	ItemSurface(blockID string, item int) surface.Surface
	// Defer runs fn once the host has painted pending changes.
	Defer(fn func())
}

// Codec converts between blocks and their persisted text.
type Codec interface {
	TextToBlocks(text string, deterministic bool) []domain.Block
	BlocksToText(blocks []domain.Block) string
}

// Options configures an Editor. Zero values pick the defaults.
type Options struct {
	Locale        string
	Trigger       string
	AutosaveDelay time.Duration
	ToolbarOffset float64
	RecentLimit   int
	// Recent seeds the insert-menu history, newest first. The editor's
	// current history is returned by RecentTypes.
	Recent []domain.BlockType
	// Prompt asks for a link URL; nil disables the link command.
	Prompt toolbar.Prompt
	// OnChange receives the serialized document after each autosave.
	OnChange func(text string)
	// OnImageError is told when reading an attached image fails. The block
	// is left untouched either way.
	OnImageError func(blockID string, err error)
	// NewID generates block ids; nil uses random UUIDs.
	NewID blocks.IDFunc
}

// Editor is one open document.
type Editor struct {
	mu sync.Mutex

	host  Host
	codec Codec
	opts  Options

	store    *blocks.Store
	menu     *menu.Menu
	recent   *menu.Recent
	drag     dragdrop.Controller
	toolbar  *toolbar.Controller
	autosave *autosave.Scheduler
	closed   bool

	// typedMenu is set while the menu was opened by typing the trigger.
	typedMenu bool
}

// New opens text in a fresh editor. Initial ids are derived
// deterministically from the text.
func New(text string, host Host, codec Codec, opts Options) *Editor {
	if opts.Trigger == "" {
		opts.Trigger = DefaultTrigger
	}
	e := &Editor{
		host:    host,
		codec:   codec,
		opts:    opts,
		menu:    menu.New(locale.Labeler(opts.Locale)),
		recent:  menu.NewRecent(opts.RecentLimit),
		toolbar: toolbar.New(opts.ToolbarOffset, opts.Prompt),
	}
	for i := len(opts.Recent) - 1; i >= 0; i-- {
		e.recent.Push(opts.Recent[i])
	}
	e.autosave = autosave.New(opts.AutosaveDelay, codec.BlocksToText, opts.OnChange)
	e.store = blocks.New(codec.TextToBlocks(text, true), opts.NewID)
	e.store.OnMutate(e.autosave.Schedule)
	return e
}

// Blocks returns a snapshot of the document.
func (e *Editor) Blocks() []domain.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Blocks()
}

// Block returns one block.
func (e *Editor) Block(id string) (domain.Block, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Text serializes the current document.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codec.BlocksToText(e.store.Blocks())
}

// Load replaces the document with text, as when the persisted copy changed
// underneath the editor. A pending autosave is discarded and none is
// scheduled.
func (e *Editor) Load(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autosave.Cancel()
	e.menu.Close()
	e.drag.Cancel()
	e.store.Load(e.codec.TextToBlocks(text, true))
}

// Placeholder returns the empty-state hint for a block.
func (e *Editor) Placeholder(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.store.Get(id)
	if !ok {
		return ""
	}
	return locale.PlaceholderFor(b.Type, e.opts.Locale)
}

// Flush saves any pending change immediately.
func (e *Editor) Flush() bool {
	return e.autosave.Flush()
}

// Close flushes the pending save and stops autosaving. Later mutations are
// still applied to the store but never saved.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	e.autosave.Flush()
	e.autosave.Stop()
}

// ── Helpers ────────────────────────────────────────────────

// focus places the caret in a block once the host has painted it.
func (e *Editor) focus(id string, offset int) {
	e.host.Defer(func() {
		if s := e.host.Surface(id); s != nil {
			surface.SetCaretOffset(s, offset)
		}
	})
}

func (e *Editor) focusItem(id string, item, offset int) {
	e.host.Defer(func() {
		if s := e.host.ItemSurface(id, item); s != nil {
			surface.SetCaretOffset(s, offset)
		}
	})
}

// contentOf reads a surface the way t stores content: raw text for code,
// inline markup for everything else.
func contentOf(t domain.BlockType, s surface.Surface) string {
	if t == domain.BlockTypeCode {
		return surface.Text(s)
	}
	if h, ok := s.(interface{ HTML() string }); ok {
		return h.HTML()
	}
	return escape(surface.Text(s))
}

// encode turns flattened text back into content for t.
func encode(t domain.BlockType, text string) string {
	if t == domain.BlockTypeCode {
		return text
	}
	return escape(text)
}

func escape(text string) string {
	return xhtml.EscapeString(text)
}

// textLen is the caret length of stored content.
func textLen(t domain.BlockType, content string) int {
	if t == domain.BlockTypeCode {
		return runeLen(content)
	}
	n := 0
	for _, sp := range surface.ParseInline(content) {
		n += runeLen(sp.Text)
	}
	return n
}

func runeLen(s string) int {
	return len([]rune(s))
}
