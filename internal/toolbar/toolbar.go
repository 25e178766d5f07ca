// Package toolbar decides when the floating formatting toolbar shows, where
// it sits, and dispatches its commands to the host surface.
package toolbar

import (
	"golang.org/x/net/html"

	"blockedit/internal/surface"
)

// DefaultOffset is the gap between the toolbar and the top of the
// selection, in host units.
const DefaultOffset = 48

// Command is a toolbar button.
type Command string

const (
	Bold          Command = "bold"
	Italic        Command = "italic"
	Underline     Command = "underline"
	Strikethrough Command = "strikethrough"
	Highlight     Command = "highlight"
	Code          Command = "code"
	Link          Command = "link"
	Unlink        Command = "unlink"
	AlignLeft     Command = "align-left"
	AlignCenter   Command = "align-center"
	AlignRight    Command = "align-right"
)

// Commands lists every toolbar command in button order.
var Commands = []Command{
	Bold, Italic, Underline, Strikethrough, Highlight, Code,
	Link, Unlink, AlignLeft, AlignCenter, AlignRight,
}

var hostCommands = map[Command]surface.Command{
	Bold:          surface.CmdBold,
	Italic:        surface.CmdItalic,
	Underline:     surface.CmdUnderline,
	Strikethrough: surface.CmdStrikeThrough,
	Highlight:     surface.CmdHiliteColor,
	Unlink:        surface.CmdUnlink,
	AlignLeft:     surface.CmdJustifyLeft,
	AlignCenter:   surface.CmdJustifyCenter,
	AlignRight:    surface.CmdJustifyRight,
}

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	_, ok := hostCommands[c]
	return ok || c == Code || c == Link
}

// Target is a surface that can lay out its selection and run host
// formatting commands. surface.Buffer satisfies it.
type Target interface {
	surface.Surface
	surface.Geometry
	Exec(cmd surface.Command, value string)
	SelectedText() string
	LinkAt() string
}

// Prompt asks the user for a link URL, offering current as the default.
// ok is false when the user cancels.
type Prompt func(current string) (url string, ok bool)

// Position is the toolbar origin relative to the editing container.
type Position struct {
	Top  float64
	Left float64
}

// Controller holds toolbar visibility and placement.
type Controller struct {
	offset    float64
	prompt    Prompt
	visible   bool
	pos       Position
	container surface.Rect
}

// New creates a hidden toolbar. A non-positive offset uses DefaultOffset;
// a nil prompt disables the link command.
func New(offset float64, prompt Prompt) *Controller {
	if offset <= 0 {
		offset = DefaultOffset
	}
	return &Controller{offset: offset, prompt: prompt}
}

// Visible reports whether the toolbar is showing.
func (c *Controller) Visible() bool { return c.visible }

// Position returns the last computed placement.
func (c *Controller) Position() Position { return c.pos }

// Hide hides the toolbar. Called on scroll and on blur.
func (c *Controller) Hide() {
	c.visible = false
}

// Evaluate recomputes visibility against the selection held by target,
// which must belong to the editing container described by container. A nil
// target means the selection lies outside the container.
func (c *Controller) Evaluate(target Target, container surface.Rect) bool {
	c.container = container
	c.visible = false
	if target == nil {
		return false
	}
	r, ok := target.Selection()
	if !ok || r.Collapsed() {
		return false
	}
	rect, ok := target.SelectionBounds()
	if !ok || rect.Empty() {
		return false
	}
	top := rect.Y - container.Y - c.offset
	if top < 0 {
		top = 0
	}
	c.pos = Position{Top: top, Left: rect.X - container.X + rect.Width/2}
	c.visible = true
	return true
}

// Apply runs cmd against target. The selection is captured first and put
// back right before the host command runs, since prompting or clicking the
// button may have moved it. Visibility is re-evaluated afterwards.
func (c *Controller) Apply(target Target, cmd Command) {
	if target == nil {
		return
	}
	saved, ok := target.Selection()
	if !ok {
		c.Evaluate(nil, c.container)
		return
	}

	switch cmd {
	case Link:
		if c.prompt == nil {
			break
		}
		url, ok := c.prompt(target.LinkAt())
		if !ok {
			break
		}
		target.Select(saved)
		if url == "" {
			target.Exec(surface.CmdUnlink, "")
		} else {
			target.Exec(surface.CmdCreateLink, url)
		}
	case Code:
		text := target.SelectedText()
		if text == "" {
			break
		}
		target.Select(saved)
		target.Exec(surface.CmdInsertHTML, "<code>"+html.EscapeString(text)+"</code>")
	default:
		host, ok := hostCommands[cmd]
		if !ok {
			break
		}
		target.Select(saved)
		target.Exec(host, "")
	}
	c.Evaluate(target, c.container)
}
