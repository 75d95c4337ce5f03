package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Output is the rendering capability handed to every console component.
// Nothing writes to the terminal except through an Output.
type Output interface {
	io.Writer

	Title(text string)
	Subtitle(text string)
	Info(text string)
	Success(text string)
	Warn(text string)
	Error(text string)
	Muted(text string)
	Command(label, command string)
	Prompt(question string)
	Table(t Table)
	Menu(title string, items []MenuItem)

	// RenderTable and Styles build frames for live views
	RenderTable(t Table) string
	Styles() Styles

	// OpenLive starts a live view. The returned context is cancelled when
	// the operator closes the view.
	OpenLive(ctx context.Context, view LiveView) (LiveRenderer, context.Context)
}

// MenuItem is one selectable line of the main menu
type MenuItem struct {
	Key         string
	Description string
	Quit        bool
}

// Console writes styled text and tables to a terminal or any writer
type Console struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   Styles
	color    bool
	tty      bool
	// inputTTY is false when answers are piped in; the full-screen view
	// would otherwise read them as key presses
	inputTTY bool
}

// NewConsole creates a console on out. Colour is used only when out is a
// terminal that supports it and noColor is false.
func NewConsole(out io.Writer, noColor bool) *Console {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Console{
		out:      out,
		renderer: r,
		styles:   NewStyles(r),
		color:    r.ColorProfile() != termenv.Ascii,
		tty:      isTerminal(out),
		inputTTY: isTerminal(os.Stdin),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the console writes to a terminal
func (c *Console) Interactive() bool {
	return c.tty
}

func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Console) Styles() Styles {
	return c.styles
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// Title prints a section title preceded by a blank line
func (c *Console) Title(text string) {
	c.println("")
	c.println(c.styles.Title.Render(text))
}

func (c *Console) Subtitle(text string) {
	c.println("")
	c.println(c.styles.Subtitle.Render(text))
}

func (c *Console) Info(text string) {
	c.println(text)
}

func (c *Console) Success(text string) {
	c.println(c.styles.Success.Render(text))
}

func (c *Console) Warn(text string) {
	c.println(c.styles.Warning.Render(text))
}

func (c *Console) Error(text string) {
	c.println(c.styles.Error.Render(text))
}

func (c *Console) Muted(text string) {
	c.println(c.styles.Muted.Render(text))
}

// Command prints the kubectl equivalent of what is about to run
func (c *Console) Command(label, command string) {
	c.println("")
	c.println(fmt.Sprintf("%s: %s", label, c.styles.Command.Render(command)))
}

// Prompt prints a question and leaves the cursor on the same line
func (c *Console) Prompt(question string) {
	fmt.Fprint(c.out, c.styles.Prompt.Render(question)+": ")
}

func (c *Console) Table(t Table) {
	c.println(c.renderTable(t))
}

func (c *Console) RenderTable(t Table) string {
	return c.renderTable(t)
}

// Menu renders the action menu as a borderless-header table
func (c *Console) Menu(title string, items []MenuItem) {
	t := Table{Title: c.styles.Menu.Render(title)}
	for _, item := range items {
		key := c.styles.Key.Render(item.Key)
		if item.Quit {
			key = c.styles.QuitKey.Render(item.Key)
		}
		t.Rows = append(t.Rows, []string{key, item.Description})
	}
	c.println(c.renderTable(t))
}

// OpenLive uses the alternate screen when both stdin and the output are
// terminals and plain redraws otherwise
func (c *Console) OpenLive(ctx context.Context, view LiveView) (LiveRenderer, context.Context) {
	if c.tty && c.inputTTY {
		return NewScreenRenderer(ctx, c, view)
	}
	ctx, cancel := context.WithCancel(ctx)
	return &PlainRenderer{console: c, view: view, out: termenv.NewOutput(c.out), cancel: cancel}, ctx
}

// header is the watch-style first lines of every live frame
func (c *Console) header(view LiveView, at string) string {
	var b strings.Builder
	b.WriteString(c.styles.Subtitle.Render(view.Title))
	b.WriteString("\n")
	if view.Command != "" {
		b.WriteString(c.styles.Muted.Render(fmt.Sprintf("Every %s: ", view.Interval)))
		b.WriteString(c.styles.Command.Render(view.Command))
		b.WriteString("\n")
	}
	b.WriteString(c.styles.Muted.Render(at))
	b.WriteString("\n\n")
	return b.String()
}
