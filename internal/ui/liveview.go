package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
)

const timeLayout = "2006-01-02 15:04:05"

// LiveView describes a refreshing view
type LiveView struct {
	Title    string
	Command  string
	Interval time.Duration
	Hint     string
}

// LiveRenderer receives the frames of a live view
type LiveRenderer interface {
	Frame(content string)
	Error(err error)
	Close() error
}

// PlainRenderer clears the output and redraws each frame. It is used when
// the console is not attached to a terminal.
type PlainRenderer struct {
	console *Console
	view    LiveView
	out     *termenv.Output
	cancel  context.CancelFunc
	now     func() time.Time
}

func (r *PlainRenderer) timestamp() string {
	if r.now != nil {
		return r.now().Format(timeLayout)
	}
	return time.Now().Format(timeLayout)
}

func (r *PlainRenderer) Frame(content string) {
	r.out.ClearScreen()
	fmt.Fprint(r.out, r.console.header(r.view, r.timestamp()))
	fmt.Fprintln(r.out, content)
}

func (r *PlainRenderer) Error(err error) {
	fmt.Fprintln(r.out, r.console.styles.Error.Render(err.Error()))
}

func (r *PlainRenderer) Close() error {
	r.cancel()
	return nil
}

type liveKeyMap struct {
	Quit key.Binding
}

func newLiveKeyMap() liveKeyMap {
	return liveKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "back to menu"),
		),
	}
}

type frameMsg struct {
	content string
	at      time.Time
}

type failureMsg struct {
	err error
	at  time.Time
}

// screenModel is the bubbletea model behind the alternate-screen live view
type screenModel struct {
	console *Console
	view    LiveView
	keys    liveKeyMap
	frame   string
	failure string
	updated time.Time
	width   int
}

func (m screenModel) Init() tea.Cmd {
	return nil
}

func (m screenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case frameMsg:
		m.frame = msg.content
		m.failure = ""
		m.updated = msg.at
	case failureMsg:
		m.failure = msg.err.Error()
		m.updated = msg.at
	}
	return m, nil
}

func (m screenModel) View() string {
	var b strings.Builder
	at := ""
	if !m.updated.IsZero() {
		at = m.updated.Format(timeLayout)
	}
	b.WriteString(m.console.header(m.view, at))
	b.WriteString(m.frame)
	b.WriteString("\n")
	if m.failure != "" {
		b.WriteString("\n")
		b.WriteString(m.console.styles.Error.Render(m.failure))
		b.WriteString("\n")
	}
	hint := m.view.Hint
	if hint == "" {
		hint = m.keys.Quit.Help().Key + ": " + m.keys.Quit.Help().Desc
	}
	b.WriteString("\n")
	b.WriteString(m.console.styles.Muted.Render(truncate(hint, m.width)))
	return b.String()
}

// ScreenRenderer shows a live view on the alternate screen until the
// operator presses q, esc or ctrl+c, or the parent context is cancelled.
type ScreenRenderer struct {
	program *tea.Program
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewScreenRenderer starts the screen program. The returned context ends
// when the screen closes.
func NewScreenRenderer(ctx context.Context, c *Console, view LiveView, opts ...tea.ProgramOption) (*ScreenRenderer, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m := screenModel{console: c, view: view, keys: newLiveKeyMap()}

	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(c.out),
		tea.WithoutSignalHandler(),
	}, opts...)

	s := &ScreenRenderer{
		program: tea.NewProgram(m, opts...),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer cancel()
		_, s.err = s.program.Run()
	}()
	return s, ctx
}

func (s *ScreenRenderer) Frame(content string) {
	s.program.Send(frameMsg{content: content, at: time.Now()})
}

func (s *ScreenRenderer) Error(err error) {
	s.program.Send(failureMsg{err: err, at: time.Now()})
}

// Close stops the program and waits until the terminal is restored
func (s *ScreenRenderer) Close() error {
	s.program.Quit()
	<-s.done
	s.cancel()
	if s.err != nil && !errors.Is(s.err, tea.ErrProgramKilled) {
		return s.err
	}
	return nil
}
