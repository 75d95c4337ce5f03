package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleWritesPlainTextToBuffers(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Title("=== Available Namespaces ===")
	c.Warn("careful")
	c.Prompt("Pick one")

	out := buf.String()
	assert.False(t, c.Interactive())
	assert.NotContains(t, out, "\x1b[", "no colour when writing to a buffer")
	assert.Equal(t, "\n=== Available Namespaces ===\ncareful\nPick one: ", out)
}

func TestIndexedTable(t *testing.T) {
	tbl := IndexedTable([]string{"NAMESPACE"}, [][]string{{"default"}, {"kube-system"}})

	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Indexed)
	assert.Equal(t, []string{"INDEX", "NAMESPACE"}, tbl.Headers)
	assert.Equal(t, []string{"2", "kube-system"}, tbl.Rows[1])
}

func TestRenderTable(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, true)
	tbl := IndexedTable([]string{"NAMESPACE", "MESSAGE"}, [][]string{
		{"default", "Back-off restarting failed container\nsecond line"},
	})
	tbl.MaxCellWidth = 20

	out := c.RenderTable(tbl)

	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "NAMESPACE")
	assert.Contains(t, out, "Back-off restarti...")
	assert.NotContains(t, out, "second line")
	assert.True(t, strings.HasPrefix(out, "╭"), "rounded table style")
}

func TestMenu(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Menu("Kubernetes Monitoring Tool", []MenuItem{
		{Key: "1", Description: "Event Monitoring"},
		{Key: "Q", Description: "Quit", Quit: true},
	})

	out := buf.String()
	assert.Contains(t, out, "Kubernetes Monitoring Tool")
	assert.Contains(t, out, "Event Monitoring")
	assert.Contains(t, out, "Quit")
}

func TestTitleWiderThanTable(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, true)

	out := c.RenderTable(Table{Title: "Restarted containers in shop", Rows: [][]string{{"1", "a"}}})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "│ Restarted containers in shop │", lines[1])
	for _, line := range lines {
		assert.Equal(t, runewidth.StringWidth(lines[0]), runewidth.StringWidth(line), "ragged line %q", line)
	}
}

func TestOpenLiveNeedsInteractiveInput(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, true)
	c.tty = true
	c.inputTTY = false

	live, ctx := c.OpenLive(context.Background(), LiveView{Title: "Pods", Interval: time.Second})
	defer live.Close()

	_, plain := live.(*PlainRenderer)
	assert.True(t, plain, "piped stdin must not start the full-screen view")
	assert.NoError(t, ctx.Err())
}

func TestTruncateWideRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "재시작...", truncate("재시작된 컨테이너", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "unbounded", truncate("unbounded", 0))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 GiB", FormatBytes(1536*1024*1024))
	assert.Equal(t, "250m", FormatMillicores(250))
	assert.Equal(t, "2.50", FormatMillicores(2500))
	assert.Equal(t, "42%", FormatPercentage(42.4))
	assert.Equal(t, "45s", FormatAge(45*time.Second))
	assert.Equal(t, "3h", FormatAge(3*time.Hour+59*time.Minute))
	assert.Equal(t, "2d", FormatAge(50*time.Hour))
}

func TestPlainRendererRedrawsEachFrame(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	live, ctx := c.OpenLive(context.Background(), LiveView{
		Title:    "=== Pod Count Summary ===",
		Command:  "kubectl get pods -A",
		Interval: 2 * time.Second,
	})
	plain, ok := live.(*PlainRenderer)
	require.True(t, ok)
	plain.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	live.Frame("Total=10, Normal=7, Abnormal=3")
	live.Error(errors.New("connection refused"))

	out := buf.String()
	assert.Contains(t, out, "\x1b[2J", "screen cleared before the frame")
	assert.Contains(t, out, "Every 2s: kubectl get pods -A")
	assert.Contains(t, out, "2025-03-01 12:00:00")
	assert.Contains(t, out, "Total=10, Normal=7, Abnormal=3")
	assert.Contains(t, out, "connection refused")

	require.NoError(t, live.Close())
	assert.Error(t, ctx.Err(), "closing the view ends its context")
}

func TestScreenModel(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, true)
	m := screenModel{console: c, view: LiveView{Title: "Nodes"}, keys: newLiveKeyMap()}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	next, cmd := m.Update(frameMsg{content: "node-a Ready", at: at})
	assert.Nil(t, cmd)
	view := next.View()
	assert.Contains(t, view, "node-a Ready")
	assert.Contains(t, view, "2025-03-01 12:00:00")
	assert.Contains(t, view, "q: back to menu")

	next, _ = next.Update(failureMsg{err: errors.New("timeout"), at: at})
	view = next.View()
	assert.Contains(t, view, "node-a Ready", "last good frame stays visible")
	assert.Contains(t, view, "timeout")

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd = next.Update(k)
		require.NotNil(t, cmd, "key %q", k.String())
		assert.Equal(t, tea.Quit(), cmd())
	}

	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}
