package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kube-console/internal/i18n"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
)

func newPrompter(input string) (*Prompter, *bytes.Buffer, *i18n.Localizer) {
	var out bytes.Buffer
	loc := i18n.NewLocalizer("en")
	p := New(NewLineReader(strings.NewReader(input)), ui.NewConsole(&out, true), loc, zap.NewNop())
	return p, &out, loc
}

func namespaces(names ...string) Selection {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n})
	}
	return Selection{
		Title:    "=== Available Namespaces ===",
		Table:    ui.IndexedTable([]string{"NAMESPACE"}, rows),
		Question: "Namespace number (default: all)",
		Empty:    "No namespaces found.",
		Fallback: "Showing all namespaces.",
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		answer  string
		index   int
		outcome Outcome
	}{
		{"", 0, Defaulted},
		{"   ", 0, Defaulted},
		{"1", 0, Selected},
		{"3", 2, Selected},
		{" 2 ", 1, Selected},
		{"0", 0, OutOfRange},
		{"4", 0, OutOfRange},
		{"99999999999999999999999", 0, OutOfRange},
		{"abc", 0, NotANumber},
		{"-1", 0, NotANumber},
		{"+2", 0, NotANumber},
		{"1.5", 0, NotANumber},
		{"q", 0, NotANumber},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			index, outcome := ParseSelection(tt.answer, 3)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.index, index)
		})
	}
}

func TestSelectValidIndex(t *testing.T) {
	p, out, _ := newPrompter("2\n")

	index, ok, err := p.Select(context.Background(), namespaces("default", "kube-system", "shop"))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, index)
	assert.Contains(t, out.String(), "kube-system")
	assert.Contains(t, out.String(), "Namespace number (default: all): ")
}

func TestSelectOutOfRangeFallsBackToAll(t *testing.T) {
	p, out, loc := newPrompter("5\n")

	_, ok, err := p.Select(context.Background(), namespaces("default", "kube-system", "shop"))

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), loc.T("prompt.out_of_range")+" Showing all namespaces.")
}

func TestSelectFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		warn  string
	}{
		{"empty", "\n", ""},
		{"not a number", "abc\n", "prompt.not_a_number"},
		{"zero", "0\n", "prompt.out_of_range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out, loc := newPrompter(tt.input)

			_, ok, err := p.Select(context.Background(), namespaces("a", "b", "c"))

			require.NoError(t, err)
			assert.False(t, ok)
			if tt.warn != "" {
				assert.Contains(t, out.String(), loc.T(tt.warn))
			} else {
				assert.NotContains(t, out.String(), loc.T("prompt.not_a_number"))
				assert.NotContains(t, out.String(), loc.T("prompt.out_of_range"))
			}
		})
	}
}

func TestSelectNoCandidatesDoesNotRead(t *testing.T) {
	p, out, _ := newPrompter("1\n")

	_, ok, err := p.Select(context.Background(), namespaces())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "No namespaces found.")

	// the pending line is still there for the next question
	line, err := p.in.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", line)
}

func TestSelectIsIdempotent(t *testing.T) {
	sel := namespaces("a", "b", "c")
	p, _, _ := newPrompter("3\n3\n")

	i1, ok1, err1 := p.Select(context.Background(), sel)
	i2, ok2, err2 := p.Select(context.Background(), sel)

	assert.Equal(t, []interface{}{i1, ok1, err1}, []interface{}{i2, ok2, err2})
}

func TestSelectEndOfInput(t *testing.T) {
	p, _, _ := newPrompter("")

	_, ok, err := p.Select(context.Background(), namespaces("a"))

	assert.False(t, ok)
	assert.ErrorIs(t, err, io.EOF)
}

func TestAskInt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		warn  bool
	}{
		{"empty uses default", "\n", 50, false},
		{"number", "120\n", 120, false},
		{"text uses default", "lots\n", 50, true},
		{"zero uses default", "0\n", 50, true},
		{"negative uses default", "-5\n", 50, true},
		{"last line without newline", "7", 7, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out, loc := newPrompter(tt.input)

			got, err := p.AskInt(context.Background(), "Log lines (default 50)", 50)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			warning := loc.TF("prompt.int_fallback", map[string]interface{}{"Default": 50})
			if tt.warn {
				assert.Contains(t, out.String(), warning)
			} else {
				assert.NotContains(t, out.String(), warning)
			}
		})
	}
}

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"\n", false, false},
		{"\n", true, true},
		{"yes\n", false, true},
		{"Y\n", false, true},
		{"no\n", true, false},
		{"maybe\n", true, false},
	}
	for _, tt := range tests {
		p, _, _ := newPrompter(tt.input)
		got, err := p.AskYesNo(context.Background(), "Show IP and node? (yes/no)", tt.def)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestAskChoiceRepeatsUntilValid(t *testing.T) {
	p, out, loc := newPrompter("3\ncpu\n2\n")

	got, err := p.AskChoice(context.Background(), "Sort by (1: CPU, 2: Memory)", []string{"1", "2"}, "")

	require.NoError(t, err)
	assert.Equal(t, "2", got)
	assert.Equal(t, 2, strings.Count(out.String(), loc.T("prompt.invalid_choice")))
}

func TestAskChoiceEndOfInput(t *testing.T) {
	p, _, _ := newPrompter("x\n")

	_, err := p.AskChoice(context.Background(), "Sort by", []string{"1", "2"}, "")

	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineInterrupted(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	reader := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := reader.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInterrupted)

	// the abandoned read delivers its line to the next caller
	go func() {
		_, _ = pw.Write([]byte("late\n"))
	}()
	line, err := reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", line)
}

func TestReadLineCancelledBeforeRead(t *testing.T) {
	reader := NewLineReader(strings.NewReader("unused\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reader.ReadLine(ctx)

	assert.ErrorIs(t, err, ErrInterrupted)
	line, err := reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unused", line)
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	reader := NewLineReader(strings.NewReader("q\r\n"))
	line, err := reader.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q", line)
}
