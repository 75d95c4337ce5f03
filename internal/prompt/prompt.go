// Package prompt implements the operator input protocol: indexed selection
// from a table of candidates, plus numeric, yes/no and choice questions.
// Invalid input never fails; it falls back to the least filtered default.
// The only errors returned are ErrInterrupted and io.EOF.
package prompt

import (
	"context"
	"strconv"
	"strings"

	"github.com/yourusername/kube-console/internal/i18n"
	"github.com/yourusername/kube-console/internal/ui"
	"go.uber.org/zap"
)

// Outcome classifies an answer to a selection question
type Outcome int

const (
	// Selected means the answer picked a candidate
	Selected Outcome = iota
	// Defaulted means the answer was empty
	Defaulted
	// NotANumber means the answer was not a decimal number
	NotANumber
	// OutOfRange means the number was outside [1, candidates]
	OutOfRange
)

// ParseSelection maps an answer to a zero-based candidate index. The index
// is only meaningful when the outcome is Selected.
func ParseSelection(answer string, candidates int) (int, Outcome) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0, Defaulted
	}
	if !isDigits(answer) {
		return 0, NotANumber
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > candidates {
		return 0, OutOfRange
	}
	return n - 1, Selected
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Selection describes one indexed selection question
type Selection struct {
	// Title is printed above the table
	Title    string
	Table    ui.Table
	Question string
	// Empty is printed instead of the table when there are no candidates
	Empty string
	// Fallback describes what happens on invalid input, e.g. "showing all namespaces"
	Fallback string
}

// Prompter asks questions on an Output and reads answers from a LineReader
type Prompter struct {
	in     *LineReader
	out    ui.Output
	loc    *i18n.Localizer
	logger *zap.Logger
}

func New(in *LineReader, out ui.Output, loc *i18n.Localizer, logger *zap.Logger) *Prompter {
	return &Prompter{in: in, out: out, loc: loc, logger: logger}
}

// Ask prints a question and returns the trimmed answer
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	p.out.Prompt(question)
	line, err := p.in.ReadLine(ctx)
	if err != nil {
		// keep the next output off the prompt line
		p.out.Info("")
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Select shows the candidates and reads an index. ok is false when the
// caller should proceed unfiltered.
func (p *Prompter) Select(ctx context.Context, s Selection) (index int, ok bool, err error) {
	if s.Table.Len() == 0 {
		p.out.Warn(s.Empty)
		return 0, false, nil
	}

	if s.Title != "" {
		p.out.Title(s.Title)
	}
	p.out.Table(s.Table)

	answer, err := p.Ask(ctx, s.Question)
	if err != nil {
		return 0, false, err
	}

	index, outcome := ParseSelection(answer, s.Table.Len())
	switch outcome {
	case Selected:
		return index, true, nil
	case NotANumber:
		p.out.Warn(p.withFallback(p.loc.T("prompt.not_a_number"), s.Fallback))
	case OutOfRange:
		p.out.Warn(p.withFallback(p.loc.T("prompt.out_of_range"), s.Fallback))
	}
	p.logger.Debug("Selection fell back to default",
		zap.String("question", s.Question),
		zap.String("answer", answer),
		zap.Int("candidates", s.Table.Len()))
	return 0, false, nil
}

func (p *Prompter) withFallback(msg, fallback string) string {
	if fallback == "" {
		return msg
	}
	return msg + " " + fallback
}

// AskInt reads a positive number. Empty input returns def; anything else
// that is not a positive number prints a warning and returns def.
func (p *Prompter) AskInt(ctx context.Context, question string, def int) (int, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return def, nil
	}
	n, convErr := strconv.Atoi(answer)
	if !isDigits(answer) || convErr != nil || n < 1 {
		p.out.Warn(p.loc.TF("prompt.int_fallback", map[string]interface{}{"Default": def}))
		return def, nil
	}
	return n, nil
}

// AskYesNo returns true for answers starting with y or Y
func (p *Prompter) AskYesNo(ctx context.Context, question string, def bool) (bool, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// AskChoice repeats the question until the answer is one of choices. An
// empty answer returns def when def is not empty.
func (p *Prompter) AskChoice(ctx context.Context, question string, choices []string, def string) (string, error) {
	for {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if answer == "" && def != "" {
			return def, nil
		}
		for _, c := range choices {
			if strings.EqualFold(answer, c) {
				return c, nil
			}
		}
		p.out.Error(p.loc.T("prompt.invalid_choice"))
	}
}
