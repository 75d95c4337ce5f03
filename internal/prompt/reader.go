package prompt

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInterrupted is returned when the context is cancelled while waiting
// for input
var ErrInterrupted = errors.New("interrupted")

type lineResult struct {
	line string
	err  error
}

// LineReader reads operator input one line at a time. A read abandoned by
// cancellation stays in flight and its line is handed to the next caller,
// so no input is lost and the underlying reader is never read concurrently.
type LineReader struct {
	reader  *bufio.Reader
	pending chan lineResult
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next line without its line terminator. It returns
// io.EOF at end of input and ErrInterrupted when ctx is done first.
func (l *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInterrupted
	}

	if l.pending == nil {
		ch := make(chan lineResult, 1)
		l.pending = ch
		go func() {
			line, err := l.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case res := <-l.pending:
		l.pending = nil
		line := strings.TrimRight(res.line, "\r\n")
		if res.err != nil {
			// a last line without a newline is still a line
			if errors.Is(res.err, io.EOF) && line != "" {
				return line, nil
			}
			return "", res.err
		}
		return line, nil
	}
}
