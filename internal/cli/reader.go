package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader reads answers from the terminal without blocking past context
// cancellation.
type LineReader struct {
	reader *bufio.Reader
	out    io.Writer
	mu     sync.Mutex
}

// NewLineReader creates a reader over in that writes prompts to out.
func NewLineReader(in io.Reader, out io.Writer) *LineReader {
	if in == nil {
		panic("reader cannot be nil")
	}
	if out == nil {
		out = io.Discard
	}
	return &LineReader{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// ReadLine reads one trimmed line, respecting context cancellation.
// A final line without a newline is returned with a nil error.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	// The read goroutine outlives a canceled call until input arrives.
	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.value != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Ask prints question as a prompt and reads the answer.
func (r *LineReader) Ask(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprint(r.out, FormatPrompt(question)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return r.ReadLine(ctx)
}
