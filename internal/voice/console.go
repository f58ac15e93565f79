package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// ConsoleSpeaker prints spoken lines to a writer.
type ConsoleSpeaker struct {
	w      io.Writer
	prefix string
}

// NewConsoleSpeaker returns a speaker that writes each line with a prefix.
func NewConsoleSpeaker(w io.Writer, prefix string) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w, prefix: prefix}
}

func (s *ConsoleSpeaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(s.w, "%s%s\n", s.prefix, text)
	return err
}

// ConsoleRecognizer reads one line of input per utterance. A single
// goroutine owns the reader so a timed-out Listen never loses the next line.
type ConsoleRecognizer struct {
	once  sync.Once
	r     io.Reader
	lines chan string
}

// NewConsoleRecognizer reads utterances from r.
func NewConsoleRecognizer(r io.Reader) *ConsoleRecognizer {
	return &ConsoleRecognizer{r: r, lines: make(chan string)}
}

func (c *ConsoleRecognizer) start() {
	go func() {
		sc := bufio.NewScanner(c.r)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
		close(c.lines)
	}()
}

func (c *ConsoleRecognizer) Listen(ctx context.Context) (string, error) {
	c.once.Do(c.start)
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ErrSilence
	}
}
