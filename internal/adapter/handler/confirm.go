package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rl1809/storefront/internal/port"
)

// Answer is a confirmer for answers that arrive with the request.
func Answer(confirmed bool) port.Confirmer {
	return port.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		return confirmed, nil
	})
}

// PromptConfirmer asks on a terminal and blocks until a line is read.
type PromptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer reads answers from in. Pass the same *bufio.Reader the
// caller reads commands from so buffered input is not lost.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &PromptConfirmer{in: br, out: out}
}

func (p *PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := fmt.Fprintf(p.out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
