// Package confirm provides the yes/no gates that guard destructive ledger
// commands.
package confirm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/theirongolddev/cbudget/internal/ledger"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Func adapts a function to ledger.Gate.
type Func func(ctx context.Context, p ledger.Prompt) (bool, error)

// Confirm calls f.
func (f Func) Confirm(ctx context.Context, p ledger.Prompt) (bool, error) {
	return f(ctx, p)
}

// Static is a gate with a fixed answer.
type Static bool

// Confirm returns the fixed answer.
func (s Static) Confirm(context.Context, ledger.Prompt) (bool, error) {
	return bool(s), nil
}

var (
	// Always approves, for --force and for callers that already asked.
	Always ledger.Gate = Static(true)
	// Never refuses.
	Never ledger.Gate = Static(false)
)

// Terminal asks on the terminal. It shows a huh confirm dialog when both
// ends are a TTY and falls back to a [y/N] line prompt otherwise.
type Terminal struct {
	In  *os.File
	Out *os.File
}

// NewTerminal returns a Terminal gate on stdin and stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Confirm asks p and reports the answer. An aborted dialog counts as no.
func (t *Terminal) Confirm(ctx context.Context, p ledger.Prompt) (bool, error) {
	if isTTY(t.In) && isTTY(t.Out) {
		return t.dialog(ctx, p)
	}
	return Line(ctx, t.In, t.Out, p)
}

func (t *Terminal) dialog(ctx context.Context, p ledger.Prompt) (bool, error) {
	affirmative := p.Affirmative
	if affirmative == "" {
		affirmative = "Yes"
	}

	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(p.Title).
			Description(p.Description).
			Affirmative(affirmative).
			Negative("No").
			Value(&ok),
	)).WithInput(t.In).WithOutput(t.Out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// Line asks p as a single "[y/N]" line read from in.
func Line(ctx context.Context, in io.Reader, out io.Writer, p ledger.Prompt) (bool, error) {
	question := p.Title
	if p.Description != "" {
		question += " " + p.Description
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)

	answer := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			errc <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errc:
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
