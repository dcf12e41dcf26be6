// Package approval asks the human at the terminal to confirm a command that
// matched an ask rule.
package approval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

var (
	ErrNonInteractive = errors.New("no terminal available for confirmation")
	ErrTimeout        = errors.New("confirmation timed out")
)

const frame = "======================================================================"

// Prompt is what the user sees before answering.
type Prompt struct {
	Command string
	Message string
	Detail  string // free-form prompt text from the rule
	Reason  string
}

// Prompter obtains a yes/no answer. Any error means "no".
type Prompter interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// Terminal prompts on Out and reads one line from In.
type Terminal struct {
	In          io.Reader
	Out         io.Writer
	Timeout     time.Duration
	Interactive bool
}

// OpenTerminal returns a Terminal bound to the controlling TTY. Hook
// integrations own stdin, so /dev/tty is preferred; stdin is used only when
// it is itself a terminal. With neither, the prompter is non-interactive and
// every confirmation is refused. The returned func releases the TTY.
func OpenTerminal(out io.Writer, timeout time.Duration) (*Terminal, func()) {
	t := &Terminal{Out: out, Timeout: timeout}
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		if term.IsTerminal(int(tty.Fd())) {
			t.In = tty
			t.Interactive = true
			return t, func() { _ = tty.Close() }
		}
		_ = tty.Close()
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		t.In = os.Stdin
		t.Interactive = true
	}
	return t, func() {}
}

// Confirm renders p and waits for an answer. Only "y" or "yes" approves.
// EOF, any other answer, cancellation and timeout all refuse.
func (t *Terminal) Confirm(ctx context.Context, p Prompt) (bool, error) {
	out := t.Out
	if out == nil {
		out = os.Stderr
	}
	if !t.Interactive || t.In == nil {
		fmt.Fprintln(out, "❌ Cancelled: confirmation required but no terminal is attached")
		return false, ErrNonInteractive
	}

	render(out, p)
	fmt.Fprint(out, "\nProceed? [y/N]: ")

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(t.In).ReadString('\n')
		answers <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\n❌ Cancelled")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, ErrTimeout
		}
		return false, ctx.Err()
	case a := <-answers:
		if a.err != nil && a.line == "" {
			fmt.Fprintln(out, "\n❌ Cancelled")
			if errors.Is(a.err, io.EOF) {
				return false, nil
			}
			return false, a.err
		}
		return IsYes(a.line), nil
	}
}

// IsYes reports whether an answer approves.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func render(out io.Writer, p Prompt) {
	msg := p.Message
	if msg == "" {
		msg = "⚠️  Confirmation required"
	}
	fmt.Fprintln(out, "\n"+frame)
	fmt.Fprintln(out, msg)
	if d := strings.TrimSpace(p.Detail); d != "" {
		fmt.Fprintf(out, "\n%s\n", d)
	}
	fmt.Fprintf(out, "\nCommand: %s\n", p.Command)
	if p.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", p.Reason)
	}
	fmt.Fprintln(out, frame)
}

// Static answers every prompt the same way.
type Static struct {
	Approve bool
	Err     error
}

func (s Static) Confirm(context.Context, Prompt) (bool, error) {
	return s.Approve && s.Err == nil, s.Err
}
