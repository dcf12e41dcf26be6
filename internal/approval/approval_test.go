package approval

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestTerminal_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"  Y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"y", true}, // no trailing newline before EOF
	}

	for _, tt := range tests {
		var out bytes.Buffer
		p := &Terminal{In: strings.NewReader(tt.input), Out: &out, Interactive: true, Timeout: time.Second}
		got, err := p.Confirm(context.Background(), Prompt{Command: "git push"})
		if err != nil {
			t.Errorf("input %q: unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTerminal_EOFRefuses(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{In: strings.NewReader(""), Out: &out, Interactive: true}
	ok, err := p.Confirm(context.Background(), Prompt{Command: "npm install x"})
	if ok || err != nil {
		t.Errorf("EOF: got (%v, %v), want (false, nil)", ok, err)
	}
	if !strings.Contains(out.String(), "Cancelled") {
		t.Errorf("expected cancellation notice, got %q", out.String())
	}
}

func TestTerminal_NonInteractiveRefuses(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{In: strings.NewReader("y\n"), Out: &out}
	ok, err := p.Confirm(context.Background(), Prompt{Command: "sudo ls"})
	if ok {
		t.Error("non-interactive prompter approved")
	}
	if !errors.Is(err, ErrNonInteractive) {
		t.Errorf("expected ErrNonInteractive, got %v", err)
	}
}

func TestTerminal_Timeout(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	p := &Terminal{In: r, Out: &out, Interactive: true, Timeout: 20 * time.Millisecond}
	ok, err := p.Confirm(context.Background(), Prompt{Command: "git push"})
	if ok {
		t.Error("timed-out prompt approved")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestTerminal_RendersPrompt(t *testing.T) {
	var out bytes.Buffer
	p := &Terminal{In: strings.NewReader("n\n"), Out: &out, Interactive: true}
	_, _ = p.Confirm(context.Background(), Prompt{
		Command: "npm install left-pad",
		Message: "⚠️  Package installation",
		Detail:  "Check the package name for typos.",
		Reason:  "Installs third-party code",
	})

	text := out.String()
	for _, want := range []string{
		"⚠️  Package installation",
		"Check the package name for typos.",
		"Command: npm install left-pad",
		"Reason: Installs third-party code",
		"Proceed? [y/N]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}
}

func TestStatic(t *testing.T) {
	if ok, _ := (Static{Approve: true}).Confirm(context.Background(), Prompt{}); !ok {
		t.Error("Static{Approve: true} refused")
	}
	if ok, _ := (Static{Approve: true, Err: ErrTimeout}).Confirm(context.Background(), Prompt{}); ok {
		t.Error("Static with error approved")
	}
}
