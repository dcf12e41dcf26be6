// Package shell drives one command through decide, record and (in execute
// mode) run. It is shared by every integration: the validator, the editor
// hooks and the shell replacement differ only in how they parse the request
// and report the outcome.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gzhole/llmsec/internal/approval"
	"github.com/gzhole/llmsec/internal/logger"
	"github.com/gzhole/llmsec/internal/normalize"
	"github.com/gzhole/llmsec/internal/policy"
)

// Mode is fixed when the controller is built.
type Mode int

const (
	// CheckOnly decides and records but never spawns.
	CheckOnly Mode = iota
	// Execute runs allowed and approved commands through the Runner.
	Execute
)

func (m Mode) String() string {
	if m == Execute {
		return "execute"
	}
	return "check-only"
}

const (
	ExitAllowed = 0
	ExitRefused = 1
)

// Decider is the policy engine as seen by the controller.
type Decider interface {
	Decide(command string) policy.Verdict
}

// Outcome is the terminal state of one invocation.
type Outcome struct {
	Verdict  policy.Verdict
	Status   logger.Status
	ExitCode int
	Executed bool
}

// Refused reports whether the command was denied or the user declined.
func (o Outcome) Refused() bool {
	return o.Status == logger.StatusBlocked || o.Status == logger.StatusCancelled
}

// Controller has no hidden inputs: everything it consults is a field.
type Controller struct {
	Engine   Decider
	Audit    logger.Recorder
	Prompter approval.Prompter
	Runner   Runner
	Mode     Mode
	Stderr   io.Writer
}

// Run decides command and carries the decision out. The audit record is
// written before any child is spawned and exactly once per call. The
// returned error is non-nil only when an approved command could not be
// started; the outcome then carries exit code 127.
func (c *Controller) Run(ctx context.Context, command string) (Outcome, error) {
	v := c.Engine.Decide(command)
	out := Outcome{Verdict: v}
	c.warnHidden(command)

	switch v.Decision {
	case policy.DecisionDeny:
		out.Status = logger.StatusBlocked
		out.ExitCode = ExitRefused
		c.record(out.Status, command)
		fmt.Fprint(c.stderr(), "\n"+policy.Explain(v))
		return out, nil

	case policy.DecisionAsk:
		if c.Mode == CheckOnly {
			out.Status = logger.StatusAskDeferred
			out.ExitCode = ExitAllowed
			c.record(out.Status, command)
			return out, nil
		}
		if !c.confirm(ctx, v) {
			out.Status = logger.StatusCancelled
			out.ExitCode = ExitRefused
			c.record(out.Status, command)
			fmt.Fprintln(c.stderr(), "❌ Command cancelled by user")
			return out, nil
		}
		out.Status = logger.StatusApproved

	default:
		out.Status = logger.StatusAllowed
	}

	c.record(out.Status, command)
	if c.Mode == CheckOnly {
		out.ExitCode = ExitAllowed
		return out, nil
	}
	return c.execute(ctx, command, out)
}

func (c *Controller) execute(ctx context.Context, command string, out Outcome) (Outcome, error) {
	if c.Runner == nil {
		out.ExitCode = ExitCommandNotFound
		return out, fmt.Errorf("no runner configured")
	}
	out.Executed = true
	code, err := c.Runner.Run(ctx, command)
	out.ExitCode = code
	if err != nil {
		return out, fmt.Errorf("run command: %w", err)
	}
	return out, nil
}

func (c *Controller) confirm(ctx context.Context, v policy.Verdict) bool {
	if c.Prompter == nil {
		return false
	}
	p := approval.Prompt{Command: normalize.Visible(v.Command)}
	if v.Rule != nil {
		p.Message = v.Rule.Message
		p.Detail = v.Rule.Prompt
		p.Reason = v.Rule.Reason
	}
	ok, err := c.Prompter.Confirm(ctx, p)
	return ok && err == nil
}

func (c *Controller) warnHidden(command string) {
	hidden := normalize.FindHidden(command)
	if len(hidden) == 0 {
		return
	}
	parts := make([]string, 0, len(hidden))
	for _, h := range hidden {
		parts = append(parts, h.String())
	}
	fmt.Fprintf(c.stderr(), "[llmsec] warning: command contains hidden characters: %s\n", strings.Join(parts, ", "))
}

func (c *Controller) record(status logger.Status, command string) {
	if c.Audit != nil {
		c.Audit.Record(status, command)
	}
}

func (c *Controller) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}
