package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ExitCommandNotFound is returned when the real shell cannot be started.
const ExitCommandNotFound = 127

// Runner spawns an approved command and reports its exit code.
type Runner interface {
	Run(ctx context.Context, command string) (int, error)
}

// ShellRunner runs commands as `<Path> -c <command>` with inherited stdio.
type ShellRunner struct {
	Path   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewShellRunner(path string) *ShellRunner {
	return &ShellRunner{Path: path, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run waits for the child. A non-zero exit is reported through the code,
// not the error; the error is set only when the shell could not run at all.
func (r *ShellRunner) Run(ctx context.Context, command string) (int, error) {
	cmd := exec.CommandContext(ctx, r.Path, "-c", command)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal.
			code = 1
		}
		return code, nil
	}
	return ExitCommandNotFound, err
}
