package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	toolHint   string
	homeDir    string
	realShell  string
	projectTag string
	askTimeout time.Duration
	execFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "llmsec [--exec] <command>",
	Short: "llmsec - command policy gate for AI coding agents",
	Long: `llmsec decides, before a shell command issued by an AI coding agent runs,
whether to allow it, ask for confirmation, or deny it with an explanation.

Rules are read from permissions.yaml files layered from the project
(.settings/, then .claude/, .opencode/, .cursor/ or .windsurf/), the user
(~/.llmsec/defaults/) and the built-in defaults.

Called with a command string, llmsec acts as a validator: exit 0 means the
command may run, exit 1 means it was denied. With --exec it runs the command
itself after an allow or an approved confirmation.

Examples:
  llmsec "git status"
  llmsec --exec "npm install left-pad"
  llmsec hook claude-code < payload.json
  llmsec shell -c "ls -la"`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return validate(cmd, args, execFlag)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&projectDir, "project-dir", "", "Project whose permissions apply (default: current directory)")
	pf.StringVar(&toolHint, "tool", "", "Calling tool: claude, opencode, cursor or windsurf (default: auto-detect)")
	pf.StringVar(&homeDir, "home", "", "User configuration directory (default: ~/.llmsec)")
	pf.StringVar(&realShell, "real-shell", "", "Shell used to run approved commands (default: /bin/bash, else /bin/sh)")
	pf.StringVar(&projectTag, "project-tag", "", "Audit log name (default: derived from the project path)")
	pf.DurationVar(&askTimeout, "ask-timeout", 0, "How long to wait for a confirmation answer (default: 60s)")

	rootCmd.Flags().BoolVar(&execFlag, "exec", false, "Run the command after it is allowed or approved")
	// Everything after the command's first word belongs to the command.
	rootCmd.Flags().SetInterspersed(false)
}

// ExitError carries a process exit code out of a command. It prints
// nothing: the command has already reported to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context,
// which stops a pending confirmation and the child process.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}
