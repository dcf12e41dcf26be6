package cli

import (
	"fmt"
	"strings"

	"github.com/gzhole/llmsec/internal/adapter"
	"github.com/gzhole/llmsec/internal/shell"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell -c <command>",
	Short: "Drop-in shell: decide, confirm, then run with the real shell",
	Long: `Accepts the "-c <command>" convention so that llmsec can be configured as
the shell an agent spawns. Allowed commands run through the real shell.
llmsec's own long flags (--real-shell, --project-dir, ...) may precede -c.
Exit status is the child's, or 1 when the command is denied or not
confirmed.

  llmsec shell --real-shell /bin/zsh -c "npm test"`,
	DisableFlagParsing: true,
	RunE:               shellCommand,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func shellCommand(cmd *cobra.Command, args []string) error {
	rest, err := applyLeadingFlags(cmd, args)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "llmsec shell: %v\n", err)
		return exitCode(2)
	}
	req, err := adapter.ParseShellArgs(rest)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "llmsec shell: %v\n", err)
		return exitCode(2)
	}

	s, err := loadSession(cmd, "", "")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] error: %v\n", err)
		return exitCode(shell.ExitRefused)
	}
	defer s.close()

	out, err := s.controller(cmd, shell.Execute).Run(cmd.Context(), req.Command)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "llmsec shell: %v\n", err)
	}
	return exitCode(adapter.Respond(adapter.Shell, out).ExitCode)
}

// applyLeadingFlags sets llmsec's persistent flags given as --name=value or
// --name value before the shell arguments. Flag parsing is disabled for
// this command so that -c and its payload reach ParseShellArgs untouched.
func applyLeadingFlags(cmd *cobra.Command, args []string) ([]string, error) {
	flags := cmd.Root().PersistentFlags()
	for len(args) > 0 && strings.HasPrefix(args[0], "--") && args[0] != "--" {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(args[0], "--"), "=")
		if flags.Lookup(name) == nil {
			return nil, fmt.Errorf("unknown flag --%s", name)
		}
		args = args[1:]
		if !hasValue {
			if len(args) == 0 {
				return nil, fmt.Errorf("flag --%s needs a value", name)
			}
			value, args = args[0], args[1:]
		}
		if err := flags.Set(name, value); err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", name, err)
		}
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	return args, nil
}
