package cli

import (
	"fmt"
	"strings"

	"github.com/gzhole/llmsec/internal/adapter"
	"github.com/gzhole/llmsec/internal/shell"
	"github.com/spf13/cobra"
)

var checkExec bool

var checkCmd = &cobra.Command{
	Use:   "check [--exec] <command>",
	Short: "Decide on a command string (exit 0 allow, 1 deny)",
	Long: `Evaluate a command against the effective permissions without the
ambiguity of the root form. Words after the first are joined with spaces.

  llmsec check "rm -rf /"          # exit 1, explanation on stderr
  llmsec check --exec "npm test"   # runs the command if allowed`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validate(cmd, args, checkExec)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkExec, "exec", false, "Run the command after it is allowed or approved")
	checkCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(checkCmd)
}

// validate is the validator integration shared by the root command and
// check.
func validate(cmd *cobra.Command, args []string, execute bool) error {
	command := strings.Join(args, " ")

	s, err := loadSession(cmd, "", "")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] error: %v\n", err)
		return exitCode(shell.ExitRefused)
	}
	defer s.close()

	mode := shell.CheckOnly
	if execute {
		mode = shell.Execute
	}
	out, err := s.controller(cmd, mode).Run(cmd.Context(), command)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] error: %v\n", err)
	}
	return exitCode(adapter.Respond(adapter.Validator, out).ExitCode)
}
