package cli

import (
	"fmt"
	"io"

	"github.com/gzhole/llmsec/internal/adapter"
	"github.com/gzhole/llmsec/internal/shell"
	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook [claude-code|windsurf|cursor|opencode]",
	Short: "Editor and agent hook handler",
	Long: `Reads a hook JSON payload from stdin, decides on the command it carries
and answers in the format the caller expects:

  claude-code  exit 2 with the explanation on stderr to block
  windsurf     exit 2 with the explanation on stderr to block
  cursor       {"permission":"allow"} or {"permission":"deny",...} on stdout
  opencode     {} or {"cancel":true,"reason":...} on stdout

Without an argument the format is detected from the payload. Hooks never
prompt: a command matching an ask rule is let through and recorded as
ALLOWED_ASK_DEFERRED.`,
	Args: cobra.MaximumNArgs(1),
	RunE: hookCommand,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func hookCommand(cmd *cobra.Command, args []string) error {
	var integration adapter.Integration
	if len(args) == 1 {
		var err error
		if integration, err = adapter.ParseIntegration(args[0]); err != nil {
			return err
		}
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	req, err := adapter.ParseHook(integration, data)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] warning: could not parse hook input: %v\n", err)
		return writeResponse(cmd, adapter.Refuse(integration,
			"🛑 Blocked by llmsec: unreadable hook payload",
			fmt.Sprintf("llmsec could not parse the hook payload: %v", err)))
	}
	if req.Pass {
		return writeResponse(cmd, adapter.Allow(req.Integration, 0))
	}

	dir := req.Cwd
	if projectDir != "" {
		dir = projectDir
	}
	s, err := loadSession(cmd, dir, req.Integration.ToolHint())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] error: %v\n", err)
		return writeResponse(cmd, adapter.Refuse(req.Integration,
			"🛑 Blocked by llmsec: permissions unavailable",
			fmt.Sprintf("llmsec refused the command because its permissions could not be loaded: %v", err)))
	}
	defer s.close()

	out, err := s.controller(cmd, shell.CheckOnly).Run(cmd.Context(), req.Command)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] error: %v\n", err)
	}
	return writeResponse(cmd, adapter.Respond(req.Integration, out))
}

func writeResponse(cmd *cobra.Command, r adapter.Response) error {
	if len(r.Stdout) > 0 {
		_, _ = cmd.OutOrStdout().Write(r.Stdout)
	}
	if r.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), r.Stderr)
	}
	return exitCode(r.ExitCode)
}
