package cli

import (
	"fmt"
	"io"

	"github.com/gzhole/llmsec/internal/approval"
	"github.com/gzhole/llmsec/internal/config"
	"github.com/gzhole/llmsec/internal/logger"
	"github.com/gzhole/llmsec/internal/policy"
	"github.com/gzhole/llmsec/internal/shell"
	"github.com/spf13/cobra"
)

// session is everything one invocation resolves before deciding: settings,
// the effective rule set and the audit log. Rules are resolved once per
// process.
type session struct {
	cfg     *config.Config
	rules   *policy.RuleSet
	engine  *policy.Engine
	audit   *logger.AuditLogger
	release func()
}

// loadSession resolves configuration for project (empty: --project-dir or
// the working directory) and tool (empty: detected from marker files). An
// explicit --tool always wins over tool. Layer and rule problems are
// printed as warnings; an unusable bundled rule file is returned as an
// error so that callers can refuse the command.
func loadSession(cmd *cobra.Command, project, tool string) (*session, error) {
	if project == "" {
		project = projectDir
	}
	if toolHint != "" {
		tool = toolHint
	}
	cfg, err := config.Load(config.Options{
		ProjectDir: project,
		Tool:       tool,
		Home:       homeDir,
		ProjectTag: projectTag,
		RealShell:  realShell,
		AskTimeout: askTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	resolver := &policy.Resolver{UserDir: cfg.DefaultsDir}
	rs, warnings, err := resolver.Resolve(cfg.ProjectDir, cfg.Tool)
	printWarnings(cmd.ErrOrStderr(), warnings)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		rules:   rs,
		engine:  policy.NewEngine(rs),
		audit:   logger.New(cfg.LogPath),
		release: func() {},
	}, nil
}

// controller builds the mode controller. Execute mode gets a terminal
// prompter and a runner wired to the command's stdio.
func (s *session) controller(cmd *cobra.Command, mode shell.Mode) *shell.Controller {
	c := &shell.Controller{
		Engine: s.engine,
		Audit:  s.audit,
		Mode:   mode,
		Stderr: cmd.ErrOrStderr(),
	}
	if mode == shell.Execute {
		prompter, release := approval.OpenTerminal(cmd.ErrOrStderr(), s.cfg.AskTimeout)
		s.release = release
		c.Prompter = prompter
		c.Runner = &shell.ShellRunner{
			Path:   s.cfg.RealShell,
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}
	}
	return c
}

func (s *session) close() {
	s.release()
}

func printWarnings(w io.Writer, warnings []error) {
	for _, err := range warnings {
		fmt.Fprintf(w, "[llmsec] warning: %v\n", err)
	}
}
