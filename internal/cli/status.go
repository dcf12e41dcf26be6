package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gzhole/llmsec/internal/config"
	"github.com/gzhole/llmsec/internal/policy"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show llmsec status: project, tool, permission layers, audit log",
	Long: `Check what llmsec would use for the current project: the detected tool,
which permissions files are found and which of them are shadowed, and where
the audit log is written.

  llmsec status`,
	Args: cobra.NoArgs,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{
		ProjectDir: projectDir,
		Tool:       toolHint,
		Home:       homeDir,
		ProjectTag: projectTag,
		RealShell:  realShell,
		AskTimeout: askTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	w := cmd.OutOrStdout()
	p := newPalette(w)

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, p.title.Render("  llmsec Status"))
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	binPath, err := os.Executable()
	if err != nil {
		binPath = "unknown"
	}
	tool := cfg.Tool
	if tool == "" {
		tool = "(none detected)"
	}
	fmt.Fprintf(w, "  Binary:     %s (%s)\n", binPath, Version)
	fmt.Fprintf(w, "  Project:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(w, "  Tool:       %s\n", tool)
	fmt.Fprintf(w, "  Real shell: %s\n", cfg.RealShell)
	fmt.Fprintf(w, "  Ask timeout: %s\n", cfg.AskTimeout)
	fmt.Fprintln(w)

	fmt.Fprintln(w, p.section.Render("─── Permission layers ─────────────────────────────────"))
	resolver := &policy.Resolver{UserDir: cfg.DefaultsDir}
	for _, c := range resolver.Candidates(cfg.ProjectDir, cfg.Tool) {
		checkLayerDir(w, c)
	}
	fmt.Fprintf(w, "  ✅ bundled: %s\n", policy.BundledOrigin)

	rs, warnings, err := resolver.Resolve(cfg.ProjectDir, cfg.Tool)
	for _, warn := range warnings {
		fmt.Fprintln(w, p.warn.Render(fmt.Sprintf("  ⚠  %v", warn)))
	}
	if err != nil {
		fmt.Fprintln(w, p.danger.Render(fmt.Sprintf("  ❌ %v", err)))
	} else {
		fmt.Fprintf(w, "  Effective: %d deny, %d ask, %d allow, default %s\n",
			len(rs.Deny), len(rs.Ask), len(rs.Allow), rs.Default)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, p.section.Render("─── Audit Log ─────────────────────────────────────────"))
	checkAuditLog(w, cfg.LogPath)
	fmt.Fprintln(w)
	return nil
}

func checkLayerDir(w io.Writer, c policy.Candidate) {
	var found []string
	for _, name := range policy.ConfigNames {
		path := filepath.Join(c.Dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = append(found, path)
		}
	}
	switch len(found) {
	case 0:
		fmt.Fprintf(w, "  ⬚  %s: no permissions file in %s\n", c.Name, c.Dir)
	case 1:
		fmt.Fprintf(w, "  ✅ %s: %s\n", c.Name, found[0])
	default:
		fmt.Fprintf(w, "  ✅ %s: %s\n", c.Name, found[0])
		for _, shadowed := range found[1:] {
			fmt.Fprintf(w, "     (shadowed) %s\n", shadowed)
		}
	}
}

func checkAuditLog(w io.Writer, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "  ⬚  %s (not yet created, starts on first event)\n", path)
		return
	}

	sizeKB := info.Size() / 1024
	if sizeKB == 0 {
		fmt.Fprintf(w, "  ✅ %s (<1 KB)\n", path)
	} else {
		fmt.Fprintf(w, "  ✅ %s (%d KB)\n", path, sizeKB)
	}
}
