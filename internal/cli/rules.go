package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gzhole/llmsec/internal/config"
	"github.com/gzhole/llmsec/internal/policy"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	rulesFormat string
	rulesWatch  bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the effective permissions for the project",
	Long: `Resolve the layered permissions files and print the result: the layers
that contributed, then the deny, ask and allow buckets in evaluation order.

  llmsec rules                 # human-readable
  llmsec rules --format yaml   # a permissions.yaml equivalent
  llmsec rules --watch         # re-resolve whenever a permissions file changes`,
	Args: cobra.NoArgs,
	RunE: rulesCommand,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "text", "Output format: text or yaml")
	rulesCmd.Flags().BoolVar(&rulesWatch, "watch", false, "Keep running and re-validate on every change")
	rootCmd.AddCommand(rulesCmd)
}

func rulesCommand(cmd *cobra.Command, args []string) error {
	if rulesFormat != "text" && rulesFormat != "yaml" {
		return fmt.Errorf("unknown format %q (want text or yaml)", rulesFormat)
	}

	cfg, err := config.Load(config.Options{ProjectDir: projectDir, Tool: toolHint, Home: homeDir})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	resolver := &policy.Resolver{UserDir: cfg.DefaultsDir}

	rs, warnings, err := resolver.Resolve(cfg.ProjectDir, cfg.Tool)
	printWarnings(cmd.ErrOrStderr(), warnings)
	if err != nil {
		return err
	}
	if err := printRules(cmd.OutOrStdout(), rs, rulesFormat); err != nil {
		return err
	}
	if !rulesWatch {
		return nil
	}

	w, err := policy.NewWatcher(resolver, cfg.ProjectDir, cfg.Tool, func(rs *policy.RuleSet, warnings []error, err error) {
		printWarnings(cmd.ErrOrStderr(), warnings)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] reload failed: %v\n", err)
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "[llmsec] permissions reloaded")
		_ = printRules(cmd.OutOrStdout(), rs, rulesFormat)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "[llmsec] watching %s\n", strings.Join(w.Dirs(), ", "))
	return w.Run(cmd.Context())
}

func printRules(w io.Writer, rs *policy.RuleSet, format string) error {
	if format == "yaml" {
		return yaml.NewEncoder(w).Encode(exportRules(rs))
	}

	p := newPalette(w)
	fmt.Fprintln(w, p.section.Render("Layers (highest precedence first):"))
	for _, l := range rs.Layers {
		fmt.Fprintf(w, "  %d. %-14s %s\n", l.Priority, l.Name, l.Origin)
	}
	fmt.Fprintf(w, "\nDefault: %s\n", rs.Default)

	buckets := []struct {
		name  string
		rules []policy.Rule
	}{
		{"deny", rs.Deny},
		{"ask", rs.Ask},
		{"allow", rs.Allow},
	}
	for _, b := range buckets {
		fmt.Fprintf(w, "\n%s\n", p.section.Render(fmt.Sprintf("%s (%d):", strings.ToUpper(b.name), len(b.rules))))
		for _, r := range b.rules {
			fmt.Fprintf(w, "  [%s] %s\n", r.Kind, r.Pattern)
			if r.Reason != "" {
				fmt.Fprintf(w, "      reason: %s\n", r.Reason)
			}
			fmt.Fprintf(w, "      from:   %s\n", p.subtle.Render(r.Origin))
		}
	}
	return nil
}

type exportRule struct {
	Pattern      string   `yaml:"pattern"`
	Kind         string   `yaml:"kind"`
	Reason       string   `yaml:"reason,omitempty"`
	Message      string   `yaml:"message,omitempty"`
	Suggestion   string   `yaml:"suggestion,omitempty"`
	Alternatives []string `yaml:"alternatives,omitempty"`
	Prompt       string   `yaml:"prompt,omitempty"`
}

type exportFile struct {
	Version int          `yaml:"version"`
	Default string       `yaml:"default"`
	Deny    []exportRule `yaml:"deny"`
	Ask     []exportRule `yaml:"ask"`
	Allow   []exportRule `yaml:"allow"`
}

// exportRules flattens rs into a single permissions file that, placed in
// .settings/, reproduces the effective policy.
func exportRules(rs *policy.RuleSet) exportFile {
	conv := func(rules []policy.Rule) []exportRule {
		out := make([]exportRule, 0, len(rules))
		for _, r := range rules {
			out = append(out, exportRule{
				Pattern:      r.Pattern,
				Kind:         string(r.Kind),
				Reason:       r.Reason,
				Message:      r.Message,
				Suggestion:   r.Suggestion,
				Alternatives: r.Alternatives,
				Prompt:       r.Prompt,
			})
		}
		return out
	}
	return exportFile{
		Version: 1,
		Default: string(rs.Default),
		Deny:    conv(rs.Deny),
		Ask:     conv(rs.Ask),
		Allow:   conv(rs.Allow),
	}
}
