package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigNames are the permissions file names probed in every location, in
// order. The first one present shadows the rest.
var ConfigNames = []string{"permissions.yaml", "permissions.yml", "permissions.json"}

// toolDirs maps a tool hint to its project-level configuration directory.
var toolDirs = map[string]string{
	"claude":   ".claude",
	"opencode": ".opencode",
	"cursor":   ".cursor",
	"windsurf": ".windsurf",
}

// ToolDirs returns the tool-specific directories searched for a hint. An
// empty or unknown hint searches .claude then .opencode.
func ToolDirs(toolHint string) []string {
	if dir, ok := toolDirs[toolHint]; ok {
		return []string{dir}
	}
	return []string{".claude", ".opencode"}
}

// Resolver discovers permissions files and merges them into one RuleSet.
type Resolver struct {
	// UserDir is the user-level defaults directory, normally
	// ~/.llmsec/defaults. Empty skips the user layer.
	UserDir string

	// Bundled overrides the embedded default permissions (tests).
	Bundled []byte
}

// Candidate is one location probed by the resolver.
type Candidate struct {
	Name     string
	Dir      string
	Priority int
}

// Candidates lists the search locations for projectDir and toolHint in
// precedence order. The bundled layer is implicit and always last.
func (r *Resolver) Candidates(projectDir, toolHint string) []Candidate {
	var out []Candidate
	prio := 1
	out = append(out, Candidate{Name: "project", Dir: filepath.Join(projectDir, ".settings"), Priority: prio})
	for _, dir := range ToolDirs(toolHint) {
		prio++
		out = append(out, Candidate{Name: "tool:" + dir[1:], Dir: filepath.Join(projectDir, dir), Priority: prio})
	}
	if r.UserDir != "" {
		prio++
		out = append(out, Candidate{Name: "user", Dir: r.UserDir, Priority: prio})
	}
	return out
}

// Resolve builds the effective RuleSet. Deny rules from every discovered
// layer accumulate in precedence order; ask, allow and default come from the
// highest-precedence layer that defines them. Layers that fail to parse are
// skipped and reported in the returned warnings. The error is non-nil only
// when the bundled layer itself is unusable.
func (r *Resolver) Resolve(projectDir, toolHint string) (*RuleSet, []error, error) {
	var (
		warnings []error
		layers   []*LayerRules
		rs       = &RuleSet{}
	)

	for _, c := range r.Candidates(projectDir, toolHint) {
		path := findConfig(c.Dir)
		if path == "" {
			continue
		}
		lr, ws, err := LoadFile(path)
		warnings = append(warnings, ws...)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		layers = append(layers, lr)
		rs.Layers = append(rs.Layers, Layer{Name: c.Name, Origin: path, Priority: c.Priority})
	}

	bundled, ws, err := r.loadBundled()
	warnings = append(warnings, ws...)
	if err != nil {
		return nil, warnings, fmt.Errorf("bundled permissions unusable: %w", err)
	}
	layers = append(layers, bundled)
	rs.Layers = append(rs.Layers, Layer{Name: "bundled", Origin: bundled.Origin, Priority: len(rs.Layers) + 1})

	merge(rs, layers)
	return rs, warnings, nil
}

func (r *Resolver) loadBundled() (*LayerRules, []error, error) {
	if r.Bundled != nil {
		return Parse(r.Bundled, "yaml", BundledOrigin)
	}
	return LoadBundled()
}

// merge folds compiled layers (highest precedence first) into rs.
func merge(rs *RuleSet, layers []*LayerRules) {
	askSet, allowSet := false, false
	for _, lr := range layers {
		rs.Deny = append(rs.Deny, lr.Deny...)
		if !askSet && lr.HasAsk {
			rs.Ask = lr.Ask
			askSet = true
		}
		if !allowSet && lr.HasAllow {
			rs.Allow = lr.Allow
			allowSet = true
		}
		if rs.Default == "" && lr.Default != "" {
			rs.Default = lr.Default
		}
	}
	if rs.Default == "" {
		rs.Default = DecisionAllow
	}
}

// findConfig returns the first permissions file present in dir.
func findConfig(dir string) string {
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			// Unreadable still shadows; LoadFile reports it.
			return path
		}
	}
	return ""
}
