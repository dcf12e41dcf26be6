package policy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bundled/permissions.yaml
var bundledPermissions []byte

// BundledOrigin names the built-in layer in rule origins and messages.
const BundledOrigin = "<bundled>/permissions.yaml"

// ruleFile is the on-disk shape of a permissions file. Bucket pointers stay
// nil when a file does not mention the key, which lets the resolver tell
// "not defined" apart from "defined as empty".
type ruleFile struct {
	Version any         `yaml:"version" json:"version"`
	Default string      `yaml:"default,omitempty" json:"default,omitempty"`
	Deny    *[]fileRule `yaml:"deny" json:"deny"`
	Ask     *[]fileRule `yaml:"ask" json:"ask"`
	Allow   *[]fileRule `yaml:"allow" json:"allow"`
}

type fileRule struct {
	Pattern      string   `yaml:"pattern" json:"pattern"`
	Kind         string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Reason       string   `yaml:"reason,omitempty" json:"reason,omitempty"`
	Message      string   `yaml:"message,omitempty" json:"message,omitempty"`
	Suggestion   string   `yaml:"suggestion,omitempty" json:"suggestion,omitempty"`
	Alternatives []string `yaml:"alternatives,omitempty" json:"alternatives,omitempty"`
	Prompt       string   `yaml:"prompt,omitempty" json:"prompt,omitempty"`
}

// LayerRules is the compiled content of one permissions file. A nil bucket
// means the file does not define it.
type LayerRules struct {
	Origin  string
	Version string
	Default Decision
	Deny    []Rule
	Ask     []Rule
	Allow   []Rule

	HasDeny  bool
	HasAsk   bool
	HasAllow bool
}

// LayerError reports a permissions file that could not be read or parsed.
// The resolver skips such a layer and keeps going.
type LayerError struct {
	Path string
	Err  error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("skipping config layer %s: %v", e.Path, e.Err)
}

func (e *LayerError) Unwrap() error { return e.Err }

// RuleError reports a single rule that was dropped, most often because its
// regular expression does not compile. Other rules of the bucket still apply.
type RuleError struct {
	Origin  string
	Bucket  Decision
	Index   int
	Pattern string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: skipping %s rule #%d (%q): %v", e.Origin, e.Bucket, e.Index+1, e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// ErrEmptyPattern is wrapped by RuleError for rules without a pattern.
var ErrEmptyPattern = errors.New("rule has no pattern")

// LoadFile reads and compiles one permissions file. The format follows the
// extension: .json is JSON, anything else YAML. Rule-level problems are
// returned as warnings next to the compiled layer; a file-level problem is a
// *LayerError.
func LoadFile(path string) (*LayerRules, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LayerError{Path: path, Err: err}
	}
	return Parse(data, formatFor(path), path)
}

// LoadBundled compiles the permissions file shipped inside the binary.
func LoadBundled() (*LayerRules, []error, error) {
	return Parse(bundledPermissions, "yaml", BundledOrigin)
}

// BundledSource returns the raw bundled permissions file.
func BundledSource() []byte {
	out := make([]byte, len(bundledPermissions))
	copy(out, bundledPermissions)
	return out
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// Parse compiles permissions data in the given format ("yaml" or "json").
func Parse(data []byte, format, origin string) (*LayerRules, []error, error) {
	var rf ruleFile
	var err error
	if format == "json" {
		err = json.Unmarshal(data, &rf)
	} else {
		err = yaml.Unmarshal(data, &rf)
	}
	if err != nil {
		return nil, nil, &LayerError{Path: origin, Err: fmt.Errorf("parse %s: %w", format, err)}
	}

	lr := &LayerRules{Origin: origin}
	if rf.Version != nil {
		lr.Version = fmt.Sprint(rf.Version)
	}
	if rf.Default != "" {
		d, err := ParseDecision(rf.Default)
		if err != nil {
			return nil, nil, &LayerError{Path: origin, Err: err}
		}
		lr.Default = d
	}

	var warnings []error
	compile := func(bucket Decision, entries *[]fileRule) ([]Rule, bool) {
		if entries == nil {
			return nil, false
		}
		rules := make([]Rule, 0, len(*entries))
		for i, fr := range *entries {
			r, err := compileRule(fr, bucket, origin)
			if err != nil {
				warnings = append(warnings, &RuleError{
					Origin:  origin,
					Bucket:  bucket,
					Index:   i,
					Pattern: fr.Pattern,
					Err:     err,
				})
				continue
			}
			rules = append(rules, r)
		}
		return rules, true
	}

	lr.Deny, lr.HasDeny = compile(DecisionDeny, rf.Deny)
	lr.Ask, lr.HasAsk = compile(DecisionAsk, rf.Ask)
	lr.Allow, lr.HasAllow = compile(DecisionAllow, rf.Allow)

	return lr, warnings, nil
}

func compileRule(fr fileRule, bucket Decision, origin string) (Rule, error) {
	if strings.TrimSpace(fr.Pattern) == "" {
		return Rule{}, ErrEmptyPattern
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(fr.Kind)))
	if kind == "" {
		kind = InferKind(fr.Pattern)
	}
	m, err := compileMatcher(fr.Pattern, kind)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Pattern:      fr.Pattern,
		Kind:         kind,
		Decision:     bucket,
		Reason:       strings.TrimSpace(fr.Reason),
		Message:      strings.TrimSpace(fr.Message),
		Suggestion:   strings.TrimSpace(fr.Suggestion),
		Alternatives: fr.Alternatives,
		Prompt:       strings.TrimSpace(fr.Prompt),
		Origin:       origin,
		matcher:      m,
	}, nil
}
