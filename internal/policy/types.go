package policy

import (
	"fmt"
	"strings"
	"time"
)

type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionAsk   Decision = "ask"
	DecisionDeny  Decision = "deny"
)

// ParseDecision accepts the decision spellings used in rule files.
func ParseDecision(s string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionAllow:
		return DecisionAllow, nil
	case DecisionAsk:
		return DecisionAsk, nil
	case DecisionDeny:
		return DecisionDeny, nil
	default:
		return "", fmt.Errorf("unknown decision %q (want allow, ask or deny)", s)
	}
}

// Kind selects how a rule's pattern is compared to a command.
type Kind string

const (
	KindExact   Kind = "exact"
	KindGlob    Kind = "glob"
	KindRegex   Kind = "regex"
	KindCommand Kind = "command" // legacy "cmd:arg" form
)

// Rule is one compiled entry of a rule bucket. Rules are immutable once
// loaded; the matcher is built by the loader.
type Rule struct {
	Pattern      string
	Kind         Kind
	Decision     Decision
	Reason       string
	Message      string
	Suggestion   string
	Alternatives []string
	Prompt       string

	// Origin is the path of the layer that contributed the rule.
	Origin string

	matcher matcher
}

// Matches reports whether the rule's pattern matches command.
func (r *Rule) Matches(command string) bool {
	if r.matcher == nil {
		return false
	}
	return r.matcher.match(command)
}

// RuleSet is the effective policy for one invocation. Buckets are always
// evaluated deny, then ask, then allow.
type RuleSet struct {
	Default Decision
	Deny    []Rule
	Ask     []Rule
	Allow   []Rule

	// Layers lists the configuration sources that contributed, highest
	// precedence first.
	Layers []Layer
}

// Layer is one discovered configuration source.
type Layer struct {
	Name     string // "project", "tool:claude", "user", "bundled"
	Origin   string
	Priority int
}

// Verdict is the outcome of evaluating one command.
type Verdict struct {
	Decision  Decision
	Rule      *Rule // nil when no rule matched
	Command   string
	Timestamp time.Time
}

// Matched reports whether a rule produced the verdict.
func (v Verdict) Matched() bool {
	return v.Rule != nil
}
