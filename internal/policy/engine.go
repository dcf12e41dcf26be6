package policy

import (
	"strings"
	"time"
)

// Engine evaluates commands against one effective RuleSet. It holds no
// state besides the rule set and a clock, so repeated evaluation of the same
// command yields the same verdict.
type Engine struct {
	rules *RuleSet
	now   func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock replaces the clock used to timestamp verdicts.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(rs *RuleSet, opts ...EngineOption) *Engine {
	if rs == nil {
		rs = &RuleSet{}
	}
	e := &Engine{rules: rs, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates command: the first matching deny rule wins, then the
// first ask rule, then the first allow rule. With no match the rule set's
// default applies. A blank command is allowed without consulting any rule.
func (e *Engine) Decide(command string) Verdict {
	return Decide(e.rules, command, e.now().UTC())
}

// Decide is the pure form of Engine.Decide with an explicit timestamp.
func Decide(rs *RuleSet, command string, ts time.Time) Verdict {
	v := Verdict{
		Decision:  DecisionAllow,
		Command:   command,
		Timestamp: ts.Truncate(time.Second),
	}
	if rs == nil || strings.TrimSpace(command) == "" {
		return v
	}

	buckets := []struct {
		decision Decision
		rules    []Rule
	}{
		{DecisionDeny, rs.Deny},
		{DecisionAsk, rs.Ask},
		{DecisionAllow, rs.Allow},
	}
	for _, b := range buckets {
		for i := range b.rules {
			if b.rules[i].Matches(command) {
				v.Decision = b.decision
				v.Rule = &b.rules[i]
				return v
			}
		}
	}

	if rs.Default != "" {
		v.Decision = rs.Default
	}
	return v
}
