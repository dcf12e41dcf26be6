package policy

import (
	"fmt"
	"strings"
)

const rule70 = "======================================================================"

// Text for a deny that comes from the rule set default rather than a rule.
const (
	defaultDenyReason     = "No rule allows this command and the permissions default is deny."
	defaultDenySuggestion = "Add an allow rule for it to .settings/permissions.yaml."
)

// Explain renders the educational text attached to a deny verdict: the
// rule's message, its reason, the suggested alternative and the list of
// safe alternatives.
func Explain(v Verdict) string {
	var sb strings.Builder
	sb.WriteString(rule70 + "\n")

	r := v.Rule
	if r == nil {
		fmt.Fprintf(&sb, "❌ Command blocked: %s\n", v.Command)
		if v.Decision == DecisionDeny {
			fmt.Fprintf(&sb, "\nReason: %s\n", defaultDenyReason)
			fmt.Fprintf(&sb, "\n💡 Suggested Alternative:\n   %s\n", defaultDenySuggestion)
		}
		sb.WriteString(rule70 + "\n")
		return sb.String()
	}

	msg := r.Message
	if msg == "" {
		msg = "❌ Command blocked"
	}
	sb.WriteString(msg + "\n")

	if r.Reason != "" {
		fmt.Fprintf(&sb, "\nReason: %s\n", r.Reason)
	}

	if r.Suggestion != "" {
		sb.WriteString("\n💡 Suggested Alternative:\n")
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(&sb, "   %s\n", line)
		}
	}

	if len(r.Alternatives) > 0 {
		sb.WriteString("\n✓ Safe Alternatives:\n")
		for _, alt := range r.Alternatives {
			fmt.Fprintf(&sb, "   • %s\n", alt)
		}
	}

	sb.WriteString(rule70 + "\n")
	return sb.String()
}

// Summary is a one-line form of a verdict for JSON hook responses.
func Summary(v Verdict) string {
	if v.Rule == nil {
		if v.Decision == DecisionDeny {
			return fmt.Sprintf("%s | Suggestion: %s", defaultDenyReason, defaultDenySuggestion)
		}
		return fmt.Sprintf("%s: %s", v.Decision, v.Command)
	}
	parts := []string{}
	if v.Rule.Message != "" {
		parts = append(parts, v.Rule.Message)
	}
	if v.Rule.Reason != "" {
		parts = append(parts, v.Rule.Reason)
	}
	if v.Rule.Suggestion != "" {
		parts = append(parts, "Suggestion: "+strings.Join(strings.Fields(v.Rule.Suggestion), " "))
	}
	if len(v.Rule.Alternatives) > 0 {
		parts = append(parts, "Alternatives: "+strings.Join(v.Rule.Alternatives, "; "))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s by rule %q", v.Decision, v.Rule.Pattern)
	}
	return strings.Join(parts, " | ")
}
