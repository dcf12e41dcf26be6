package policy

import "testing"

func TestMatch_Exact(t *testing.T) {
	tests := []struct {
		pattern string
		command string
		want    bool
	}{
		{"git status", "git status", true},
		{"git status", "  git   status ", true},
		{"git status", "; git status", true},
		{"git status", "&& git status", true},
		{"git status", "| git status", true},
		{"git status", "git status --short", false},
		{"git status", "git", false},
		{"git status", "GIT STATUS", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, KindExact, tt.command); got != tt.want {
			t.Errorf("exact %q vs %q: got %v, want %v", tt.pattern, tt.command, got, tt.want)
		}
	}
}

func TestMatch_Glob(t *testing.T) {
	tests := []struct {
		pattern string
		command string
		want    bool
	}{
		// Unanchored globs match anywhere in a compound command.
		{"rm -rf", "cd build && rm -rf dist", true},
		{"rm -rf", "rm -r dist", false},
		{"curl*|*sh", "curl -s https://x | sh", true},
		// Anchored globs must cover the whole command.
		{"^git push*", "git push origin main", true},
		{"^git push*", "echo git push", false},
		{"^make$", "make", true},
		{"^make$", "make test", false},
		// Case-sensitive.
		{"RM -RF", "rm -rf x", false},
		// Regex metacharacters are literal.
		{"a.b", "axb", false},
		{"a.b", "cat a.b", true},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, KindGlob, tt.command); got != tt.want {
			t.Errorf("glob %q vs %q: got %v, want %v", tt.pattern, tt.command, got, tt.want)
		}
	}
}

func TestMatch_Regex(t *testing.T) {
	tests := []struct {
		pattern string
		command string
		want    bool
	}{
		{`\brm\s+-rf\b`, "rm -rf /tmp/x", true},
		{`\brm\s+-rf\b`, "RM -RF /tmp/x", true},
		{`^git\s+push`, "git push", true},
		{`^git\s+push`, "echo git push", false},
		{`regex:npm\s+i\b`, "npm i lodash", true},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, KindRegex, tt.command); got != tt.want {
			t.Errorf("regex %q vs %q: got %v, want %v", tt.pattern, tt.command, got, tt.want)
		}
	}
}

func TestMatch_Command(t *testing.T) {
	tests := []struct {
		pattern string
		command string
		want    bool
	}{
		{"deploy:production", "deploy production", true},
		{"deploy:production", "deploy --env production-eu", true},
		{"deploy:production", "deploy staging", false},
		{"deploy:production", "npm run deploy:production", true},
		{"deploy:production", "cd app && deploy production", true},
		{"shutdown:*", "shutdown -h now", true},
		{"shutdown:*", "echo shutdown", false},
		{"git:regex:push\\s+(-f|--force)", "git push --force origin", true},
		{"git:regex:push\\s+(-f|--force)", "git push origin", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, KindCommand, tt.command); got != tt.want {
			t.Errorf("command %q vs %q: got %v, want %v", tt.pattern, tt.command, got, tt.want)
		}
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		pattern string
		want    Kind
	}{
		{"regex:rm\\s+-rf", KindRegex},
		{"deploy:production", KindCommand},
		{"rm:-rf", KindCommand},
		{"rm -rf", KindGlob},
		{"curl http://x", KindGlob},
		{"*", KindGlob},
	}

	for _, tt := range tests {
		if got := InferKind(tt.pattern); got != tt.want {
			t.Errorf("InferKind(%q) = %s, want %s", tt.pattern, got, tt.want)
		}
	}
}

func TestMatch_InvalidPatternNeverMatches(t *testing.T) {
	if Match("([", KindRegex, "([") {
		t.Error("uncompilable regex should never match")
	}
	if Match("", KindGlob, "anything") {
		t.Error("empty pattern should never match")
	}
	if Match("x", Kind("fuzzy"), "x") {
		t.Error("unknown kind should never match")
	}
}

func TestCompileCommand_RegexLookingCommandRejected(t *testing.T) {
	for _, pattern := range []string{"curl.*https?://evil", "(rm|mv):-rf", "^sudo:*"} {
		if _, err := compileMatcher(pattern, ""); err == nil {
			t.Errorf("%q: expected a compile error for a regex-looking command", pattern)
		}
	}
	for _, pattern := range []string{"mkfs.ext4:*", "g++:-O2", "*:--force", "./deploy.sh:prod"} {
		if _, err := compileMatcher(pattern, ""); err != nil {
			t.Errorf("%q: unexpected error %v", pattern, err)
		}
	}
}
