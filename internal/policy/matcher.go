package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gzhole/llmsec/internal/normalize"
)

type matcher interface {
	match(command string) bool
}

// Match classifies command against a single pattern of the given kind. An
// empty kind is inferred from the pattern text. Patterns that fail to compile
// never match.
func Match(pattern string, kind Kind, command string) bool {
	m, err := compileMatcher(pattern, kind)
	if err != nil {
		return false
	}
	return m.match(command)
}

// InferKind picks a kind for rule files that leave it out:
// "regex:..." is a regular expression, "cmd:arg" is the command form and
// everything else is a glob.
func InferKind(pattern string) Kind {
	if strings.HasPrefix(pattern, "regex:") {
		return KindRegex
	}
	if idx := strings.Index(pattern, ":"); idx > 0 && !strings.ContainsAny(pattern[:idx], " \t") {
		return KindCommand
	}
	return KindGlob
}

func compileMatcher(pattern string, kind Kind) (matcher, error) {
	if kind == "" {
		kind = InferKind(pattern)
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	switch kind {
	case KindExact:
		return exactMatcher{tokens: commandTokens(pattern)}, nil
	case KindGlob:
		return compileGlob(pattern)
	case KindRegex:
		re, err := compileRegex(strings.TrimPrefix(pattern, "regex:"))
		if err != nil {
			return nil, err
		}
		return regexMatcher{re: re}, nil
	case KindCommand:
		return compileCommand(pattern)
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", kind)
	}
}

func compileRegex(expr string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + expr)
}

// shellOperators are dropped from the front of a command before exact
// comparison, so "; ls" and "&& ls" compare equal to "ls".
var shellOperators = map[string]bool{
	";":  true,
	"&&": true,
	"||": true,
	"|":  true,
	"&":  true,
}

func commandTokens(s string) []string {
	fields := strings.Fields(s)
	for len(fields) > 0 && shellOperators[fields[0]] {
		fields = fields[1:]
	}
	return fields
}

type exactMatcher struct {
	tokens []string
}

func (m exactMatcher) match(command string) bool {
	got := commandTokens(command)
	if len(got) != len(m.tokens) || len(got) == 0 {
		return false
	}
	for i := range got {
		if got[i] != m.tokens[i] {
			return false
		}
	}
	return true
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) match(command string) bool {
	return m.re.MatchString(command)
}

// compileGlob turns a '*' wildcard pattern into a case-sensitive regexp. A
// pattern carrying a '^' or '$' anchor must cover the whole command; one
// without anchors may match anywhere.
func compileGlob(pattern string) (matcher, error) {
	body := pattern
	anchored := false
	if strings.HasPrefix(body, "^") {
		body = body[1:]
		anchored = true
	}
	if strings.HasSuffix(body, "$") {
		body = body[:len(body)-1]
		anchored = true
	}

	pieces := strings.Split(body, "*")
	for i, p := range pieces {
		pieces[i] = regexp.QuoteMeta(p)
	}
	expr := strings.Join(pieces, ".*")
	if anchored {
		expr = `\A` + expr + `\z`
	}

	re, err := regexp.Compile("(?s)" + expr)
	if err != nil {
		return nil, err
	}
	return globMatcher{re: re, anchored: anchored}, nil
}

type globMatcher struct {
	re       *regexp.Regexp
	anchored bool
}

func (m globMatcher) match(command string) bool {
	if m.anchored {
		command = strings.TrimSpace(command)
	}
	return m.re.MatchString(command)
}

// commandMatcher implements the "cmd:arg" form: the executable of some
// segment equals cmd, and the segment's arguments satisfy arg ("*" for any,
// "regex:<re>" for a case-insensitive search, otherwise a substring). The
// whole pattern appearing as a literal word also matches, which covers
// script names such as "npm run deploy:production".
type commandMatcher struct {
	pattern string
	cmd     string
	anyArg  bool
	argRe   *regexp.Regexp
	argSub  string
}

// regexMetachars in the command part of a "cmd:arg" pattern mean the author
// wrote a regex without the prefix; such a rule could never match. '.' and
// '+' are left out: executables such as mkfs.ext4 and g++ carry them.
const regexMetachars = `*?[](){}|\^$`

func compileCommand(pattern string) (matcher, error) {
	cmd, arg, ok := strings.Cut(pattern, ":")
	if !ok {
		arg = "*"
	}
	if cmd != "*" && strings.ContainsAny(cmd, regexMetachars) {
		return nil, fmt.Errorf("command %q looks like a regular expression; use the regex: prefix or kind: regex", cmd)
	}
	m := commandMatcher{pattern: pattern, cmd: cmd}
	switch {
	case arg == "*" || arg == "":
		m.anyArg = true
	case strings.HasPrefix(arg, "regex:"):
		re, err := compileRegex(strings.TrimPrefix(arg, "regex:"))
		if err != nil {
			return nil, err
		}
		m.argRe = re
	default:
		m.argSub = arg
	}
	return m, nil
}

func (m commandMatcher) match(command string) bool {
	for _, seg := range normalize.Split(command) {
		if m.matchSegment(seg) {
			return true
		}
		for _, a := range seg.Args {
			if a == m.pattern {
				return true
			}
		}
	}
	return false
}

func (m commandMatcher) matchSegment(seg normalize.Segment) bool {
	if m.cmd != "*" && seg.Executable != m.cmd {
		return false
	}
	if m.anyArg {
		return true
	}
	args := seg.ArgString()
	if m.argRe != nil {
		return m.argRe.MatchString(args)
	}
	return strings.Contains(args, m.argSub)
}
