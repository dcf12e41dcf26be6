// Package normalize turns a raw shell command line into the simple commands
// it is made of, so rules can reason about executables and arguments instead
// of raw text.
package normalize

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Segment is one simple command inside a possibly compound command line.
// "cd app && npm run build | tee log" yields three segments.
type Segment struct {
	Raw        string   // printed form of the simple command
	Executable string   // first word, e.g. "npm"
	Args       []string // remaining words with quotes removed
}

// ArgString returns the arguments joined by single spaces.
func (s Segment) ArgString() string {
	return strings.Join(s.Args, " ")
}

// Split parses command as bash and returns its simple commands in source
// order. Pipelines, && / || / ; lists, subshells, blocks and command
// substitutions are all flattened. Input the parser rejects is split on
// unquoted shell operators instead.
func Split(command string) []Segment {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}

	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return fallbackSplit(command)
	}

	var segments []Segment
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		words := make([]string, 0, len(call.Args))
		for _, w := range call.Args {
			words = append(words, wordValue(w))
		}
		segments = append(segments, Segment{
			Raw:        printNode(call),
			Executable: words[0],
			Args:       words[1:],
		})
		return true
	})
	return segments
}

// wordValue returns the unquoted value of literal and quoted parts. Parts
// that need expansion keep their printed shell form.
func wordValue(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		writePart(&sb, part)
	}
	return sb.String()
}

func writePart(sb *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(p.Value)
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			writePart(sb, inner)
		}
	default:
		sb.WriteString(printNode(p))
	}
}

func printNode(node syntax.Node) string {
	var sb strings.Builder
	if err := syntax.NewPrinter().Print(&sb, node); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

// fallbackSplit splits on &&, ||, ;, & and | outside of quotes.
func fallbackSplit(command string) []Segment {
	var (
		parts   []string
		current strings.Builder
		quote   rune
	)
	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			current.WriteRune(ch)
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
			current.WriteRune(ch)
		case ';', '|', '&':
			parts = append(parts, current.String())
			current.Reset()
			if i+1 < len(runes) && (runes[i+1] == '&' || runes[i+1] == '|') && ch != ';' {
				i++
			}
		default:
			current.WriteRune(ch)
		}
	}
	parts = append(parts, current.String())

	var segments []Segment
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		for i, f := range fields {
			fields[i] = strings.Trim(f, `'"`)
		}
		segments = append(segments, Segment{
			Raw:        strings.TrimSpace(part),
			Executable: fields[0],
			Args:       fields[1:],
		})
	}
	return segments
}
