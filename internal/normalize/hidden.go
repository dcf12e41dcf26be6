package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Hidden is a character that renders invisibly or reorders the text around
// it, so that what a human reads differs from what the shell receives.
type Hidden struct {
	Offset int    // byte offset in the command
	Rune   rune   // utf8.RuneError for an invalid byte
	Class  string // zero-width, bidi, tag, control, invalid-utf8
}

func (h Hidden) String() string {
	if h.Class == "invalid-utf8" {
		return fmt.Sprintf("%s at byte %d", h.Class, h.Offset)
	}
	return fmt.Sprintf("%s U+%04X at byte %d", h.Class, h.Rune, h.Offset)
}

// FindHidden lists every hidden character in command. Tab, newline and
// carriage return are ordinary shell whitespace and are not reported.
func FindHidden(command string) []Hidden {
	var found []Hidden
	for i := 0; i < len(command); {
		r, size := utf8.DecodeRuneInString(command[i:])
		if r == utf8.RuneError && size == 1 {
			found = append(found, Hidden{Offset: i, Rune: r, Class: "invalid-utf8"})
		} else if class := hiddenClass(r); class != "" {
			found = append(found, Hidden{Offset: i, Rune: r, Class: class})
		}
		i += size
	}
	return found
}

// Visible replaces hidden characters with a <U+XXXX> marker, for showing a
// command to a person or writing it to the audit log.
func Visible(command string) string {
	if len(FindHidden(command)) == 0 {
		return command
	}
	var sb strings.Builder
	for i := 0; i < len(command); {
		r, size := utf8.DecodeRuneInString(command[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&sb, "<0x%02X>", command[i])
		case hiddenClass(r) != "":
			fmt.Fprintf(&sb, "<U+%04X>", r)
		default:
			sb.WriteRune(r)
		}
		i += size
	}
	return sb.String()
}

func hiddenClass(r rune) string {
	switch {
	case isZeroWidth(r):
		return "zero-width"
	case isBidi(r):
		return "bidi"
	case r >= 0xE0001 && r <= 0xE007F:
		return "tag"
	case isControl(r):
		return "control"
	}
	return ""
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u2060', '\u180E', '\u200E', '\u200F':
		return true
	}
	return false
}

func isBidi(r rune) bool {
	return (r >= '\u202A' && r <= '\u202E') || (r >= '\u2066' && r <= '\u2069')
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return r <= 0x1F || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}
