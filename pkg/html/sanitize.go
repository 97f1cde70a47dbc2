package html

import (
	"fmt"
	"strings"
)

// Sanitized is a string that is safe to emit as HTML. Values are produced by
// Escape, Injectf, or DangerouslySkipEscape; user code cannot mark a string
// as safe by accident because the inner field is unexported.
type Sanitized struct {
	value string
	valid bool
}

// DangerouslySkipEscape marks s as already-sanitized HTML. The caller vouches
// that s contains no unescaped untrusted input.
func DangerouslySkipEscape(s string) Sanitized {
	return Sanitized{value: s, valid: true}
}

// Escape escapes s for safe inclusion in HTML content and marks the result
// as sanitized.
func Escape(s string) Sanitized {
	return Sanitized{value: escapeHTML(s), valid: true}
}

// Injectf builds a Sanitized document from a format string. Sanitized
// arguments are injected verbatim; all other arguments are stringified and
// escaped first.
func Injectf(format string, args ...any) Sanitized {
	escaped := make([]any, len(args))
	for i, arg := range args {
		if s, ok := arg.(Sanitized); ok {
			escaped[i] = s.value
		} else {
			escaped[i] = escapeHTML(fmt.Sprint(arg))
		}
	}
	return Sanitized{value: fmt.Sprintf(format, escaped...), valid: true}
}

// String returns the underlying HTML.
func (s Sanitized) String() string {
	return s.value
}

// IsZero reports whether s was produced by this package. A zero Sanitized
// (for example from an uninitialized struct field) is not a valid document.
func (s Sanitized) IsZero() bool {
	return !s.valid
}

// escapeHTML escapes text for safe inclusion in HTML content. It converts
// special characters to their HTML entity equivalents to prevent XSS.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in HTML attribute values.
// In addition to the standard HTML entities, it escapes whitespace
// characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
