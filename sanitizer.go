package allowhtml

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// stripPolicy allows nothing and suppresses the default raw-text elements.
var stripPolicy = mustPolicy(nil, []string{"script", "style"})

// textEscaper escapes the characters that could turn text back into
// markup. Quotes are left alone: the output is meant for element
// content, never attribute values.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Sanitize applies p to input and returns HTML containing only p's allowed
// tags, without attributes, and escaped text. If p is nil, DefaultPolicy
// is used. Sanitize never fails; malformed markup degrades to text.
func Sanitize(input string, p *Policy) string {
	out, _ := SanitizeReport(input, p)
	return out
}

// SanitizeReport is Sanitize that also reports what was removed.
func SanitizeReport(input string, p *Policy) (string, Report) {
	var sb strings.Builder
	f := sanitizeTo(&sb, input, p, false)
	return sb.String(), f.report
}

// SanitizeBalanced is Sanitize with every allowed element closed. Tags an
// end tag closes implicitly get their own end tags first, and tags still
// open at the end of input are closed there, innermost first. Use it when
// the result is placed next to other markup.
func SanitizeBalanced(input string, p *Policy) string {
	var sb strings.Builder
	f := sanitizeTo(&sb, input, p, true)
	for i := len(f.open) - 1; i >= 0; i-- {
		writeToken(&sb, Token{Type: EndTagToken, Data: f.open[i]})
	}
	return sb.String()
}

func sanitizeTo(sb *strings.Builder, input string, p *Policy, balanced bool) *filter {
	if p == nil {
		p = DefaultPolicy()
	}
	sb.Grow(len(input))

	z := NewTokenizer(input, p)
	f := newFilter(p)
	for {
		t, ok := z.Next()
		if !ok {
			break
		}
		if t, ok = f.apply(t); !ok {
			continue
		}
		if balanced && t.Type == EndTagToken {
			for _, name := range f.implicit {
				writeToken(sb, Token{Type: EndTagToken, Data: name})
			}
		}
		writeToken(sb, t)
	}
	return f
}

// SanitizeReader reads all of r and sanitizes it with p. The only error
// it returns is a read error.
func SanitizeReader(r io.Reader, p *Policy) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return Sanitize(string(b), p), nil
}

// StripTags removes all markup and returns plain text. Script and style
// bodies are dropped and entity references are decoded, so the result
// must be escaped again before it is placed in HTML.
func StripTags(input string) string {
	var sb strings.Builder
	z := NewTokenizer(input, stripPolicy)
	f := newFilter(stripPolicy)
	for {
		t, ok := z.Next()
		if !ok {
			break
		}
		if t, ok = f.apply(t); ok && t.Type == TextToken {
			sb.WriteString(html.UnescapeString(t.Data))
		}
	}
	return sb.String()
}

// writeToken serializes a token that passed the filter.
func writeToken(sb *strings.Builder, t Token) {
	switch t.Type {
	case StartTagToken:
		sb.WriteByte('<')
		sb.WriteString(t.Data)
		sb.WriteByte('>')
	case EndTagToken:
		sb.WriteString("</")
		sb.WriteString(t.Data)
		sb.WriteByte('>')
	case TextToken:
		sb.WriteString(escapeText(t.Data))
	}
}

// escapeText decodes entity references once and escapes the result, so
// "&amp;" stays "&amp;" instead of growing on every pass.
func escapeText(s string) string {
	if strings.IndexByte(s, '&') >= 0 {
		s = html.UnescapeString(s)
	}
	return textEscaper.Replace(s)
}
