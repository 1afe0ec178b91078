package allowhtml

import "strings"

// Tokenizer splits untrusted text into Tokens one at a time.
//
// In data mode a "<" begins a tag, an end tag or a comment only when it
// is followed by a letter, "/" or "!" and the construct is complete.
// Everything else is text. After a start tag for one of the policy's
// raw-text elements the tokenizer switches to raw-text mode and returns
// the element body as a single TextToken, followed by its EndTagToken.
type Tokenizer struct {
	src    string
	pos    int
	policy *Policy

	// rawTag is the element whose end tag leaves raw-text mode.
	rawTag string

	// pending holds the end tag that closed a raw-text body, returned on
	// the call after the body itself.
	pending *Token
}

// NewTokenizer returns a Tokenizer over src. The policy decides which
// elements are raw text; a nil policy means DefaultPolicy.
func NewTokenizer(src string, p *Policy) *Tokenizer {
	if p == nil {
		p = DefaultPolicy()
	}
	return &Tokenizer{src: src, policy: p}
}

// Next returns the next token. The boolean is false once the input is
// exhausted.
func (z *Tokenizer) Next() (Token, bool) {
	if z.pending != nil {
		t := *z.pending
		z.pending = nil
		return t, true
	}
	if z.rawTag != "" {
		return z.readRawText()
	}
	if z.pos >= len(z.src) {
		return Token{}, false
	}
	if z.src[z.pos] != '<' {
		return z.readText(), true
	}
	return z.readMarkup(), true
}

func (z *Tokenizer) readText() Token {
	end := len(z.src)
	if i := strings.IndexByte(z.src[z.pos:], '<'); i >= 0 {
		end = z.pos + i
	}
	t := Token{Type: TextToken, Data: z.src[z.pos:end]}
	z.pos = end
	return t
}

// readMarkup is called with z.pos on a "<".
func (z *Tokenizer) readMarkup() Token {
	start := z.pos
	var (
		t   Token
		end int
		ok  bool
	)
	if next := start + 1; next < len(z.src) {
		switch c := z.src[next]; {
		case isASCIILetter(c):
			t, end, ok = z.parseTag(next, StartTagToken)
		case c == '/':
			if next+1 < len(z.src) && isASCIILetter(z.src[next+1]) {
				t, end, ok = z.parseTag(next+1, EndTagToken)
			}
		case c == '!':
			t, end, ok = z.parseDeclaration(start)
		}
	}
	if !ok {
		z.pos = start + 1
		return Token{Type: MalformedToken, Data: "<"}
	}
	z.pos = end
	if t.Type == StartTagToken && !t.SelfClosing && z.policy.IsRawText(t.Data) {
		z.rawTag = t.Data
	}
	return t
}

// parseTag reads a tag whose name starts at i. It returns the offset just
// past the closing ">", or ok=false when the tag is not complete. It never
// reads beyond the next "<".
func (z *Tokenizer) parseTag(i int, typ TokenType) (t Token, end int, ok bool) {
	src, n := z.src, len(z.src)

	j := i
	for j < n && isTagNameByte(src[j]) {
		j++
	}
	t = Token{Type: typ, Data: toLowerASCII(src[i:j])}

	for i = j; ; {
		i = skipSpace(src, i)
		if i >= n {
			return Token{}, 0, false
		}
		switch src[i] {
		case '>':
			return t, i + 1, true
		case '<':
			return Token{}, 0, false
		case '/':
			if i+1 < n && src[i+1] == '>' {
				t.SelfClosing = true
				return t, i + 2, true
			}
			i++
			continue
		}

		// The first byte is always part of the name so that a stray "="
		// cannot stall the loop.
		k := i + 1
		for k < n && !isSpace(src[k]) && !strings.ContainsRune("/>=<", rune(src[k])) {
			k++
		}
		attr := Attribute{Key: toLowerASCII(src[i:k])}

		i = skipSpace(src, k)
		if i < n && src[i] == '=' {
			i = skipSpace(src, i+1)
			if i >= n {
				return Token{}, 0, false
			}
			switch q := src[i]; q {
			case '"', '\'':
				// A "<" inside quotes fails the tag, so a failed scan
				// stops at the next "<".
				closeAt := strings.IndexAny(src[i+1:], string(q)+"<")
				if closeAt < 0 || src[i+1+closeAt] == '<' {
					return Token{}, 0, false
				}
				attr.Val = src[i+1 : i+1+closeAt]
				i += closeAt + 2
			case '>':
				// <b title=> has an empty value.
			default:
				k = i
				for k < n && !isSpace(src[k]) && src[k] != '>' {
					if src[k] == '<' {
						return Token{}, 0, false
					}
					k++
				}
				attr.Val = src[i:k]
				i = k
			}
		}
		t.Attr = append(t.Attr, attr)
	}
}

// parseDeclaration reads "<!--...-->" or "<!...>" starting at the "<".
func (z *Tokenizer) parseDeclaration(start int) (Token, int, bool) {
	src := z.src
	comment := Token{Type: CommentToken}

	if strings.HasPrefix(src[start:], "<!--") {
		body := start + len("<!--")
		if i := strings.Index(src[body:], "-->"); i >= 0 {
			return comment, body + i + len("-->"), true
		}
		return comment, len(src), true
	}
	for k := start + 2; k < len(src); k++ {
		switch src[k] {
		case '>':
			return comment, k + 1, true
		case '<':
			return Token{}, 0, false
		}
	}
	return Token{}, 0, false
}

func (z *Tokenizer) readRawText() (Token, bool) {
	name := z.rawTag
	z.rawTag = ""

	start, end := findRawTextEnd(z.src, z.pos, name)
	if start < 0 {
		body := z.src[z.pos:]
		z.pos = len(z.src)
		if body == "" {
			return Token{}, false
		}
		return Token{Type: TextToken, Data: body}, true
	}

	body := z.src[z.pos:start]
	z.pos = end
	closing := Token{Type: EndTagToken, Data: name}
	if body == "" {
		return closing, true
	}
	z.pending = &closing
	return Token{Type: TextToken, Data: body}, true
}

// findRawTextEnd locates "</name" followed by optional whitespace and ">",
// matching name case-insensitively. It returns the offsets of the "<" and
// just past the ">", or -1, -1.
func findRawTextEnd(src string, from int, name string) (int, int) {
	for i := from; ; i += 2 {
		k := strings.Index(src[i:], "</")
		if k < 0 {
			return -1, -1
		}
		i += k
		j := i + 2
		if hasPrefixFoldASCII(src[j:], name) {
			j = skipSpace(src, j+len(name))
			if j < len(src) && src[j] == '>' {
				return i, j + 1
			}
		}
	}
}

// --- helpers ---------------------------------------------------------

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isTagNameByte(c byte) bool {
	return isASCIILetter(c) || '0' <= c && c <= '9' || c == '-'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func toLowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// hasPrefixFoldASCII reports whether s begins with prefix, ignoring ASCII
// case only. prefix must be lowercase.
func hasPrefixFoldASCII(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != prefix[i] {
			return false
		}
	}
	return true
}
