package allowhtml

// Report counts what a sanitization pass removed or rewrote.
type Report struct {
	// StrippedTags counts start and end tags dropped from the output,
	// including raw-text elements.
	StrippedTags int `json:"stripped_tags"`
	// StrippedAttributes counts attributes removed from any tag.
	StrippedAttributes int `json:"stripped_attributes"`
	// SuppressedElements counts raw-text elements whose body was discarded.
	SuppressedElements int `json:"suppressed_elements"`
	// Comments counts comments and declarations dropped.
	Comments int `json:"comments"`
	// Malformed counts "<" characters that did not open a complete construct.
	Malformed int `json:"malformed"`
}

// Changed reports whether anything other than text escaping happened.
func (r Report) Changed() bool {
	return r.StrippedTags+r.StrippedAttributes+r.SuppressedElements+r.Comments+r.Malformed > 0
}

// filter applies a Policy to a token stream. It holds the stack of open
// allowed tags and the raw-text element currently being suppressed.
type filter struct {
	policy   *Policy
	open     []string
	suppress string
	report   Report

	// implicit holds the open tags, innermost first, that the last
	// emitted end tag closed without their own end tag.
	implicit []string
}

func newFilter(p *Policy) *filter {
	return &filter{policy: p}
}

// apply returns the token to serialize, or false when t is dropped.
func (f *filter) apply(t Token) (Token, bool) {
	f.report.StrippedAttributes += len(t.Attr)

	if f.suppress != "" {
		if t.Type == EndTagToken && t.Data == f.suppress {
			f.suppress = ""
		}
		if t.Type == StartTagToken || t.Type == EndTagToken {
			f.report.StrippedTags++
		}
		return Token{}, false
	}

	switch t.Type {
	case StartTagToken:
		return f.startTag(t)
	case EndTagToken:
		return f.endTag(t)
	case TextToken:
		return t, true
	case MalformedToken:
		f.report.Malformed++
		return Token{Type: TextToken, Data: t.Data}, true
	case CommentToken:
		f.report.Comments++
	}
	return Token{}, false
}

func (f *filter) startTag(t Token) (Token, bool) {
	name := t.Data
	switch {
	case f.policy.IsAllowed(name):
		if f.policy.maxDepth > 0 && len(f.open) >= f.policy.maxDepth {
			f.report.StrippedTags++
			return Token{}, false
		}
		if !isVoidElement(name) {
			f.open = append(f.open, name)
		}
		return Token{Type: StartTagToken, Data: name}, true
	case f.policy.IsRawText(name):
		f.report.StrippedTags++
		if !t.SelfClosing {
			f.suppress = name
			f.report.SuppressedElements++
		}
		return Token{}, false
	}
	f.report.StrippedTags++
	return Token{}, false
}

func (f *filter) endTag(t Token) (Token, bool) {
	name := t.Data
	if f.policy.IsAllowed(name) {
		for i := len(f.open) - 1; i >= 0; i-- {
			if f.open[i] == name {
				f.implicit = f.implicit[:0]
				for j := len(f.open) - 1; j > i; j-- {
					f.implicit = append(f.implicit, f.open[j])
				}
				f.open = f.open[:i]
				return Token{Type: EndTagToken, Data: name}, true
			}
		}
	}
	f.report.StrippedTags++
	return Token{}, false
}
