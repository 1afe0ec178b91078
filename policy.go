package allowhtml

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidTagName is returned by NewPolicy for a name that is not a
	// letter followed by ASCII letters, digits or hyphens.
	ErrInvalidTagName = errors.New("allowhtml: invalid tag name")

	// ErrTagConflict is returned by NewPolicy when a tag is listed as both
	// allowed and raw text.
	ErrTagConflict = errors.New("allowhtml: tag is both allowed and raw text")
)

// Policy defines which tags survive sanitization. It is immutable once
// built and may be shared between goroutines.
type Policy struct {
	// allowed tags are kept in output with every attribute removed.
	allowed map[string]bool

	// rawText tags switch the tokenizer into raw-text mode. They are never
	// emitted and their body is discarded.
	rawText map[string]bool

	// maxDepth limits how many allowed tags may be open at once. Allowed
	// start tags beyond it are stripped. Zero means unlimited.
	maxDepth int
}

// NewPolicy builds a Policy from the allowed and raw-text tag names.
// Names are case-insensitive. A name may appear in at most one list.
func NewPolicy(allowed, rawText []string) (*Policy, error) {
	p := &Policy{
		allowed: make(map[string]bool, len(allowed)),
		rawText: make(map[string]bool, len(rawText)),
	}
	for _, name := range allowed {
		name = strings.ToLower(name)
		if !validTagName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTagName, name)
		}
		p.allowed[name] = true
	}
	for _, name := range rawText {
		name = strings.ToLower(name)
		if !validTagName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTagName, name)
		}
		if p.allowed[name] {
			return nil, fmt.Errorf("%w: %q", ErrTagConflict, name)
		}
		p.rawText[name] = true
	}
	return p, nil
}

// DefaultPolicy returns the comment policy: <b>, <i> and <u> are allowed
// and <script> and <style> bodies are suppressed.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

var defaultPolicy = mustPolicy([]string{"b", "i", "u"}, []string{"script", "style"})

func mustPolicy(allowed, rawText []string) *Policy {
	p, err := NewPolicy(allowed, rawText)
	if err != nil {
		panic(err)
	}
	return p
}

// WithMaxDepth returns a copy of p that allows at most n nested allowed
// tags. n <= 0 removes the limit.
func (p *Policy) WithMaxDepth(n int) *Policy {
	if n < 0 {
		n = 0
	}
	cp := *p
	cp.maxDepth = n
	return &cp
}

// MaxDepth reports the nesting limit, zero when unlimited.
func (p *Policy) MaxDepth() int { return p.maxDepth }

// AllowedTags returns the allowed tag names in sorted order.
func (p *Policy) AllowedTags() []string { return sortedKeys(p.allowed) }

// RawTextTags returns the raw-text tag names in sorted order.
func (p *Policy) RawTextTags() []string { return sortedKeys(p.rawText) }

// IsAllowed reports whether name (lowercase) survives sanitization.
func (p *Policy) IsAllowed(name string) bool { return p.allowed[name] }

// IsRawText reports whether name (lowercase) is a raw-text element.
func (p *Policy) IsRawText(name string) bool { return p.rawText[name] }

// --- helpers ---------------------------------------------------------

func validTagName(name string) bool {
	if name == "" || !isASCIILetter(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isTagNameByte(name[i]) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func isVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img", "input",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}
