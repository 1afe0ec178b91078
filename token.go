package allowhtml

// TokenType is the kind of a Token.
type TokenType int

const (
	// StartTagToken looks like <b title="x">.
	StartTagToken TokenType = iota + 1
	// EndTagToken looks like </b>.
	EndTagToken
	// TextToken is a run of literal text.
	TextToken
	// CommentToken is <!-- ... --> or a <!...> declaration. Its content is
	// never kept.
	CommentToken
	// MalformedToken is a "<" that does not open a complete construct.
	MalformedToken
)

func (t TokenType) String() string {
	switch t {
	case StartTagToken:
		return "StartTag"
	case EndTagToken:
		return "EndTag"
	case TextToken:
		return "Text"
	case CommentToken:
		return "Comment"
	case MalformedToken:
		return "Malformed"
	}
	return "Invalid"
}

// Attribute is a name/value pair parsed from a tag. Attributes never
// reach the output.
type Attribute struct {
	Key, Val string
}

// Token is one lexical unit produced by a Tokenizer.
//
// For tags, Data is the lowercased tag name. For text and malformed
// tokens it is the source text, still entity-encoded. Comments carry no
// data.
type Token struct {
	Type        TokenType
	Data        string
	Attr        []Attribute
	SelfClosing bool
}

// String renders the token the way the serializer would for tags, and as
// the raw data otherwise. It is meant for debugging and test output.
func (t Token) String() string {
	switch t.Type {
	case StartTagToken:
		return "<" + t.Data + ">"
	case EndTagToken:
		return "</" + t.Data + ">"
	case CommentToken:
		return "<!---->"
	}
	return t.Data
}
