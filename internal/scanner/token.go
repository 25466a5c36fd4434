package scanner

import "github.com/sigil-lang/sigil/internal/ast"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenTagOpen       TokenKind = iota // "<"
	TokenTagClose                       // ">"
	TokenSelfClose                      // "/>"
	TokenEndTagOpen                     // "</"
	TokenTagName                        // element name after "<" or "</"
	TokenAttrName                       // attribute name, including [x], (x), [(x)], *x, #x shells
	TokenEquals                         // "="
	TokenAttrValue                      // attribute value with quotes stripped
	TokenText                           // character data between tags
	TokenInterpolation                  // expression inside "{{ }}", trimmed
	TokenComment                        // comment body without the markers
	TokenEOF
)

// String returns a short name for the token kind, used in diagnostics and
// test failure output.
func (k TokenKind) String() string {
	switch k {
	case TokenTagOpen:
		return "tag-open"
	case TokenTagClose:
		return "tag-close"
	case TokenSelfClose:
		return "self-close"
	case TokenEndTagOpen:
		return "end-tag-open"
	case TokenTagName:
		return "tag-name"
	case TokenAttrName:
		return "attr-name"
	case TokenEquals:
		return "equals"
	case TokenAttrValue:
		return "attr-value"
	case TokenText:
		return "text"
	case TokenInterpolation:
		return "interpolation"
	case TokenComment:
		return "comment"
	case TokenEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a template. Every non-EOF token spans a
// non-empty source range; tokens are produced in source order.
type Token struct {
	Kind TokenKind
	Text string
	Loc  ast.SourceLocation
}
