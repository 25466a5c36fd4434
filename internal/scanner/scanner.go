// Package scanner turns a raw template string into a flat token stream. It
// is an explicit state machine over the source bytes: structural characters
// are all ASCII, so multi-byte text passes through untouched inside text,
// value, and interpolation tokens.
//
// The scanner never fails. Malformed input (an unterminated quote, a stray
// "<", a comment without its terminator) is recovered locally: the offending
// run is emitted as the nearest sensible token and a diagnostic is recorded
// on the collector.
package scanner

import (
	"strings"

	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
)

type state int

const (
	stateData state = iota
	stateBeforeAttrName
	stateEndTag
)

// Scanner tokenizes one template string. A Scanner is single-use and owned
// by one compilation call.
type Scanner struct {
	src      string
	pos      int
	line     int
	col      int
	warnings *diag.Collector

	tokens []Token

	// token start bookkeeping
	startPos  int
	startLine int
	startCol  int
}

// New creates a scanner over source. The collector receives recovery
// diagnostics; it must not be nil.
func New(source string, warnings *diag.Collector) *Scanner {
	return &Scanner{
		src:      source,
		line:     1,
		col:      1,
		warnings: warnings,
	}
}

// Scan consumes the whole source and returns the token stream, terminated by
// a single EOF token.
func (s *Scanner) Scan() []Token {
	st := stateData
	for !s.eof() {
		switch st {
		case stateData:
			st = s.scanData()
		case stateBeforeAttrName:
			st = s.scanBeforeAttrName()
		case stateEndTag:
			st = s.scanEndTag()
		}
	}
	if st != stateData {
		// Input ran out mid-tag; close it implicitly so the parser
		// sees a complete open tag.
		s.warnings.Add(diag.CodeUnclosedTag, "template ended inside a tag, closing implicitly", s.locPtr())
		s.mark()
		s.emit(TokenTagClose, ">")
	}
	s.mark()
	s.tokens = append(s.tokens, Token{Kind: TokenEOF, Loc: s.loc()})
	return s.tokens
}

func (s *Scanner) eof() bool { return s.pos >= len(s.src) }

func (s *Scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *Scanner) peekAt(offset int) byte {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *Scanner) advance() byte {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *Scanner) advanceBy(n int) {
	for i := 0; i < n && !s.eof(); i++ {
		s.advance()
	}
}

// mark records the start of the token being scanned.
func (s *Scanner) mark() {
	s.startPos = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

func (s *Scanner) loc() ast.SourceLocation {
	return ast.SourceLocation{
		Line:        s.startLine,
		Column:      s.startCol,
		StartOffset: s.startPos,
		EndOffset:   s.pos,
	}
}

func (s *Scanner) emit(kind TokenKind, text string) {
	s.tokens = append(s.tokens, Token{Kind: kind, Text: text, Loc: s.loc()})
}

func (s *Scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.src[s.pos:], p)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isTagNameStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isTagNameChar(ch byte) bool {
	return isTagNameStart(ch) || ch >= '0' && ch <= '9' || ch == '-' || ch == ':' || ch == '_'
}

// scanData handles character data, interpolations, and the transitions into
// tags and comments.
func (s *Scanner) scanData() state {
	switch {
	case s.hasPrefix("<!--"):
		s.scanComment()
		return stateData
	case s.hasPrefix("<!"):
		// Doctype and other declarations are preserved as comments.
		s.scanDeclaration()
		return stateData
	case s.hasPrefix("</"):
		s.mark()
		s.advanceBy(2)
		s.emit(TokenEndTagOpen, "</")
		return stateEndTag
	case s.peek() == '<' && isTagNameStart(s.peekAt(1)):
		s.mark()
		s.advance()
		s.emit(TokenTagOpen, "<")
		s.scanTagName()
		return stateBeforeAttrName
	case s.hasPrefix("{{"):
		s.scanInterpolation()
		return stateData
	default:
		s.scanText()
		return stateData
	}
}

// scanText consumes character data up to the next tag, comment, or
// interpolation start. A "<" that does not open anything is swallowed into
// the text run as a plain character.
func (s *Scanner) scanText() {
	s.mark()
	var b strings.Builder
	for !s.eof() {
		if s.hasPrefix("{{") || s.hasPrefix("</") || s.hasPrefix("<!") {
			break
		}
		if s.peek() == '<' && isTagNameStart(s.peekAt(1)) {
			break
		}
		b.WriteByte(s.advance())
	}
	if b.Len() > 0 {
		s.emit(TokenText, b.String())
	}
}

// scanInterpolation consumes a "{{ ... }}" span, counting nested brace pairs
// so an object literal inside the expression does not end it early.
func (s *Scanner) scanInterpolation() {
	s.mark()
	s.advanceBy(2)
	depth := 1
	var b strings.Builder
	for !s.eof() {
		if s.hasPrefix("{{") {
			depth++
			b.WriteString("{{")
			s.advanceBy(2)
			continue
		}
		if s.hasPrefix("}}") {
			depth--
			s.advanceBy(2)
			if depth == 0 {
				break
			}
			b.WriteString("}}")
			continue
		}
		b.WriteByte(s.advance())
	}
	s.emit(TokenInterpolation, strings.TrimSpace(b.String()))
}

func (s *Scanner) scanComment() {
	s.mark()
	s.advanceBy(4) // <!--
	var b strings.Builder
	for !s.eof() && !s.hasPrefix("-->") {
		b.WriteByte(s.advance())
	}
	s.advanceBy(3)
	s.emit(TokenComment, strings.TrimSpace(b.String()))
}

// scanDeclaration consumes "<!" up to ">" and emits it as a comment.
func (s *Scanner) scanDeclaration() {
	s.mark()
	s.advanceBy(2)
	var b strings.Builder
	for !s.eof() && s.peek() != '>' {
		b.WriteByte(s.advance())
	}
	if !s.eof() {
		s.advance()
	}
	s.emit(TokenComment, strings.TrimSpace(b.String()))
}

func (s *Scanner) scanTagName() {
	s.mark()
	var b strings.Builder
	for !s.eof() && isTagNameChar(s.peek()) {
		b.WriteByte(s.advance())
	}
	s.emit(TokenTagName, b.String())
}

// scanBeforeAttrName is the inside-a-tag dispatcher: it skips whitespace and
// routes to attribute names, the tag-close tokens, or recovery.
func (s *Scanner) scanBeforeAttrName() state {
	for !s.eof() && isWhitespace(s.peek()) {
		s.advance()
	}
	if s.eof() {
		s.warnings.Add(diag.CodeUnclosedTag, "template ended inside a tag, closing implicitly", s.locPtr())
		s.mark()
		s.emit(TokenTagClose, ">")
		return stateData
	}
	switch {
	case s.hasPrefix("/>"):
		s.mark()
		s.advanceBy(2)
		s.emit(TokenSelfClose, "/>")
		return stateData
	case s.peek() == '>':
		s.mark()
		s.advance()
		s.emit(TokenTagClose, ">")
		return stateData
	case s.peek() == '/':
		// A lone slash inside a tag carries no meaning; skip it.
		s.advance()
		return stateBeforeAttrName
	case s.peek() == '<':
		// Stray "<" inside a tag: close the current tag implicitly and
		// re-scan the "<" from data state.
		s.warnings.Add(diag.CodeUnclosedTag, "unexpected '<' inside a tag, closing implicitly", s.locPtr())
		s.mark()
		s.emit(TokenTagClose, ">")
		return stateData
	default:
		s.scanAttrName()
		return s.scanAfterAttrName()
	}
}

// scanAttrName consumes an attribute name, tracking bracket and parenthesis
// depth so binding shells like [(value)], [class.active], and (click) are
// captured whole.
func (s *Scanner) scanAttrName() {
	s.mark()
	depth := 0
	var b strings.Builder
	for !s.eof() {
		ch := s.peek()
		if depth == 0 && (isWhitespace(ch) || ch == '=' || ch == '>' || (ch == '/' && s.peekAt(1) == '>')) {
			break
		}
		switch ch {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		}
		b.WriteByte(s.advance())
	}
	s.emit(TokenAttrName, b.String())
}

func (s *Scanner) scanAfterAttrName() state {
	for !s.eof() && isWhitespace(s.peek()) {
		s.advance()
	}
	if s.eof() || s.peek() != '=' {
		// Boolean attribute; the dispatcher decides what comes next.
		return stateBeforeAttrName
	}
	s.mark()
	s.advance()
	s.emit(TokenEquals, "=")
	for !s.eof() && isWhitespace(s.peek()) {
		s.advance()
	}
	if s.eof() {
		return stateBeforeAttrName
	}
	if s.peek() == '"' || s.peek() == '\'' {
		s.scanQuotedValue(s.peek())
	} else {
		s.scanUnquotedValue()
	}
	return stateBeforeAttrName
}

// scanQuotedValue consumes a value delimited by quote. The other quote
// character and `>` are ordinary content inside the value. An unterminated
// value runs to the end of the source and is recovered with a diagnostic.
func (s *Scanner) scanQuotedValue(quote byte) {
	s.advance() // opening quote
	s.mark()
	var b strings.Builder
	for !s.eof() {
		if s.peek() == quote {
			s.emit(TokenAttrValue, b.String())
			s.advance()
			return
		}
		b.WriteByte(s.advance())
	}
	s.emit(TokenAttrValue, b.String())
	s.warnings.Add(diag.CodeUnterminatedQuote, "attribute value is missing its closing quote", s.locPtr())
}

func (s *Scanner) scanUnquotedValue() {
	s.mark()
	var b strings.Builder
	for !s.eof() {
		ch := s.peek()
		if isWhitespace(ch) || ch == '>' || (ch == '/' && s.peekAt(1) == '>') {
			break
		}
		b.WriteByte(s.advance())
	}
	s.emit(TokenAttrValue, b.String())
}

// scanEndTag consumes the name and ">" of a closing tag. Anything unexpected
// before the ">" is skipped.
func (s *Scanner) scanEndTag() state {
	s.scanTagName()
	for !s.eof() && s.peek() != '>' {
		s.advance()
	}
	s.mark()
	if !s.eof() {
		s.advance()
	}
	s.emit(TokenTagClose, ">")
	return stateData
}

func (s *Scanner) locPtr() *ast.SourceLocation {
	l := ast.SourceLocation{Line: s.line, Column: s.col, StartOffset: s.pos, EndOffset: s.pos + 1}
	return &l
}
