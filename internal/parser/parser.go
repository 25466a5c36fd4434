// Package parser builds the node tree from the scanner's token stream and
// classifies element attributes into their five categories. Parsing is
// lenient: a stray closing tag is dropped, and tags left open at the end of
// input are closed implicitly. There is no way to make it fail.
package parser

import (
	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/scanner"
)

// voidElements never take children; their open tag closes them.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Parser consumes one token stream. A Parser is single-use and owned by one
// compilation call.
type Parser struct {
	tokens   []scanner.Token
	pos      int
	warnings *diag.Collector
}

// New creates a parser over tokens. The collector receives recovery
// diagnostics; it must not be nil.
func New(tokens []scanner.Token, warnings *diag.Collector) *Parser {
	return &Parser{tokens: tokens, warnings: warnings}
}

// Parse builds the document tree from source text, scanning and parsing in
// one call.
func Parse(source string, warnings *diag.Collector) *ast.Document {
	tokens := scanner.New(source, warnings).Scan()
	return New(tokens, warnings).Parse()
}

// Parse consumes the token stream and returns the document. Nested
// same-name tags are matched through the open-element stack: a closing tag
// always binds to the nearest open element with its name.
func (p *Parser) Parse() *ast.Document {
	doc := &ast.Document{}

	// The open-element stack; appendTo targets the innermost open element
	// or the document itself.
	var stack []*ast.Element
	appendTo := func(n ast.Node) {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, n)
			return
		}
		doc.Children = append(doc.Children, n)
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case scanner.TokenText:
			appendTo(&ast.Text{Content: tok.Text, Loc: tok.Loc})
			p.pos++
		case scanner.TokenInterpolation:
			appendTo(&ast.Interpolation{Expression: tok.Text, Loc: tok.Loc})
			p.pos++
		case scanner.TokenComment:
			appendTo(&ast.Comment{Content: tok.Text, Loc: tok.Loc})
			p.pos++
		case scanner.TokenTagOpen:
			el, open := p.parseElement()
			appendTo(el)
			if open {
				stack = append(stack, el)
			}
		case scanner.TokenEndTagOpen:
			p.parseEndTag(&stack)
		default:
			// EOF or a token out of place; out-of-place tokens are the
			// scanner's recovery artifacts and carry nothing to keep.
			p.pos++
		}
	}

	// Tags still open at the end of input close implicitly. A childless
	// leftover behaves exactly like a self-closing element.
	for _, el := range stack {
		p.warnings.Addf(diag.CodeUnclosedTag, locPtr(el.Loc), "<%s> is never closed", el.TagName)
		if len(el.Children) == 0 {
			el.SelfClosing = true
		}
	}

	return doc
}

// parseElement consumes an open tag and its attributes. The second return
// is true when the element expects children (not self-closed, not void).
func (p *Parser) parseElement() (*ast.Element, bool) {
	openLoc := p.tokens[p.pos].Loc
	p.pos++ // "<"

	el := &ast.Element{Loc: openLoc}
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == scanner.TokenTagName {
		el.TagName = p.tokens[p.pos].Text
		p.pos++
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case scanner.TokenAttrName:
			p.pos++
			var value *string
			if p.peekKind() == scanner.TokenEquals {
				p.pos++
				if p.peekKind() == scanner.TokenAttrValue {
					v := p.tokens[p.pos].Text
					value = &v
					p.pos++
				}
			}
			apply(el, Classify(tok.Text), value, tok.Loc)
		case scanner.TokenSelfClose:
			p.pos++
			el.SelfClosing = true
			return el, false
		case scanner.TokenTagClose:
			p.pos++
			if voidElements[el.TagName] {
				el.SelfClosing = true
				return el, false
			}
			return el, true
		default:
			// Recovery artifact inside a tag; treat the tag as closed.
			return el, true
		}
	}
	return el, false
}

// parseEndTag consumes "</name>" and pops the stack down to the matching
// element. Elements skipped over on the way close implicitly; a close with
// no matching open is dropped.
func (p *Parser) parseEndTag(stack *[]*ast.Element) {
	loc := p.tokens[p.pos].Loc
	p.pos++ // "</"

	name := ""
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == scanner.TokenTagName {
		name = p.tokens[p.pos].Text
		p.pos++
	}
	if p.pos < len(p.tokens) && p.tokens[p.pos].Kind == scanner.TokenTagClose {
		p.pos++
	}

	s := *stack
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].TagName == name {
			for j := len(s) - 1; j > i; j-- {
				p.warnings.Addf(diag.CodeUnclosedTag, locPtr(s[j].Loc), "<%s> closed implicitly by </%s>", s[j].TagName, name)
			}
			*stack = s[:i]
			return
		}
	}
	p.warnings.Addf(diag.CodeStrayCloseTag, locPtr(loc), "</%s> has no matching open tag", name)
}

func (p *Parser) peekKind() scanner.TokenKind {
	if p.pos >= len(p.tokens) {
		return scanner.TokenEOF
	}
	return p.tokens[p.pos].Kind
}

func locPtr(l ast.SourceLocation) *ast.SourceLocation {
	return &l
}
