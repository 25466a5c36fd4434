// Package audit runs static checks over template files before they are
// compiled: missing alt text, form controls without labels, and bindings
// that target dangerous DOM sinks. Checks operate on a lenient HTML token
// stream so they still report on templates the strict pipeline would warn
// about.
package audit

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
)

// dangerousSinks mirrors the binding transformer's list so the audit
// reports the same set without compiling.
var dangerousSinks = map[string]bool{
	"innerHTML":          true,
	"outerHTML":          true,
	"srcdoc":             true,
	"insertAdjacentHTML": true,
}

// labelable form controls that need an accessible name.
var labelableControls = map[string]bool{
	"input":    true,
	"select":   true,
	"textarea": true,
}

// Check is a single audit rule.
type Check interface {
	Name() string
	Run(doc *tokenDoc) []diag.Warning
}

// tokenDoc is the shared token view each check walks.
type tokenDoc struct {
	tokens []tagToken
}

// tagToken is one tag or text run. Text runs have an empty name and carry
// their content in text.
type tagToken struct {
	name  string
	attrs map[string]string
	text  string
	line  int
	self  bool
	end   bool
}

// Engine runs all registered checks over a template.
type Engine struct {
	checks []Check
}

// NewEngine returns an engine with the default rule set.
func NewEngine() *Engine {
	return &Engine{checks: []Check{
		altTextCheck{},
		labeledControlCheck{},
		buttonLabelCheck{},
		dangerousSinkCheck{},
	}}
}

// AddCheck registers an extra rule.
func (e *Engine) AddCheck(c Check) {
	e.checks = append(e.checks, c)
}

// Audit tokenizes source and runs every check, returning the combined
// findings in rule order.
func (e *Engine) Audit(source string) []diag.Warning {
	doc := tokenize(source)
	var all []diag.Warning
	for _, check := range e.checks {
		all = append(all, check.Run(doc)...)
	}
	return all
}

// tokenize walks the source with a lenient tokenizer, tracking line
// numbers by offset so findings point somewhere useful.
func tokenize(source string) *tokenDoc {
	z := html.NewTokenizer(strings.NewReader(source))
	doc := &tokenDoc{}
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return doc
		}
		raw := string(z.Raw())
		line := 1 + strings.Count(source[:min(offset, len(source))], "\n")
		offset += len(raw)

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			attrs := make(map[string]string, len(tok.Attr))
			for _, a := range tok.Attr {
				attrs[a.Key] = a.Val
			}
			doc.tokens = append(doc.tokens, tagToken{
				name:  tok.Data,
				attrs: attrs,
				line:  line,
				self:  tt == html.SelfClosingTagToken,
			})
		case html.EndTagToken:
			tok := z.Token()
			doc.tokens = append(doc.tokens, tagToken{name: tok.Data, line: line, end: true})
		case html.TextToken:
			doc.tokens = append(doc.tokens, tagToken{text: string(z.Text()), line: line})
		}
	}
}

type altTextCheck struct{}

func (altTextCheck) Name() string { return "alt-text" }

func (altTextCheck) Run(doc *tokenDoc) []diag.Warning {
	var out []diag.Warning
	for _, tok := range doc.tokens {
		if tok.end || tok.name != "img" {
			continue
		}
		if _, ok := tok.attrs["alt"]; ok {
			continue
		}
		// A bound alt counts. The tokenizer lowercases attribute
		// names, so the bracket form survives as-is.
		if _, ok := tok.attrs["[alt]"]; ok {
			continue
		}
		out = append(out, warning(diag.CodeMissingAlt,
			"<img> without alt text", tok.line))
	}
	return out
}

type labeledControlCheck struct{}

func (labeledControlCheck) Name() string { return "labeled-control" }

func (labeledControlCheck) Run(doc *tokenDoc) []diag.Warning {
	// Collect the ids every <label for> points at, then flag controls
	// that are neither referenced nor wrapped in a label.
	labeledIDs := make(map[string]bool)
	for _, tok := range doc.tokens {
		if !tok.end && tok.name == "label" {
			if id := tok.attrs["for"]; id != "" {
				labeledIDs[id] = true
			}
		}
	}

	var out []diag.Warning
	labelDepth := 0
	for _, tok := range doc.tokens {
		if tok.name == "label" {
			if tok.end {
				labelDepth--
			} else if !tok.self {
				labelDepth++
			}
			continue
		}
		if tok.end || !labelableControls[tok.name] {
			continue
		}
		if tok.name == "input" && tok.attrs["type"] == "hidden" {
			continue
		}
		if labelDepth > 0 || labeledIDs[tok.attrs["id"]] && tok.attrs["id"] != "" {
			continue
		}
		if tok.attrs["aria-label"] != "" || tok.attrs["aria-labelledby"] != "" {
			continue
		}
		out = append(out, warning(diag.CodeUnlabeledControl,
			"<"+tok.name+"> has no associated label", tok.line))
	}
	return out
}

type buttonLabelCheck struct{}

func (buttonLabelCheck) Name() string { return "button-label" }

// Run flags buttons with no accessible name: no text content, no
// aria-label, and no image child carrying alt text.
func (buttonLabelCheck) Run(doc *tokenDoc) []diag.Warning {
	var out []diag.Warning
	for i := 0; i < len(doc.tokens); i++ {
		tok := doc.tokens[i]
		if tok.end || tok.name != "button" {
			continue
		}
		if tok.attrs["aria-label"] != "" || tok.attrs["aria-labelledby"] != "" {
			continue
		}

		named := false
		depth := 1
		for j := i + 1; j < len(doc.tokens) && depth > 0; j++ {
			inner := doc.tokens[j]
			switch {
			case inner.name == "button":
				if inner.end {
					depth--
				} else if !inner.self {
					depth++
				}
			case inner.name == "" && strings.TrimSpace(inner.text) != "":
				named = true
			case inner.name == "img" && !inner.end && inner.attrs["alt"] != "":
				named = true
			}
		}
		if !named {
			out = append(out, warning(diag.CodeUnlabeledControl,
				"<button> has no accessible name", tok.line))
		}
	}
	return out
}

type dangerousSinkCheck struct{}

func (dangerousSinkCheck) Name() string { return "dangerous-sink" }

func (dangerousSinkCheck) Run(doc *tokenDoc) []diag.Warning {
	var out []diag.Warning
	for _, tok := range doc.tokens {
		if tok.end {
			continue
		}
		for key := range tok.attrs {
			if len(key) < 3 || key[0] != '[' || key[len(key)-1] != ']' {
				continue
			}
			name := key[1 : len(key)-1]
			for sink := range dangerousSinks {
				if strings.EqualFold(name, sink) {
					out = append(out, warning(diag.CodeDangerousSink,
						"binding to "+sink+" renders unsanitized markup", tok.line))
				}
			}
		}
	}
	return out
}

func warning(code, message string, line int) diag.Warning {
	return diag.Warning{
		Level:    diag.LevelWarning,
		Code:     code,
		Message:  message,
		Location: &ast.SourceLocation{Line: line, Column: 1},
	}
}
