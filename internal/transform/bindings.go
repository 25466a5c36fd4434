package transform

import (
	"fmt"
	"strings"

	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
)

// dangerousSinks are binding targets that inject raw markup; binding into
// them draws a diagnostic but is still emitted.
var dangerousSinks = map[string]bool{
	"innerhtml":          true,
	"outerhtml":          true,
	"srcdoc":             true,
	"insertadjacenthtml": true,
}

// mergeClassAttr folds the static class attribute and every class binding
// into a single className attribute. Multiple [class.x] bindings become one
// concatenated expression; a literal "true" condition degenerates into an
// unconditional class name. Returns "" when the element has no class
// information at all.
func (t *Transformer) mergeClassAttr(el *ast.Element) string {
	staticClasses := []string{}
	for _, a := range el.Attributes {
		if a.Name == "class" && a.Value != nil {
			staticClasses = append(staticClasses, strings.Fields(*a.Value)...)
		}
	}

	whole := ""
	type segment struct {
		cond string
		name string
	}
	var segments []segment
	for _, b := range el.Bindings {
		switch b.Target {
		case ast.BindClass:
			cond := strings.TrimSpace(b.Expression)
			if cond == "" {
				t.warnings.Addf(diag.CodeEmptyBinding, locPtr(b.Loc), "[class.%s] has an empty expression", b.Detail)
				continue
			}
			if cond == "true" {
				staticClasses = append(staticClasses, b.Detail)
				continue
			}
			segments = append(segments, segment{cond: t.rewriteExpr(cond, locPtr(b.Loc)), name: b.Detail})
		case ast.BindProperty:
			if b.Name == "class" {
				whole = t.rewriteExpr(b.Expression, locPtr(b.Loc))
			}
		}
	}

	static := strings.Join(staticClasses, " ")
	if whole == "" && len(segments) == 0 {
		if static == "" {
			return ""
		}
		return fmt.Sprintf("className=%q", static)
	}

	var terms []string
	switch {
	case static != "" && whole != "":
		terms = append(terms, fmt.Sprintf("%q + (%s)", static+" ", whole))
	case static != "":
		terms = append(terms, fmt.Sprintf("%q", static))
	case whole != "":
		terms = append(terms, "("+whole+")")
	}

	for _, seg := range segments {
		name := seg.name
		// A space separates concatenated segments, but never leads the
		// first piece of the class string.
		if len(terms) > 0 {
			name = " " + name
		}
		terms = append(terms, fmt.Sprintf("(%s ? %q : \"\")", seg.cond, name))
	}

	return fmt.Sprintf("className={%s}", strings.Join(terms, " + "))
}

// mergeStyleAttr folds style bindings into one object-literal style
// attribute. Kebab-case property names are camel-cased, and a unit suffix
// on the binding name wraps the value so the unit is appended when the
// expression is evaluated.
func (t *Transformer) mergeStyleAttr(el *ast.Element) string {
	whole := ""
	var entries []string
	for _, b := range el.Bindings {
		switch b.Target {
		case ast.BindStyle:
			expr := strings.TrimSpace(b.Expression)
			if expr == "" {
				t.warnings.Addf(diag.CodeEmptyBinding, locPtr(b.Loc), "[style.%s] has an empty expression", b.Detail)
				continue
			}
			prop, unit := splitStyleDetail(b.Detail)
			value := t.rewriteExpr(expr, locPtr(b.Loc))
			if unit != "" {
				value = fmt.Sprintf("`${%s}%s`", value, unit)
			}
			entries = append(entries, fmt.Sprintf("%s: %s", kebabToCamel(prop), value))
		case ast.BindProperty:
			if b.Name == "style" {
				whole = t.rewriteExpr(b.Expression, locPtr(b.Loc))
			}
		}
	}

	switch {
	case whole == "" && len(entries) == 0:
		return ""
	case len(entries) == 0:
		return fmt.Sprintf("style={%s}", whole)
	case whole == "":
		return fmt.Sprintf("style={{%s}}", strings.Join(entries, ", "))
	default:
		return fmt.Sprintf("style={{...(%s), %s}}", whole, strings.Join(entries, ", "))
	}
}

// splitStyleDetail separates a style binding detail into the property name
// and an optional unit suffix: "width.px" -> ("width", "px").
func splitStyleDetail(detail string) (prop, unit string) {
	if i := strings.LastIndexByte(detail, '.'); i >= 0 {
		return detail[:i], detail[i+1:]
	}
	return detail, ""
}

func kebabToCamel(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// expandTwoWay turns a [(name)]="var" binding into its value prop and
// write-back handler pair. The element flavor is detected structurally:
// an input with type="checkbox" gets a checked/onChange pair, a select a
// value/onChange pair, other form controls a value/onInput pair, and
// anything else a component-style prop plus on<Name>Change handler.
func (t *Transformer) expandTwoWay(el *ast.Element, b ast.TwoWayBinding) []string {
	target := strings.TrimSpace(b.Expression)
	if target == "" {
		t.warnings.Addf(diag.CodeEmptyBinding, locPtr(b.Loc), "[(%s)] has an empty expression", b.Name)
		return nil
	}

	read := target
	write := func(v string) string { return fmt.Sprintf("%s = %s", target, v) }
	if t.signals[target] {
		read = target + "()"
		write = func(v string) string { return fmt.Sprintf("%s.set(%s)", target, v) }
	}

	switch {
	case el.TagName == "input" && staticAttr(el, "type") == "checkbox":
		return []string{
			fmt.Sprintf("checked={%s}", read),
			fmt.Sprintf("onChange={($event) => %s}", write("$event.target.checked")),
		}
	case el.TagName == "select":
		return []string{
			fmt.Sprintf("value={%s}", read),
			fmt.Sprintf("onChange={($event) => %s}", write("$event.target.value")),
		}
	case el.TagName == "input" || el.TagName == "textarea":
		return []string{
			fmt.Sprintf("value={%s}", read),
			fmt.Sprintf("onInput={($event) => %s}", write("$event.target.value")),
		}
	default:
		return []string{
			fmt.Sprintf("%s={%s}", b.Name, read),
			fmt.Sprintf("on%sChange={($event) => %s}", capitalize(b.Name), write("$event")),
		}
	}
}

// renderEvent turns a (name)="expr" binding into a JSX event handler. A
// bare function name is referenced directly; anything else is wrapped in an
// arrow taking $event. Modifier suffixes on the event name are dropped
// (only the base event is mapped).
func (t *Transformer) renderEvent(ev ast.Event) string {
	expr := strings.TrimSpace(ev.Expression)
	if expr == "" {
		t.warnings.Addf(diag.CodeEmptyBinding, locPtr(ev.Loc), "(%s) has an empty expression", ev.Name)
		return ""
	}
	base := ev.Name
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	handler := "on" + capitalize(base)
	if isIdentifier(expr) {
		return fmt.Sprintf("%s={%s}", handler, expr)
	}
	return fmt.Sprintf("%s={($event) => %s}", handler, expr)
}

// renderBinding turns a generic property or attribute binding into a JSX
// attribute. Class and style targets are handled by the merge paths, and
// two-way expansion has already claimed its names.
func (t *Transformer) renderBinding(b ast.Binding) string {
	expr := strings.TrimSpace(b.Expression)
	if expr == "" {
		t.warnings.Addf(diag.CodeEmptyBinding, locPtr(b.Loc), "[%s] has an empty expression", b.Name)
		return ""
	}
	name := b.Name
	if b.Target == ast.BindAttribute {
		name = b.Detail
	}
	if dangerousSinks[strings.ToLower(strings.ReplaceAll(name, "-", ""))] {
		t.warnings.Addf(diag.CodeDangerousSink, locPtr(b.Loc), "binding into %s injects raw markup", name)
	}
	return fmt.Sprintf("%s={%s}", name, t.rewriteExpr(expr, locPtr(b.Loc)))
}

func staticAttr(el *ast.Element, name string) string {
	for _, a := range el.Attributes {
		if a.Name == name && a.Value != nil {
			return *a.Value
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_', ch == '$':
		case ch >= '0' && ch <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
