package parser

import (
	"strings"

	"github.com/sigil-lang/sigil/internal/ast"
)

// AttrKind is the five-way category of a raw attribute, decided purely by
// the syntactic shell of its name.
type AttrKind int

const (
	AttrStandard AttrKind = iota
	AttrTemplateRef
	AttrDirective
	AttrTwoWay
	AttrBinding
	AttrEvent
)

// String returns the category name.
func (k AttrKind) String() string {
	switch k {
	case AttrTemplateRef:
		return "template-ref"
	case AttrDirective:
		return "directive"
	case AttrTwoWay:
		return "two-way"
	case AttrBinding:
		return "binding"
	case AttrEvent:
		return "event"
	default:
		return "standard"
	}
}

// Classified is the result of classifying one attribute name. Name is the
// shell-stripped name; for bindings, Target and Detail carry the
// sub-classification (the part after the class./style./attr. prefix).
type Classified struct {
	Kind   AttrKind
	Name   string
	Target ast.BindingTarget
	Detail string
}

// Classify categorizes a raw attribute name into exactly one category. The
// priority is fixed: template ref, structural directive, two-way binding,
// property binding, event binding, then plain attribute. A name claimed by
// an earlier shell is never reconsidered by a later one.
func Classify(name string) Classified {
	switch {
	case strings.HasPrefix(name, "#") && len(name) > 1:
		return Classified{Kind: AttrTemplateRef, Name: name[1:]}

	case strings.HasPrefix(name, "*") && len(name) > 1:
		return Classified{Kind: AttrDirective, Name: name[1:]}

	case strings.HasPrefix(name, "[(") && strings.HasSuffix(name, ")]") && len(name) > 4:
		return Classified{Kind: AttrTwoWay, Name: name[2 : len(name)-2]}

	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") && len(name) > 2:
		inner := name[1 : len(name)-1]
		c := Classified{Kind: AttrBinding, Name: inner, Target: ast.BindProperty, Detail: inner}
		switch {
		case strings.HasPrefix(inner, "class."):
			c.Target = ast.BindClass
			c.Detail = inner[len("class."):]
		case strings.HasPrefix(inner, "style."):
			c.Target = ast.BindStyle
			c.Detail = inner[len("style."):]
		case strings.HasPrefix(inner, "attr."):
			c.Target = ast.BindAttribute
			c.Detail = inner[len("attr."):]
		}
		return c

	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")") && len(name) > 2:
		return Classified{Kind: AttrEvent, Name: name[1 : len(name)-1]}

	default:
		return Classified{Kind: AttrStandard, Name: name}
	}
}

// Shell reconstructs the raw attribute name for a classification. Classify
// and Shell are inverses for well-formed names, which backs the
// classification idempotence property.
func (c Classified) Shell() string {
	switch c.Kind {
	case AttrTemplateRef:
		return "#" + c.Name
	case AttrDirective:
		return "*" + c.Name
	case AttrTwoWay:
		return "[(" + c.Name + ")]"
	case AttrBinding:
		return "[" + c.Name + "]"
	case AttrEvent:
		return "(" + c.Name + ")"
	default:
		return c.Name
	}
}

// apply attaches a classified attribute to its element field.
func apply(el *ast.Element, c Classified, value *string, loc ast.SourceLocation) {
	expr := ""
	if value != nil {
		expr = *value
	}
	switch c.Kind {
	case AttrTemplateRef:
		el.TemplateRefs = append(el.TemplateRefs, ast.TemplateRef{Name: c.Name, Loc: loc})
	case AttrDirective:
		el.Directives = append(el.Directives, ast.Directive{Name: c.Name, Expression: expr, Loc: loc})
	case AttrTwoWay:
		el.TwoWayBindings = append(el.TwoWayBindings, ast.TwoWayBinding{Name: c.Name, Expression: expr, Loc: loc})
	case AttrBinding:
		el.Bindings = append(el.Bindings, ast.Binding{
			Name:       c.Name,
			Target:     c.Target,
			Detail:     c.Detail,
			Expression: expr,
			Loc:        loc,
		})
	case AttrEvent:
		el.Events = append(el.Events, ast.Event{Name: c.Name, Expression: expr, Loc: loc})
	default:
		el.Attributes = append(el.Attributes, ast.Attribute{Name: c.Name, Value: value, Loc: loc})
	}
}
