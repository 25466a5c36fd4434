// Package ast defines the node types produced by the template parser and
// consumed by the transformer. A parsed template is a Document whose children
// are Element, Text, Interpolation, and Comment nodes. Every node carries a
// SourceLocation into the original template for diagnostics.
package ast

// SourceLocation identifies a half-open range of the source template.
// Line and Column are 1-indexed; offsets are 0-indexed byte positions with
// EndOffset exclusive.
type SourceLocation struct {
	Line        int
	Column      int
	StartOffset int
	EndOffset   int
}

// NodeKind discriminates the Node union.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindElement
	KindText
	KindInterpolation
	KindComment
)

// Node is implemented by every tree node.
type Node interface {
	Kind() NodeKind
	Location() SourceLocation
}

// Document is the root of a parsed template.
type Document struct {
	Children []Node
	Loc      SourceLocation
}

func (d *Document) Kind() NodeKind           { return KindDocument }
func (d *Document) Location() SourceLocation { return d.Loc }

// Element is a tag with its classified attributes and child nodes.
// SelfClosing implies Children is empty.
type Element struct {
	TagName         string
	Attributes      []Attribute
	Directives      []Directive
	Bindings        []Binding
	Events          []Event
	TwoWayBindings  []TwoWayBinding
	TemplateRefs    []TemplateRef
	Children        []Node
	SelfClosing     bool
	Loc             SourceLocation
}

func (e *Element) Kind() NodeKind           { return KindElement }
func (e *Element) Location() SourceLocation { return e.Loc }

// Text is raw character data between tags.
type Text struct {
	Content string
	Loc     SourceLocation
}

func (t *Text) Kind() NodeKind           { return KindText }
func (t *Text) Location() SourceLocation { return t.Loc }

// Interpolation is a `{{ expression }}` span. The expression is kept as an
// opaque host-language snippet.
type Interpolation struct {
	Expression string
	Loc        SourceLocation
}

func (i *Interpolation) Kind() NodeKind           { return KindInterpolation }
func (i *Interpolation) Location() SourceLocation { return i.Loc }

// Comment is an HTML comment. Comments are preserved through parsing and
// dropped at emission.
type Comment struct {
	Content string
	Loc     SourceLocation
}

func (c *Comment) Kind() NodeKind           { return KindComment }
func (c *Comment) Location() SourceLocation { return c.Loc }

// BindingTarget sub-classifies a property binding by its name prefix.
type BindingTarget int

const (
	BindProperty BindingTarget = iota
	BindClass                  // [class.x]
	BindStyle                  // [style.x] with optional unit suffix
	BindAttribute              // [attr.x]
)

// Attribute is a plain `name="value"` attribute. Value is nil for boolean
// attributes written without a value.
type Attribute struct {
	Name  string
	Value *string
	Loc   SourceLocation
}

// Directive is a structural `*name="expr"` attribute. The `if`, `else`, and
// `for` names are built in; anything else resolves against the directive
// registry.
type Directive struct {
	Name       string
	Expression string
	Loc        SourceLocation
}

// Binding is a `[name]="expr"` attribute. Target tells the transformer which
// merge path it takes; Detail carries the suffix after the `class.`/`style.`/
// `attr.` prefix (including any style unit, e.g. "width.px").
type Binding struct {
	Name       string
	Target     BindingTarget
	Detail     string
	Expression string
	Loc        SourceLocation
}

// Event is a `(name)="expr"` attribute.
type Event struct {
	Name       string
	Expression string
	Loc        SourceLocation
}

// TwoWayBinding is a `[(name)]="expr"` attribute, expanded by the
// transformer into a value prop plus a write-back handler.
type TwoWayBinding struct {
	Name       string
	Expression string
	Loc        SourceLocation
}

// TemplateRef is a `#name` attribute.
type TemplateRef struct {
	Name string
	Loc  SourceLocation
}

// ForDirectiveInfo is the parsed form of a `*for` expression:
//
//	["let"] item "of" iterable (";" clause)*
//
// where a clause is `index as i`, `let i = index`, or `trackBy: expr`.
type ForDirectiveInfo struct {
	ItemVar      string
	IterableExpr string
	IndexVar     string
	TrackBy      string
}
