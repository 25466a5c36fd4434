// Package transform rewrites the parsed template tree into the target
// framework's markup-with-expressions syntax. It owns the structural
// directive semantics (*if/*else/*for), binding merges, two-way expansion,
// slot resolution, and the bookkeeping the code generator needs afterwards:
// which custom pipes and directives the template used, which template refs
// it declared, and which imports the output requires.
package transform

import (
	"fmt"
	"strings"

	"github.com/sigil-lang/sigil/internal/ast"
	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/pipes"
	"github.com/sigil-lang/sigil/internal/registry"
)

// RenderContext controls how <slot> elements resolve.
type RenderContext string

const (
	// ContextComponent resolves slots against the component's children
	// and named slot props.
	ContextComponent RenderContext = "component"
	// ContextLayout resolves the slot to the active page's content.
	ContextLayout RenderContext = "layout"
)

// layoutSlotSymbol is the runtime function a layout slot renders, imported
// from the shared runtime package.
const (
	layoutSlotSymbol = "renderCurrentPage"
	runtimeImport    = "@sigil/runtime"
)

// Import is one symbol the generated output needs.
type Import struct {
	SymbolName  string
	ImportPath  string
	Interactive bool
}

// SlotInfo describes the slot usage of a template.
type SlotInfo struct {
	HasDefaultSlot bool
	NamedSlots     []string
}

// Transformer rewrites one document. It is single-use: all accumulated
// state (usage, refs, slots, key discriminators) belongs to one compilation
// call.
type Transformer struct {
	extensions *registry.Snapshot
	context    RenderContext
	signals    map[string]bool
	warnings   *diag.Collector

	usage        *registry.Usage
	templateRefs []string
	slotInfo     SlotInfo
	extraImports []Import
	bareKeys     map[string]int
}

// New creates a transformer. extensions may be nil for a template with no
// custom pipes or directives; signals is the set of identifiers resolved as
// reactive cells.
func New(extensions *registry.Snapshot, context RenderContext, signals map[string]bool, warnings *diag.Collector) *Transformer {
	if extensions == nil {
		extensions = registry.EmptySnapshot()
	}
	if signals == nil {
		signals = map[string]bool{}
	}
	if context == "" {
		context = ContextComponent
	}
	return &Transformer{
		extensions: extensions,
		context:    context,
		signals:    signals,
		warnings:   warnings,
		usage:      registry.NewUsage(),
		bareKeys:   map[string]int{},
	}
}

// Document renders the whole tree. A document holding nothing but
// whitespace renders to the empty string.
func (t *Transformer) Document(doc *ast.Document) string {
	var b strings.Builder
	for _, child := range doc.Children {
		b.WriteString(t.renderNode(child))
	}
	return strings.TrimSpace(b.String())
}

// Usage returns the custom pipes and directives the template used.
func (t *Transformer) Usage() *registry.Usage { return t.usage }

// TemplateRefs returns the declared #ref names in document order.
func (t *Transformer) TemplateRefs() []string { return t.templateRefs }

// SlotInfo returns which slots the template declared.
func (t *Transformer) SlotInfo() SlotInfo { return t.slotInfo }

// Imports assembles the import list for everything the transformed markup
// references: used custom pipes and directives plus any runtime symbols.
func (t *Transformer) Imports() []Import {
	var imports []Import
	seen := map[string]bool{}
	add := func(imp Import) {
		key := imp.SymbolName + "\x00" + imp.ImportPath
		if imp.SymbolName == "" || seen[key] {
			return
		}
		seen[key] = true
		imports = append(imports, imp)
	}

	for _, imp := range t.extraImports {
		add(imp)
	}
	for _, name := range t.usage.Pipes() {
		if p, ok := t.extensions.Pipe(name); ok {
			add(Import{SymbolName: p.FunctionName, ImportPath: p.ImportPath, Interactive: p.Interactive})
		}
	}
	for _, name := range t.usage.Directives() {
		if d, ok := t.extensions.Directive(name); ok {
			add(Import{SymbolName: d.FunctionName, ImportPath: d.ImportPath, Interactive: d.Interactive})
		}
	}
	return imports
}

func (t *Transformer) renderNode(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Text:
		if strings.TrimSpace(node.Content) == "" {
			return ""
		}
		return node.Content
	case *ast.Interpolation:
		return "{" + t.rewriteExpr(node.Expression, &node.Loc) + "}"
	case *ast.Comment:
		// Comments do not survive into the output.
		return ""
	case *ast.Element:
		return t.renderElement(node)
	default:
		return ""
	}
}

// renderElement applies structural directives around the element's own
// markup. When *if and *for are both present, *if wraps the loop regardless
// of attribute order in the source.
func (t *Transformer) renderElement(el *ast.Element) string {
	var (
		hasIf      bool
		ifExpr     string
		ifLoc      *ast.SourceLocation
		elseTarget string
		hasFor     bool
		forExpr    string
		forLoc     *ast.SourceLocation
		custom     []ast.Directive
	)

	for _, d := range el.Directives {
		switch d.Name {
		case "if":
			hasIf = true
			ifExpr = strings.TrimSpace(d.Expression)
			ifLoc = locPtr(d.Loc)
		case "else":
			elseTarget = strings.TrimSpace(d.Expression)
		case "for":
			hasFor = true
			forExpr = strings.TrimSpace(d.Expression)
			forLoc = locPtr(d.Loc)
		default:
			custom = append(custom, d)
		}
	}

	if elseTarget != "" && !hasIf {
		t.warnings.Addf(diag.CodeOrphanElse, locPtr(el.Loc), "*else=%q has no matching *if", elseTarget)
		elseTarget = ""
	}
	if hasIf && ifExpr == "" {
		// Accepted syntactically, but the element renders
		// unconditionally. See the open-question note in DESIGN.md.
		t.warnings.Add(diag.CodeEmptyCondition, "*if has an empty condition; element renders unconditionally", ifLoc)
		hasIf = false
	}

	var forInfo ast.ForDirectiveInfo
	if hasFor {
		if forExpr == "" {
			t.warnings.Add(diag.CodeEmptyCondition, "*for has an empty expression; element renders once", forLoc)
			hasFor = false
		} else {
			var ok bool
			forInfo, ok = t.parseFor(forExpr, forLoc)
			hasFor = ok
		}
	}

	key := ""
	if hasFor {
		key = t.loopKey(forInfo)
	}

	current := t.renderElementCore(el, key)
	isExpr := false

	// Custom structural directives wrap the element itself, inside any
	// built-in conditional or loop.
	for _, d := range custom {
		current = t.applyCustomDirective(d, current)
		isExpr = true
	}

	if hasFor {
		current = renderLoop(forInfo, t.rewriteExpr(forInfo.IterableExpr, forLoc), current)
		isExpr = true
	}

	if hasIf {
		cond := t.rewriteExpr(ifExpr, ifLoc)
		if elseTarget != "" {
			current = fmt.Sprintf("%s ? %s : <%s />", cond, current, elseTarget)
		} else {
			current = fmt.Sprintf("%s && %s", cond, current)
		}
		isExpr = true
	}

	if isExpr {
		return "{" + current + "}"
	}
	return current
}

// applyCustomDirective wraps rendered markup in the directive's function
// call. Unregistered names pass through as same-named functions on the
// assumption the caller supplies them later.
func (t *Transformer) applyCustomDirective(d ast.Directive, body string) string {
	fn := d.Name
	if reg, ok := t.extensions.Directive(d.Name); ok {
		fn = reg.FunctionName
		t.usage.RecordDirective(d.Name)
	} else {
		t.warnings.AddLevel(diag.LevelInfo, diag.CodeUnknownDirective,
			fmt.Sprintf("*%s is not registered; passing it through as %s()", d.Name, fn), locPtr(d.Loc))
	}
	if strings.TrimSpace(d.Expression) == "" {
		return fmt.Sprintf("%s(%s)", fn, body)
	}
	return fmt.Sprintf("%s(%s, %s)", fn, d.Expression, body)
}

// renderElementCore renders the element markup itself: tag, attributes,
// merged bindings, expanded two-way pairs, events, refs, the loop key, and
// children.
func (t *Transformer) renderElementCore(el *ast.Element, key string) string {
	if el.TagName == "slot" {
		return t.renderSlot(el)
	}

	var attrs []string

	for _, a := range el.Attributes {
		if a.Name == "class" {
			continue // folded into className below
		}
		if a.Value == nil {
			attrs = append(attrs, a.Name)
			continue
		}
		attrs = append(attrs, fmt.Sprintf("%s=%q", a.Name, *a.Value))
	}

	// Two-way pairs expand before generic property bindings so the
	// fallback path below never sees their names.
	for _, tw := range el.TwoWayBindings {
		attrs = append(attrs, t.expandTwoWay(el, tw)...)
	}

	for _, b := range el.Bindings {
		if b.Target == ast.BindClass || b.Target == ast.BindStyle {
			continue // merge paths below
		}
		if b.Target == ast.BindProperty && (b.Name == "class" || b.Name == "style") {
			continue
		}
		if rendered := t.renderBinding(b); rendered != "" {
			attrs = append(attrs, rendered)
		}
	}

	if classAttr := t.mergeClassAttr(el); classAttr != "" {
		attrs = append(attrs, classAttr)
	}
	if styleAttr := t.mergeStyleAttr(el); styleAttr != "" {
		attrs = append(attrs, styleAttr)
	}

	for _, ev := range el.Events {
		if rendered := t.renderEvent(ev); rendered != "" {
			attrs = append(attrs, rendered)
		}
	}

	for _, ref := range el.TemplateRefs {
		t.templateRefs = append(t.templateRefs, ref.Name)
		attrs = append(attrs, fmt.Sprintf("ref={%s}", ref.Name))
	}

	if key != "" {
		attrs = append(attrs, fmt.Sprintf("key={%s}", key))
	}

	open := "<" + el.TagName
	if len(attrs) > 0 {
		open += " " + strings.Join(attrs, " ")
	}

	if el.SelfClosing {
		return open + " />"
	}

	var children strings.Builder
	for _, child := range el.Children {
		children.WriteString(t.renderNode(child))
	}
	return open + ">" + children.String() + "</" + el.TagName + ">"
}

// renderSlot resolves a <slot> element for the render context: a layout
// slot becomes the current page's content, a component slot the children
// prop or a named slot prop, with the slot's own children as the fallback.
func (t *Transformer) renderSlot(el *ast.Element) string {
	var fallback strings.Builder
	for _, child := range el.Children {
		fallback.WriteString(t.renderNode(child))
	}

	if t.context == ContextLayout {
		t.slotInfo.HasDefaultSlot = true
		t.extraImports = append(t.extraImports, Import{SymbolName: layoutSlotSymbol, ImportPath: runtimeImport})
		return "{" + layoutSlotSymbol + "()}"
	}

	base := "props.children"
	if name := staticAttr(el, "name"); name != "" {
		t.slotInfo.NamedSlots = append(t.slotInfo.NamedSlots, name)
		base = "props." + kebabToCamel(name)
	} else {
		t.slotInfo.HasDefaultSlot = true
	}

	if content := strings.TrimSpace(fallback.String()); content != "" {
		return fmt.Sprintf("{%s ?? <>%s</>}", base, content)
	}
	return "{" + base + "}"
}

// rewriteExpr runs an opaque host expression through the pipe engine and
// the reactive-cell accessor rewrite.
func (t *Transformer) rewriteExpr(expr string, loc *ast.SourceLocation) string {
	rewritten, custom := pipes.Rewrite(expr, t.extensions)
	for _, name := range custom {
		if t.extensions.HasPipe(name) {
			t.usage.RecordPipe(name)
			continue
		}
		t.warnings.AddLevel(diag.LevelInfo, diag.CodeUnknownPipe,
			fmt.Sprintf("pipe %q is not registered; passing it through as %s()", name, name), loc)
	}
	return t.applySignals(rewritten)
}

func locPtr(l ast.SourceLocation) *ast.SourceLocation {
	return &l
}

// applySignals emits the accessor form for expressions rooted at a known
// reactive cell: a bare `count` becomes `count()`, `user.name` with a
// reactive `user` becomes `user().name`. Identifiers deeper inside the
// expression are left alone; the resolved-kind information only covers the
// root.
func (t *Transformer) applySignals(expr string) string {
	i := 0
	for i < len(expr) {
		ch := expr[i]
		if ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$' || (i > 0 && ch >= '0' && ch <= '9') {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return expr
	}
	root := expr[:i]
	if !t.signals[root] {
		return expr
	}
	if i < len(expr) && expr[i] == '(' {
		return expr // already a call
	}
	return root + "()" + expr[i:]
}
