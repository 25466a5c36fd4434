// Package transpiler is the single entry point of the compilation pipeline:
// scan, build, classify, transform. One call is a pure function of the
// template source and the read-only extension snapshot; independent
// templates can be transpiled concurrently as long as each call gets its
// own Options value.
//
// Transpilation cannot fail. Every input yields a markup string (empty only
// for empty or whitespace-only input) plus zero or more diagnostics.
package transpiler

import (
	"strings"

	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/parser"
	"github.com/sigil-lang/sigil/internal/registry"
	"github.com/sigil-lang/sigil/internal/transform"
)

// Options configures one transpilation call.
type Options struct {
	// Extensions is the read-only snapshot of registered custom pipes
	// and directives. Nil means none.
	Extensions *registry.Snapshot
	// Context controls <slot> resolution. Defaults to the component
	// context.
	Context transform.RenderContext
	// Signals names the identifiers resolved as reactive cells; the
	// transformer emits their accessor form directly.
	Signals map[string]bool
}

// Result is everything one transpilation produced.
type Result struct {
	Markup         string
	Imports        []transform.Import
	HasSlot        bool
	SlotInfo       transform.SlotInfo
	UsedPipes      []string
	UsedDirectives []string
	TemplateRefs   []string
	Warnings       []diag.Warning
}

// Transpile converts one template string into target markup plus its
// side-channel metadata.
func Transpile(source string, opts Options) Result {
	warnings := diag.NewCollector()

	if strings.TrimSpace(source) == "" {
		return Result{Warnings: warnings.Warnings()}
	}

	doc := parser.Parse(source, warnings)
	tr := transform.New(opts.Extensions, opts.Context, opts.Signals, warnings)
	markup := tr.Document(doc)

	slotInfo := tr.SlotInfo()
	return Result{
		Markup:         markup,
		Imports:        tr.Imports(),
		HasSlot:        slotInfo.HasDefaultSlot || len(slotInfo.NamedSlots) > 0,
		SlotInfo:       slotInfo,
		UsedPipes:      tr.Usage().Pipes(),
		UsedDirectives: tr.Usage().Directives(),
		TemplateRefs:   tr.TemplateRefs(),
		Warnings:       warnings.Warnings(),
	}
}
