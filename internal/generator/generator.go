// Package generator turns a transpilation result into a component source
// file on disk. It owns everything downstream of the markup string: the
// import block, the component function wrapper, props for slotted
// components, and the output path layout.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/discovery"
	sigilerrors "github.com/sigil-lang/sigil/internal/errors"
	"github.com/sigil-lang/sigil/internal/logging"
	"github.com/sigil-lang/sigil/internal/transform"
	"github.com/sigil-lang/sigil/internal/transpiler"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Generator writes compiled components under the configured output dir.
type Generator struct {
	config *config.Config
	logger logging.Logger
}

func New(cfg *config.Config, logger logging.Logger) *Generator {
	return &Generator{config: cfg, logger: logger.WithComponent("generator")}
}

// OutputPath maps a template path into the output tree, swapping the
// template suffix for the configured extension.
func (g *Generator) OutputPath(templatePath string) string {
	base := filepath.Base(templatePath)
	base = strings.TrimSuffix(base, ".component.html")
	base = strings.TrimSuffix(base, ".layout.html")
	return filepath.Join(g.config.Output.Dir, base+g.config.Output.Extension)
}

// Generate renders the component file for one compiled template and writes
// it to disk. It returns the output path.
func (g *Generator) Generate(component discovery.ComponentInfo, result transpiler.Result) (string, error) {
	outPath := g.OutputPath(component.TemplatePath)
	source := Render(component, result)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", sigilerrors.NewIOError(sigilerrors.ErrCodeWriteFailed,
			"creating output directory", err)
	}
	if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
		return "", sigilerrors.NewIOError(sigilerrors.ErrCodeWriteFailed,
			"writing "+outPath, err).WithTemplate(component.Name)
	}
	return outPath, nil
}

// Render assembles the full component file text without touching disk.
func Render(component discovery.ComponentInfo, result transpiler.Result) string {
	var b strings.Builder

	writeImports(&b, result.Imports)

	name := FunctionName(component)
	props := propsSignature(result)
	fmt.Fprintf(&b, "export function %s(%s) {\n", name, props)
	b.WriteString("  return (\n")
	b.WriteString(indent(wrapMarkup(result.Markup), "    "))
	b.WriteString("\n  );\n}\n")
	return b.String()
}

// FunctionName derives the exported component name. A class name wins;
// otherwise the selector or file name is title-cased per segment.
func FunctionName(component discovery.ComponentInfo) string {
	if component.Name != "" && !strings.ContainsAny(component.Name, "-_") {
		return component.Name
	}
	source := component.Name
	if source == "" {
		source = component.Selector
	}
	parts := strings.FieldsFunc(source, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = titleCaser.String(p)
	}
	return strings.Join(parts, "")
}

func writeImports(b *strings.Builder, imports []transform.Import) {
	if len(imports) == 0 {
		return
	}

	// Group symbols by path so each module gets a single import line.
	byPath := make(map[string][]string)
	var order []string
	for _, imp := range imports {
		if _, seen := byPath[imp.ImportPath]; !seen {
			order = append(order, imp.ImportPath)
		}
		byPath[imp.ImportPath] = append(byPath[imp.ImportPath], imp.SymbolName)
	}
	sort.Strings(order)

	for _, path := range order {
		symbols := byPath[path]
		sort.Strings(symbols)
		fmt.Fprintf(b, "import { %s } from %q;\n", strings.Join(symbols, ", "), path)
	}
	b.WriteString("\n")
}

// propsSignature gives slotted components a props parameter; everything
// else takes none.
func propsSignature(result transpiler.Result) string {
	if !result.HasSlot {
		return ""
	}
	fields := make([]string, 0, 1+len(result.SlotInfo.NamedSlots))
	if result.SlotInfo.HasDefaultSlot {
		fields = append(fields, "children?: any")
	}
	named := append([]string(nil), result.SlotInfo.NamedSlots...)
	sort.Strings(named)
	for _, name := range named {
		fields = append(fields, name+"?: any")
	}
	if len(fields) == 0 {
		return ""
	}
	return "props: { " + strings.Join(fields, "; ") + " }"
}

// wrapMarkup fragments multi-root markup so the return stays a single
// expression.
func wrapMarkup(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return "<></>"
	}
	if multiRoot(trimmed) {
		return "<>\n" + trimmed + "\n</>"
	}
	return trimmed
}

// multiRoot reports whether trimmed markup has siblings at the top level.
// A single element, expression block, or fragment counts as one root.
func multiRoot(markup string) bool {
	depth := 0
	for i := 0; i < len(markup); i++ {
		switch markup[i] {
		case '<':
			if i+1 < len(markup) && markup[i+1] == '/' {
				depth--
				for i < len(markup) && markup[i] != '>' {
					i++
				}
				if depth == 0 && i+1 < len(markup) && strings.TrimSpace(markup[i+1:]) != "" {
					return true
				}
				continue
			}
			end := strings.IndexByte(markup[i:], '>')
			if end < 0 {
				return false
			}
			if markup[i+end-1] == '/' {
				if depth == 0 && strings.TrimSpace(markup[i+end+1:]) != "" {
					return true
				}
			} else {
				depth++
			}
			i += end
		case '{':
			if depth == 0 {
				end := matchBrace(markup, i)
				if end < 0 {
					return false
				}
				if strings.TrimSpace(markup[end+1:]) != "" {
					return true
				}
				i = end
			}
		}
	}
	return false
}

func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
