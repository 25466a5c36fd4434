// Package discovery walks the configured scan paths and collects the
// compilation inputs: component templates, their decorator-annotated class
// files, and the custom pipes and directives those classes declare. It runs
// strictly before compilation; its only output is the populated extension
// registry plus the component list handed to the compile loop.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sigil-lang/sigil/internal/config"
	sigilerrors "github.com/sigil-lang/sigil/internal/errors"
	"github.com/sigil-lang/sigil/internal/logging"
	"github.com/sigil-lang/sigil/internal/registry"
)

// ComponentInfo describes one discovered component template and what its
// class file declares.
type ComponentInfo struct {
	Name         string // class name, e.g. UserCardComponent
	Selector     string
	TemplatePath string
	ClassPath    string
	Signals      []string // identifiers declared as reactive cells
	Layout       bool
}

var (
	pipeRe      = regexp.MustCompile(`@Pipe\(\s*\{[^}]*?name\s*:\s*['"]([\w-]+)['"]`)
	directiveRe = regexp.MustCompile(`@Directive\(\s*\{[^}]*?selector\s*:\s*['"]\[?([\w-]+)\]?['"]`)
	componentRe = regexp.MustCompile(`@Component\(\s*\{[^}]*?selector\s*:\s*['"]([\w-]+)['"]`)
	classRe     = regexp.MustCompile(`export\s+class\s+(\w+)`)
	signalRe    = regexp.MustCompile(`(?m)^\s*(?:readonly\s+)?(\w+)\s*=\s*signal(?:<[^>\n]*>)?\(`)
)

// Discoverer scans a project tree.
type Discoverer struct {
	config   *config.Config
	registry *registry.ExtensionRegistry
	logger   logging.Logger
}

// New creates a discoverer that registers into reg.
func New(cfg *config.Config, reg *registry.ExtensionRegistry, logger logging.Logger) *Discoverer {
	return &Discoverer{
		config:   cfg,
		registry: reg,
		logger:   logger.WithComponent("discovery"),
	}
}

// Scan walks every configured scan path. Pipes and directives found along
// the way are registered; the returned slice lists the component templates
// to compile.
func (d *Discoverer) Scan(ctx context.Context) ([]ComponentInfo, error) {
	var components []ComponentInfo

	for _, root := range d.config.Templates.ScanPaths {
		err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if d.excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.excluded(path) {
				return nil
			}

			switch {
			case strings.HasSuffix(path, ".component.html"), strings.HasSuffix(path, ".layout.html"):
				components = append(components, d.inspectTemplate(ctx, path))
			case filepath.Ext(path) == ".ts" && !strings.HasSuffix(path, ".spec.ts"):
				d.inspectClassFile(ctx, path)
			}
			return nil
		})
		if err != nil {
			return nil, sigilerrors.NewDiscoveryError(sigilerrors.ErrCodeDiscoveryFailed,
				"scanning "+root, err)
		}
	}

	d.logger.Info(ctx, "discovery complete", "components", len(components))
	return components, nil
}

func (d *Discoverer) excluded(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}
	for _, pattern := range d.config.Templates.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return base == "node_modules" || base == "dist"
}

// inspectTemplate pairs a template with its sibling class file and pulls
// the metadata the compile loop needs.
func (d *Discoverer) inspectTemplate(ctx context.Context, templatePath string) ComponentInfo {
	info := ComponentInfo{
		TemplatePath: templatePath,
		Layout:       strings.HasSuffix(templatePath, ".layout.html") || d.config.IsLayoutPath(templatePath),
	}

	classPath := strings.TrimSuffix(templatePath, ".component.html")
	classPath = strings.TrimSuffix(classPath, ".layout.html") + ".ts"
	source, err := os.ReadFile(classPath)
	if err != nil {
		// A template without a class file still compiles; it just has
		// no signals and a name derived from the file name.
		d.logger.Debug(ctx, "no class file for template", "template", templatePath)
		info.Name = baseName(templatePath)
		return info
	}

	info.ClassPath = classPath
	text := string(source)
	if m := classRe.FindStringSubmatch(text); m != nil {
		info.Name = m[1]
	} else {
		info.Name = baseName(templatePath)
	}
	if m := componentRe.FindStringSubmatch(text); m != nil {
		info.Selector = m[1]
	}
	for _, m := range signalRe.FindAllStringSubmatch(text, -1) {
		info.Signals = append(info.Signals, m[1])
	}
	return info
}

// inspectClassFile registers any pipe or directive declarations.
func (d *Discoverer) inspectClassFile(ctx context.Context, path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		d.logger.Warn(ctx, err, "cannot read class file", "path", path)
		return
	}
	text := string(source)
	importPath := importPathFor(path)
	interactive := strings.Contains(text, "signal(") || strings.Contains(text, "effect(")

	for _, m := range pipeRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		d.registry.RegisterPipe(registry.Pipe{
			Name:         name,
			FunctionName: lowerCamel(name) + "Pipe",
			ImportPath:   importPath,
			Interactive:  interactive,
		})
		d.logger.Debug(ctx, "registered pipe", "name", name, "path", path)
	}

	for _, m := range directiveRe.FindAllStringSubmatch(text, -1) {
		name := m[1]
		d.registry.RegisterDirective(registry.Directive{
			Name:         name,
			FunctionName: lowerCamel(name) + "Directive",
			ImportPath:   importPath,
			Interactive:  interactive,
		})
		d.logger.Debug(ctx, "registered directive", "name", name, "path", path)
	}
}

// SignalSet converts a component's signal list into the lookup form the
// transpiler takes.
func (c ComponentInfo) SignalSet() map[string]bool {
	if len(c.Signals) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Signals))
	for _, name := range c.Signals {
		set[name] = true
	}
	return set
}

func baseName(templatePath string) string {
	base := filepath.Base(templatePath)
	base = strings.TrimSuffix(base, ".component.html")
	base = strings.TrimSuffix(base, ".layout.html")
	return base
}

func importPathFor(path string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	if !strings.HasPrefix(trimmed, "./") && !strings.HasPrefix(trimmed, "/") {
		trimmed = "./" + trimmed
	}
	return trimmed
}

func lowerCamel(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 {
		return name
	}
	out := strings.ToLower(parts[0][:1]) + parts[0][1:]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		out += strings.ToUpper(p[:1]) + p[1:]
	}
	return out
}
