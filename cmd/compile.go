package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/diag"
	"github.com/sigil-lang/sigil/internal/discovery"
	"github.com/sigil-lang/sigil/internal/generator"
	"github.com/sigil-lang/sigil/internal/registry"
	"github.com/sigil-lang/sigil/internal/transform"
	"github.com/sigil-lang/sigil/internal/transpiler"
)

var compileStrict bool

var compileCmd = &cobra.Command{
	Use:     "compile",
	Aliases: []string{"c", "build"},
	Short:   "Compile every discovered template",
	Long: `Scan the configured paths, register custom pipes and directives from
class files, compile each template, and write the results to the output
directory. Warnings are printed per template; with --strict any warning
fails the run.`,
	RunE: runCompileCommand,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolVar(&compileStrict, "strict", false, "treat warnings as errors")
}

func runCompileCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()
	ctx := cmd.Context()

	reg := registry.NewExtensionRegistry()
	components, err := discovery.New(cfg, reg, logger).Scan(ctx)
	if err != nil {
		return err
	}
	if len(components) == 0 {
		fmt.Println("No templates found.")
		return nil
	}

	gen := generator.New(cfg, logger)
	snapshot := reg.Snapshot()

	warned := false
	for _, component := range components {
		source, err := os.ReadFile(component.TemplatePath)
		if err != nil {
			return err
		}

		renderContext := transform.ContextComponent
		if component.Layout {
			renderContext = transform.ContextLayout
		}
		result := transpiler.Transpile(string(source), transpiler.Options{
			Extensions: snapshot,
			Context:    renderContext,
			Signals:    component.SignalSet(),
		})

		if len(result.Warnings) > 0 {
			warned = true
			printWarnings(component.TemplatePath, result.Warnings)
		}

		outPath, err := gen.Generate(component, result)
		if err != nil {
			return err
		}
		logger.Info(ctx, "compiled", "template", component.TemplatePath, "output", outPath)
	}

	pipes, directives := reg.Count()
	fmt.Printf("Compiled %d templates (%d pipes, %d directives registered)\n",
		len(components), pipes, directives)

	if compileStrict && warned {
		return fmt.Errorf("warnings reported and --strict is set")
	}
	return nil
}

func printWarnings(templatePath string, warnings []diag.Warning) {
	header := color.New(color.Bold)
	header.Fprintf(os.Stderr, "%s:\n", templatePath)
	for _, w := range warnings {
		paint := color.New(color.FgYellow)
		if w.Level == diag.LevelError {
			paint = color.New(color.FgRed)
		} else if w.Level == diag.LevelInfo {
			paint = color.New(color.FgCyan)
		}
		location := ""
		if w.Location != nil {
			location = fmt.Sprintf("%d:%d ", w.Location.Line, w.Location.Column)
		}
		paint.Fprintf(os.Stderr, "  %s%s %s\n", location, w.Code, w.Message)
	}
}
