package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sigil-lang/sigil/internal/audit"
	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/discovery"
	"github.com/sigil-lang/sigil/internal/registry"
)

var auditCmd = &cobra.Command{
	Use:   "audit [template...]",
	Short: "Run static checks over templates",
	Long: `Check templates for missing alt text, unlabeled form controls, and
bindings to dangerous DOM sinks. With no arguments every discovered
template is audited; otherwise only the named files are.`,
	RunE: runAuditCommand,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCommand(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		components, err := discovery.New(cfg, registry.NewExtensionRegistry(), newLogger()).Scan(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range components {
			paths = append(paths, c.TemplatePath)
		}
	}

	engine := audit.NewEngine()
	total := 0
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		findings := engine.Audit(string(source))
		if len(findings) == 0 {
			continue
		}
		total += len(findings)
		printWarnings(path, findings)
	}

	if total > 0 {
		return fmt.Errorf("%d audit findings across %d templates", total, len(paths))
	}
	fmt.Printf("Audited %d templates, no findings\n", len(paths))
	return nil
}
