package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/discovery"
	"github.com/sigil-lang/sigil/internal/registry"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List discovered components, pipes, and directives",
	RunE:    runListCommand,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format (text, yaml)")
}

type listing struct {
	Components []listedComponent `yaml:"components"`
	Pipes      []string          `yaml:"pipes"`
	Directives []string          `yaml:"directives"`
}

type listedComponent struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector,omitempty"`
	Template string `yaml:"template"`
	Layout   bool   `yaml:"layout,omitempty"`
}

func runListCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()

	reg := registry.NewExtensionRegistry()
	components, err := discovery.New(cfg, reg, logger).Scan(cmd.Context())
	if err != nil {
		return err
	}

	snapshot := reg.Snapshot()
	out := listing{
		Pipes:      snapshot.PipeNames(),
		Directives: snapshot.DirectiveNames(),
	}
	sort.Strings(out.Pipes)
	sort.Strings(out.Directives)
	for _, c := range components {
		out.Components = append(out.Components, listedComponent{
			Name:     c.Name,
			Selector: c.Selector,
			Template: c.TemplatePath,
			Layout:   c.Layout,
		})
	}

	switch listFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out)
	case "text":
		fmt.Printf("Components (%d):\n", len(out.Components))
		for _, c := range out.Components {
			kind := ""
			if c.Layout {
				kind = " [layout]"
			}
			fmt.Printf("  %-28s %s%s\n", c.Name, c.Template, kind)
		}
		if len(out.Pipes) > 0 {
			fmt.Printf("Pipes: %v\n", out.Pipes)
		}
		if len(out.Directives) > 0 {
			fmt.Printf("Directives: %v\n", out.Directives)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, yaml)", listFormat)
	}
}
