// Package cmd provides the sigil command-line interface.
//
// Configuration is layered, highest priority first:
//  1. Command-line flags (--config, --log-level, ...)
//  2. SIGIL_CONFIG_FILE environment variable
//  3. Individual SIGIL_<SECTION>_<OPTION> environment variables
//  4. The .sigil.yml configuration file in the working directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sigil-lang/sigil/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sigil",
	Short: "Compile declarative component templates to signal-based markup",
	Long: `Sigil compiles component templates written in a directive-annotated
HTML dialect into signal-based component files.

Templates use structural directives (*if, *else, *for), bindings
([prop], (event), [(twoWay)]), pipes ({{ value | uppercase }}), slots,
and template references (#name). The compiler resolves all of them into
plain markup expressions plus an import block.

Quick Start:
  sigil compile                   Compile every discovered template
  sigil watch                     Recompile on change
  sigil serve                     Preview compiled output with live reload
  sigil list                      List discovered components, pipes, directives
  sigil audit                     Run static template checks`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings of multi-word flags.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sigil.yml, can also use SIGIL_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SIGIL_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sigil")
	}

	viper.SetEnvPrefix("SIGIL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the resolved log level.
func newLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(viper.GetString("log-level"))
	return logging.NewLogger(cfg)
}
