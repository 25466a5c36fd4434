package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/server"
	"github.com/sigil-lang/sigil/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve compiled output with live reload",
	Long: `Compile everything, start the preview server over the output
directory, and push a reload to connected browsers whenever a source
change triggers a recompile.`,
	RunE: runServeCommand,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "override the configured port")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCompileCommand(cmd, nil); err != nil {
		fmt.Fprintln(os.Stderr, "initial compile:", err)
	}

	srv := server.New(cfg, logger)

	fw, err := watcher.New(time.Duration(cfg.Watch.DebounceMillis)*time.Millisecond, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.AnySourceFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		if err := runCompileCommand(cmd, nil); err != nil {
			fmt.Fprintln(os.Stderr, "recompile:", err)
			return nil
		}
		for _, event := range events {
			srv.NotifyReload(ctx, event.Path)
		}
		return nil
	})
	for _, root := range cfg.Templates.ScanPaths {
		if err := fw.AddRecursive(root); err != nil {
			return err
		}
	}
	fw.Start(ctx)

	return srv.Start(ctx)
}
