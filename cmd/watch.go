package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigil-lang/sigil/internal/config"
	"github.com/sigil-lang/sigil/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Recompile templates on change",
	Long: `Run an initial compile, then watch the scan paths and recompile
whenever a template or class file changes. Class file changes trigger a
full recompile since they can add or remove pipes and directives.`,
	RunE: runWatchCommand,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCompileCommand(cmd, nil); err != nil {
		// Keep watching even when the first compile reports problems;
		// the next save is the fix.
		fmt.Fprintln(os.Stderr, "initial compile:", err)
	}

	fw, err := watcher.New(time.Duration(cfg.Watch.DebounceMillis)*time.Millisecond, logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.AnySourceFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		for _, event := range events {
			logger.Info(ctx, "change detected", "path", event.Path, "type", event.Type.String())
		}
		return runCompileCommand(cmd, nil)
	})
	for _, root := range cfg.Templates.ScanPaths {
		if err := fw.AddRecursive(root); err != nil {
			return err
		}
	}

	fw.Start(ctx)
	fmt.Println("Watching for changes. Press Ctrl+C to stop.")
	<-ctx.Done()
	return nil
}
