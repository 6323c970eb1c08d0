package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mi-examples/cs-helper/internal/analyzer"
	"github.com/mi-examples/cs-helper/internal/config"
	"github.com/mi-examples/cs-helper/internal/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [entries...]",
	Short: "Watch source files and keep extraction results fresh",
	Long: `Watch extracts parameter schemas for the given entry scripts (or the
configured entry set), then watches the project tree. When a source file
changes, every entry whose import graph contains it is invalidated and
re-extracted.

Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable non-error output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Stopping watch...")
		cancel()
	}()

	rootDir, err := resolveRootDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	entries := args
	if len(entries) == 0 {
		entries, err = discoverEntries(rootDir, cfg)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("no entry scripts found under %s", rootDir)
		}
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to create extraction engine: %w", err)
	}
	defer engine.Close()

	// Warm the cache before watching.
	for _, entry := range entries {
		result := engine.Extract(entry)
		if !quietFlag {
			log.Printf("Extracted %s: %d declaration call(s)", result.Entry, len(result.Calls))
		}
	}

	onRefresh := func(result *analyzer.ExtractionResult) {
		if !quietFlag {
			log.Printf("Refreshed %s: %d declaration call(s)", result.Entry, len(result.Calls))
		}
	}

	w, err := watcher.NewInvalidationWatcher(engine, rootDir, entries, cfg.Params.Extensions, cfg.Paths.Ignore, onRefresh)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !quietFlag {
		log.Printf("Watching %s for changes...", rootDir)
	}

	<-ctx.Done()
	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}

	if !quietFlag {
		log.Println("Watch stopped")
	}
	return nil
}
