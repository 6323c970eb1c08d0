package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mi-examples/cs-helper/internal/analyzer"
	"github.com/mi-examples/cs-helper/internal/config"
	"github.com/mi-examples/cs-helper/internal/encode"
	"github.com/mi-examples/cs-helper/internal/render"
)

var (
	quietFlag    bool
	formatFlag   string
	functionFlag string
	windowFlag   int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [entries...]",
	Short: "Extract parameter schemas from entry scripts",
	Long: `Extract resolves each entry script's local import graph, scans every
reachable file for parameter-declaration calls, and prints the extracted
parameter schemas.

Without arguments, entry scripts are discovered under the project root
using the configured entry and ignore glob patterns.

Examples:
  # Extract from one script
  cs-helper extract scripts/report.ts

  # Discover and extract every configured entry script
  cs-helper extract

  # Machine-readable output
  cs-helper extract scripts/report.ts --format json
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().StringVarP(&formatFlag, "format", "f", "markdown", "Output format: markdown, json, or compact")
	extractCmd.Flags().StringVar(&functionFlag, "function", "", "Override the parameter-declaration function name")
	extractCmd.Flags().IntVar(&windowFlag, "window", 0, "Override the fallback comment search window, in lines")
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	progress := NewExtractionProgress(quietFlag || formatFlag != "markdown", len(entries))

	var results []*analyzer.ExtractionResult
	for _, entry := range entries {
		results = append(results, engine.Extract(entry))
		progress.OnEntryProcessed()
	}

	return printResults(results)
}

// newEngine applies flag overrides on top of the configured options.
func newEngine(cfg *config.Config) (*analyzer.Engine, error) {
	opts := cfg.EngineOptions()
	if functionFlag != "" {
		opts.Function = functionFlag
	}
	if windowFlag > 0 {
		opts.CommentWindow = windowFlag
	}
	return analyzer.NewEngine(opts)
}

func discoverEntries(rootDir string, cfg *config.Config) ([]string, error) {
	discovery, err := analyzer.NewEntryDiscovery(rootDir, cfg.Paths.Entries, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid entry patterns: %w", err)
	}
	entries, err := discovery.DiscoverEntries()
	if err != nil {
		return nil, fmt.Errorf("entry discovery failed: %w", err)
	}
	return entries, nil
}

func printResults(results []*analyzer.ExtractionResult) error {
	switch formatFlag {
	case "markdown":
		for _, result := range results {
			fmt.Print(render.Markdown(result))
		}
		return nil

	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)

	case "compact":
		for _, result := range results {
			fmt.Printf("%s\t%s\n", result.Entry, encode.EncodeResult(result))
		}
		return nil

	default:
		return fmt.Errorf("unknown output format %q (want markdown, json, or compact)", formatFlag)
	}
}
