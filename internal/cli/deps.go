package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mi-examples/cs-helper/internal/config"
)

// depsCmd represents the deps command
var depsCmd = &cobra.Command{
	Use:   "deps <entry>",
	Short: "Print an entry script's resolved import graph",
	Long: `Deps resolves the local import graph rooted at an entry script and
prints each discovered file with the files it imports. Bare module
specifiers and unresolvable paths are omitted, matching extraction
behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveRootDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to create extraction engine: %w", err)
	}
	defer engine.Close()

	mg, err := engine.ResolveGraph(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve module graph: %w", err)
	}
	defer mg.Close()

	deps := mg.Dependencies()
	for _, file := range mg.Files() {
		fmt.Println(file)
		for _, dep := range deps[file] {
			fmt.Printf("  -> %s\n", dep)
		}
	}

	return nil
}
