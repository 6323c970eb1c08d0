package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cs-helper",
	Short: "cs-helper - parameter schema extraction for scripts",
	Long: `cs-helper statically extracts parameter schemas from script sources.

It resolves a script's local import graph, finds parameter-declaration
calls, expands their type arguments into field tables, and evaluates
default-value expressions, without executing any script code.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root directory (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// resolveRootDir returns the --root flag value or the working directory.
func resolveRootDir() (string, error) {
	if rootDirFlag != "" {
		return rootDirFlag, nil
	}
	rootDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return rootDir, nil
}
