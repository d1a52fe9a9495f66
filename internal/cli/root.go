// Package cli wires the digest commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir string
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Digest - semantic code summaries for AI readers",
	Long: `Digest extracts the structure of a codebase and merges it with
@digest annotations into compact per-file summary documents under .digest/.`,
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
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "C", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}
