package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-digest/internal/config"
	"github.com/mvp-joe/project-digest/internal/runner"
)

var generateForce bool

// generateCmd runs the full pipeline and writes digest documents.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate digest documents for the project",
	Long: `Generate extracts every supported source file, merges @digest
annotations, resolves cross-file references, and writes one document per
file under the output directory. Existing documents are skipped unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigFromDir(rootDir)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := runner.New(rootDir, cfg,
			runner.WithProgress(NewCLIProgressReporter(quiet)),
			runner.WithForce(generateForce),
		)

		stats, err := r.Generate(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Generated: %d, Skipped: %d, Errors: %d\n",
			stats.Processed, stats.Skipped, stats.Errors)
		if stats.Failed(cfg.Strict) {
			return fmt.Errorf("generation finished with %d errors and %d warnings",
				stats.Errors, stats.Warnings)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false,
		"overwrite existing digest documents")
	rootCmd.AddCommand(generateCmd)
}
