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

var validateStrict bool

// validateCmd checks persisted documents against current source.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate digest documents against current source",
	Long: `Validate recomputes every file's summary and compares it with the
persisted document: fingerprints, definition sets, annotation text, and
token budgets. Stale documents are errors; budget overruns are warnings
unless --strict is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigFromDir(rootDir)
		if err != nil {
			return err
		}
		strict := cfg.Strict || validateStrict

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := runner.New(rootDir, cfg,
			runner.WithProgress(NewCLIProgressReporter(quiet)),
		)

		stats, results, err := r.Validate(ctx)
		if err != nil {
			return err
		}

		failed := 0
		for _, res := range results {
			if res.Ok(strict) {
				continue
			}
			failed++
			for _, e := range res.Errors {
				fmt.Printf("  %s: %s\n", res.File, e)
			}
			for _, w := range res.Warnings {
				fmt.Printf("  %s: warning: %s\n", res.File, w)
			}
		}

		fmt.Printf("Validated: %d, Skipped: %d, Errors: %d\n",
			stats.Processed, stats.Skipped, stats.Errors)
		if failed > 0 || stats.Failed(strict) {
			return fmt.Errorf("%d documents failed validation", failed)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"treat warnings as failures")
	rootCmd.AddCommand(validateCmd)
}
