// Package runner drives whole-project digest runs: discovery, parallel
// extraction and merge, cross-reference resolution, and document output.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/project-digest/internal/annotate"
	"github.com/mvp-joe/project-digest/internal/config"
	"github.com/mvp-joe/project-digest/internal/digest"
	"github.com/mvp-joe/project-digest/internal/extract"
	"github.com/mvp-joe/project-digest/internal/index"
	"github.com/mvp-joe/project-digest/internal/validate"
)

// RunStats summarizes one run for the tally line and exit status.
type RunStats struct {
	RunID     string
	Processed int
	Skipped   int
	Warnings  int
	Errors    int
	Duration  time.Duration
}

// Failed reports whether the run should exit non-zero. Strict mode fails
// on warnings too.
func (s *RunStats) Failed(strict bool) bool {
	if s.Errors > 0 {
		return true
	}
	return strict && s.Warnings > 0
}

// Runner executes digest runs over one project root.
type Runner struct {
	rootDir  string
	cfg      *config.Config
	registry *extract.Registry
	progress ProgressReporter
	force    bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgress sets the progress reporter. Defaults to no-op.
func WithProgress(p ProgressReporter) Option {
	return func(r *Runner) { r.progress = p }
}

// WithForce makes Generate overwrite existing documents instead of
// skipping them.
func WithForce(force bool) Option {
	return func(r *Runner) { r.force = force }
}

// New creates a runner for the given project root.
func New(rootDir string, cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		rootDir:  rootDir,
		cfg:      cfg,
		registry: extract.NewRegistry(),
		progress: &NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// fileResult is one worker's output, folded single-threaded.
type fileResult struct {
	path    string
	summary *digest.FileSummary
	err     error
}

// Generate runs the full pipeline and writes digest documents.
func (r *Runner) Generate(ctx context.Context) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{RunID: uuid.NewString()}

	summaries, err := r.buildSummaries(ctx, stats)
	if err != nil {
		return stats, err
	}

	idx, err := r.buildIndex(summaries)
	if err != nil {
		return stats, err
	}

	writer, err := NewAtomicWriter(filepath.Join(r.rootDir, r.cfg.Output.Dir))
	if err != nil {
		return stats, err
	}
	defer writer.Cleanup()

	for _, filePath := range idx.Files() {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		s := idx.Summary(filePath)
		r.estimate(s)
		r.tallyDiagnostics(s, stats)
		r.tallyThresholds(s, stats)

		if !r.force && writer.Exists(filePath) {
			stats.Skipped++
			continue
		}
		if err := writer.Write(filePath, digest.Render(s)); err != nil {
			return stats, fmt.Errorf("writing digest for %s: %w", filePath, err)
		}
		stats.Processed++
	}

	stats.Duration = time.Since(start)
	r.progress.OnComplete(stats)
	return stats, nil
}

// Validate runs the pipeline without writing and checks every persisted
// document against the fresh summaries.
func (r *Runner) Validate(ctx context.Context) (*RunStats, []*validate.Result, error) {
	start := time.Now()
	stats := &RunStats{RunID: uuid.NewString()}

	summaries, err := r.buildSummaries(ctx, stats)
	if err != nil {
		return stats, nil, err
	}

	idx, err := r.buildIndex(summaries)
	if err != nil {
		return stats, nil, err
	}

	writer, err := NewAtomicWriter(filepath.Join(r.rootDir, r.cfg.Output.Dir))
	if err != nil {
		return stats, nil, err
	}
	defer writer.Cleanup()

	var results []*validate.Result
	for _, filePath := range idx.Files() {
		if ctx.Err() != nil {
			return stats, results, ctx.Err()
		}
		s := idx.Summary(filePath)
		r.estimate(s)
		r.tallyDiagnostics(s, stats)

		if !writer.Exists(filePath) {
			stats.Skipped++
			continue
		}
		persisted, err := writer.Read(filePath)
		if err != nil {
			return stats, results, err
		}

		res := validate.File(persisted, s, r.cfg.Thresholds())
		results = append(results, res)
		stats.Processed++
		stats.Warnings += len(res.Warnings)
		stats.Errors += len(res.Errors)
	}

	stats.Duration = time.Since(start)
	r.progress.OnComplete(stats)
	return stats, results, nil
}

// buildSummaries discovers source files and maps them to FileSummary on a
// worker pool. Results are folded on a single goroutine; the index phase
// starts only after the pool drains.
func (r *Runner) buildSummaries(ctx context.Context, stats *RunStats) ([]*digest.FileSummary, error) {
	r.progress.OnDiscoveryStart()
	fd, err := NewFileDiscovery(r.rootDir, r.cfg.Output.Dir, r.cfg.Paths.Include, r.cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid path patterns: %w", err)
	}
	files, err := fd.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	r.progress.OnDiscoveryComplete(len(files))

	g, gctx := errgroup.WithContext(ctx)

	pathCh := make(chan string)
	g.Go(func() error {
		defer close(pathCh)
		for _, p := range files {
			select {
			case pathCh <- p:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	resultCh := make(chan fileResult)
	var workers sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for p := range pathCh {
				res := r.processFile(gctx, p)
				select {
				case resultCh <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workers.Wait()
		close(resultCh)
	}()

	var summaries []*digest.FileSummary
	for res := range resultCh {
		switch {
		case errors.Is(res.err, extract.ErrParse):
			log.Printf("Error: %v", res.err)
			stats.Errors++
		case res.err != nil:
			log.Printf("Warning: skipping %s: %v", res.path, res.err)
			stats.Skipped++
		default:
			summaries = append(summaries, res.summary)
		}
		r.progress.OnFileProcessed(res.path)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// processFile extracts and merges one file.
func (r *Runner) processFile(ctx context.Context, relPath string) fileResult {
	extractor := r.registry.ForPath(relPath)
	if extractor == nil {
		return fileResult{path: relPath, err: fmt.Errorf("no extractor for extension")}
	}

	source, err := os.ReadFile(filepath.Join(r.rootDir, filepath.FromSlash(relPath)))
	if err != nil {
		return fileResult{path: relPath, err: err}
	}

	ext, err := extractor.Extract(ctx, relPath, source)
	if err != nil {
		return fileResult{path: relPath, err: err}
	}

	blocks, diags := annotate.Parse(source, ext.Language)
	return fileResult{path: relPath, summary: digest.Merge(ext, blocks, diags)}
}

func (r *Runner) buildIndex(summaries []*digest.FileSummary) (*index.Index, error) {
	r.progress.OnIndexingStart(len(summaries))
	idx := index.Build(summaries, r.cfg.Paths.Roots)
	if err := idx.Resolve(); err != nil {
		return nil, fmt.Errorf("cross-reference resolution failed: %w", err)
	}
	return idx, nil
}

// estimate fills TokenCount and Tier. The count is taken over the rendered
// document with the token line zeroed, so the procedure is stable across
// runs.
func (r *Runner) estimate(s *digest.FileSummary) {
	s.TokenCount = 0
	s.Tier = ""
	s.TokenCount = digest.EstimateTokens(digest.Render(s))
	s.Tier = digest.ClassifyTier(s.TokenCount, r.cfg.Thresholds())
}

func (r *Runner) tallyDiagnostics(s *digest.FileSummary, stats *RunStats) {
	for _, d := range s.Diagnostics {
		switch d.Severity {
		case digest.SeverityError:
			log.Printf("Error: %s: %s", d.File, d.Message)
			stats.Errors++
		default:
			log.Printf("Warning: %s: %s", d.File, d.Message)
			stats.Warnings++
		}
	}
}

// tallyThresholds reports token budget overruns during generation. The
// validator reports the same condition on its own path, so Validate does
// not call this.
func (r *Runner) tallyThresholds(s *digest.FileSummary, stats *RunStats) {
	if s.TokenCount > r.cfg.Tokens.Error {
		log.Printf("Error: %s: digest is %d tokens, over the %d limit",
			s.FilePath, s.TokenCount, r.cfg.Tokens.Error)
		stats.Errors++
	} else if s.TokenCount > r.cfg.Tokens.Warn {
		log.Printf("Warning: %s: digest is %d tokens, over the %d warning threshold",
			s.FilePath, s.TokenCount, r.cfg.Tokens.Warn)
		stats.Warnings++
	}
}
