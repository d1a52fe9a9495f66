package runner

// ProgressReporter provides callbacks for reporting run progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(totalFiles int)

	// OnFileProcessed is called after each file is extracted and merged.
	OnFileProcessed(fileName string)

	// OnIndexingStart is called before cross-reference resolution.
	OnIndexingStart(totalFiles int)

	// OnComplete is called when the run finishes.
	OnComplete(stats *RunStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                  {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)    {}
func (n *NoOpProgressReporter) OnIndexingStart(totalFiles int)     {}
func (n *NoOpProgressReporter) OnComplete(stats *RunStats)         {}
