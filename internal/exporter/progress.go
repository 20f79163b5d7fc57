package exporter

import "time"

// ProgressReporter provides callbacks for reporting export progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileProcessingStart is called before parsing files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is parsed and serialized.
	// Calls may come from several goroutines.
	OnFileProcessed(path string, err error)

	// OnComplete is called when an export run finishes.
	OnComplete(stats *Stats)
}

// Stats summarizes one export run.
type Stats struct {
	Files         int
	Failed        int
	Cached        int
	Entities      int
	Architectures int
	Instances     int
	Duration      time.Duration
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                      {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)          {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int)   {}
func (n *NoOpProgressReporter) OnFileProcessed(path string, err error) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                {}
