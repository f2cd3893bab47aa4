package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/galligan/pickme/internal/indexer"
)

// IndexProgressReporter renders one-shot indexing progress: a bar across
// roots plus a per-root error line where needed.
type IndexProgressReporter struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	startTime time.Time

	totalIndexed int
	totalSkipped int
	totalErrors  int
}

// NewIndexProgressReporter creates a reporter over totalRoots roots. quiet
// suppresses all output.
func NewIndexProgressReporter(quiet bool, totalRoots int) *IndexProgressReporter {
	r := &IndexProgressReporter{
		quiet:     quiet,
		startTime: time.Now(),
	}
	if quiet {
		return r
	}

	r.bar = progressbar.NewOptions(totalRoots,
		progressbar.OptionSetDescription("Indexing roots"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	return r
}

// OnRootDone records one finished root.
func (r *IndexProgressReporter) OnRootDone(result indexer.RefreshResult) {
	r.totalIndexed += result.Stats.FilesIndexed
	r.totalSkipped += result.Stats.FilesSkipped
	r.totalErrors += len(result.Stats.Errors)

	if r.quiet {
		return
	}
	r.bar.Add(1)
	if result.ErrMsg != "" {
		fmt.Printf("  %s: %s\n", result.Root, result.ErrMsg)
	}
}

// OnComplete prints the final summary.
func (r *IndexProgressReporter) OnComplete() {
	if r.quiet {
		return
	}

	elapsed := time.Since(r.startTime)
	fmt.Printf("✓ Indexed %d files (%d unchanged) in %.1fs\n",
		r.totalIndexed, r.totalSkipped, elapsed.Seconds())
	if r.totalErrors > 0 {
		fmt.Printf("  %d per-file errors\n", r.totalErrors)
	}
}
