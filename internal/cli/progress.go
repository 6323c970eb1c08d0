package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ExtractionProgress reports extraction progress with a progress bar.
type ExtractionProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewExtractionProgress creates a progress reporter over totalEntries entry
// scripts. A bar only makes sense for batch runs, so single-entry runs stay
// silent.
func NewExtractionProgress(quiet bool, totalEntries int) *ExtractionProgress {
	p := &ExtractionProgress{quiet: quiet || totalEntries < 2}
	if p.quiet {
		return p
	}

	p.bar = progressbar.NewOptions(totalEntries,
		progressbar.OptionSetDescription("Extracting parameters"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("entries/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	return p
}

// OnEntryProcessed advances the bar after one entry script finishes.
func (p *ExtractionProgress) OnEntryProcessed() {
	if p.quiet || p.bar == nil {
		return
	}
	p.bar.Add(1)
}

// Finish completes the bar early, for partial runs.
func (p *ExtractionProgress) Finish() {
	if p.quiet || p.bar == nil {
		return
	}
	p.bar.Finish()
}
