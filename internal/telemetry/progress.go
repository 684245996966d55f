// Package telemetry reports the progress of long-running stack solves.
package telemetry

import (
	"sync"
	"time"

	"github.com/kanglcn/apertools/internal/logging"
)

// Progress is a snapshot of a chunked solve.
type Progress struct {
	Done    int
	Total   int
	Samples int
	Elapsed time.Duration
}

// Fraction returns Done/Total, or 1 for an empty job.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use; workers report as they finish chunks.
type Reporter interface {
	Report(p Progress)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Report(Progress) {}

// LogReporter writes progress through a logger, at most once per step of
// completion (for example every 10%) plus the final event.
type LogReporter struct {
	logger logging.Logger
	step   float64

	mu   sync.Mutex
	next float64
}

// NewLogReporter builds a LogReporter. step is clamped to (0, 1].
func NewLogReporter(logger logging.Logger, step float64) *LogReporter {
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &LogReporter{logger: logging.OrNop(logger), step: step, next: step}
}

func (r *LogReporter) Report(p Progress) {
	frac := p.Fraction()
	r.mu.Lock()
	if frac < r.next && p.Done < p.Total {
		r.mu.Unlock()
		return
	}
	for r.next <= frac {
		r.next += r.step
	}
	r.mu.Unlock()

	r.logger.Info("solve progress",
		logging.F("subsystem", "telemetry"),
		logging.F("chunks_done", p.Done),
		logging.F("chunks_total", p.Total),
		logging.F("samples", p.Samples),
		logging.F("elapsed", p.Elapsed.Round(time.Millisecond).String()),
	)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Progress
}

func (r *Recorder) Report(p Progress) {
	r.mu.Lock()
	r.events = append(r.events, p)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Progress(nil), r.events...)
}
