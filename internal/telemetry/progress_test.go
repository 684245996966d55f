package telemetry

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/kanglcn/apertools/internal/logging"
)

func TestProgressFraction(t *testing.T) {
	if got := (Progress{Done: 1, Total: 4}).Fraction(); got != 0.25 {
		t.Fatalf("Fraction = %v, want 0.25", got)
	}
	if got := (Progress{}).Fraction(); got != 1 {
		t.Fatalf("empty Fraction = %v, want 1", got)
	}
}

func TestLogReporterThrottlesBySteps(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(logging.New(logging.Info, logging.Text, &buf), 0.5)
	for done := 1; done <= 10; done++ {
		r.Report(Progress{Done: done, Total: 10, Samples: done * 100})
	}
	lines := strings.Count(buf.String(), "solve progress")
	if lines != 2 {
		t.Fatalf("expected 2 progress lines (50%% and 100%%), got %d:\n%s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "chunks_done=10") {
		t.Fatalf("final event missing:\n%s", buf.String())
	}
}

func TestLogReporterDefaultsStep(t *testing.T) {
	r := NewLogReporter(nil, 0)
	if r.step != 0.1 {
		t.Fatalf("step = %v, want 0.1", r.step)
	}
	r.Report(Progress{Done: 1, Total: 1})
}

func TestRecorderIsConcurrencySafe(t *testing.T) {
	var rec Recorder
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Report(Progress{Done: i, Total: 8})
		}(i)
	}
	wg.Wait()
	if n := len(rec.Events()); n != 8 {
		t.Fatalf("recorded %d events, want 8", n)
	}
	Nop{}.Report(Progress{})
}
