package metrics

import (
	"errors"
	"testing"
	"time"
)

// captureBackend records every call for assertions.
type captureBackend struct {
	counters  []capturedMetric
	durations []capturedMetric
	flushed   int
}

type capturedMetric struct {
	name   string
	value  float64
	labels Labels
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters = append(c.counters, capturedMetric{name, delta, labels})
}

func (c *captureBackend) ObserveDuration(name string, value float64, labels Labels) {
	c.durations = append(c.durations, capturedMetric{name, value, labels})
}

func (c *captureBackend) Flush() error {
	c.flushed++
	return nil
}

func withBackend(t *testing.T, b Backend) {
	t.Helper()
	prev := backend
	SetBackend(b)
	t.Cleanup(func() { backend = prev })
}

func TestNopBackendIsSafe(t *testing.T) {
	// The default backend must absorb calls without a registered backend.
	RecordStage("job", "reset_tables", nil, time.Millisecond)
	RecordRows("job", "inserted", 3)
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestSetBackendIgnoresNil(t *testing.T) {
	cap := &captureBackend{}
	withBackend(t, cap)

	SetBackend(nil)
	RecordRows("job", "fetched", 1)
	if len(cap.counters) != 1 {
		t.Fatalf("counter calls = %d, want 1 (nil SetBackend must not replace)", len(cap.counters))
	}
}

func TestRecordStageLabels(t *testing.T) {
	cap := &captureBackend{}
	withBackend(t, cap)

	RecordStage("sakila", "query:payments", errors.New("boom"), 250*time.Millisecond)

	if len(cap.counters) != 1 || len(cap.durations) != 1 {
		t.Fatalf("calls = %d counters, %d durations", len(cap.counters), len(cap.durations))
	}
	c := cap.counters[0]
	if c.name != "etl_stage_total" || c.value != 1 {
		t.Errorf("counter = %+v", c)
	}
	if c.labels["status"] != "failure" || c.labels["stage"] != "query:payments" || c.labels["job"] != "sakila" {
		t.Errorf("labels = %v", c.labels)
	}
	d := cap.durations[0]
	if d.name != "etl_stage_duration_seconds" || d.value != 0.25 {
		t.Errorf("duration = %+v", d)
	}
}

func TestRecordRowsSkipsNonPositive(t *testing.T) {
	cap := &captureBackend{}
	withBackend(t, cap)

	RecordRows("sakila", "inserted", 0)
	RecordRows("sakila", "inserted", -4)
	if len(cap.counters) != 0 {
		t.Fatalf("counter calls = %d, want 0", len(cap.counters))
	}

	RecordRows("sakila", "inserted", 7)
	if len(cap.counters) != 1 || cap.counters[0].value != 7 {
		t.Fatalf("counters = %+v", cap.counters)
	}
}
