package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestTimingMetric_Record(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(6 * time.Millisecond)

	s := m.Stats()
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 6 || s.AvgMs != 4 || s.TotalMs != 12 {
		t.Errorf("unexpected stats: %+v", s)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Errorf("expected reset metric, got %+v", m.Stats())
	}
}

func TestTimingMetric_Concurrent(t *testing.T) {
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Record(time.Duration(n) * time.Microsecond)
		}(i)
	}
	wg.Wait()

	s := m.Stats()
	if s.Count != 50 {
		t.Fatalf("Count = %d, want 50", s.Count)
	}
	if s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("min/max = %v/%v", s.MinMs, s.MaxMs)
	}
}

func TestTimer_Disabled(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() { SetEnabled(prev) })

	m := newTimingMetric("off")
	SetEnabled(false)
	Timer(m)()
	if m.Count() != 0 {
		t.Fatalf("disabled timer recorded %d samples", m.Count())
	}

	SetEnabled(true)
	Timer(m)()
	if m.Count() != 1 {
		t.Fatalf("enabled timer recorded %d samples", m.Count())
	}
	Timer(nil)()
}

func TestAllTimingStats_OnlyRecorded(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() {
		SetEnabled(prev)
		ResetAll()
	})
	SetEnabled(true)
	ResetAll()

	FilterApply.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "filter_apply" {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
