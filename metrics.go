package qurro

import (
	"sync/atomic"
	"time"

	"github.com/cameronmartino/qurro/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordClick is called after each feature click event.
	RecordClick(duration time.Duration, err error)

	// RecordQuery is called after each query submission.
	RecordQuery(slot model.Slot, duration time.Duration, err error)

	// RecordClear is called after each clear event.
	RecordClear(slot model.Slot)

	// RecordDiscard is called when a superseded computation result is
	// discarded under the generation rule.
	RecordDiscard(gen model.Generation)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordClick(time.Duration, error)             {}
func (NoopMetricsCollector) RecordQuery(model.Slot, time.Duration, error) {}
func (NoopMetricsCollector) RecordClear(model.Slot)                       {}
func (NoopMetricsCollector) RecordDiscard(model.Generation)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ClickCount      atomic.Int64
	ClickErrors     atomic.Int64
	ClickTotalNanos atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	ClearCount      atomic.Int64
	DiscardCount    atomic.Int64
}

func (m *BasicMetricsCollector) RecordClick(d time.Duration, err error) {
	m.ClickCount.Add(1)
	m.ClickTotalNanos.Add(int64(d))
	if err != nil {
		m.ClickErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordQuery(_ model.Slot, d time.Duration, err error) {
	m.QueryCount.Add(1)
	m.QueryTotalNanos.Add(int64(d))
	if err != nil {
		m.QueryErrors.Add(1)
	}
}

func (m *BasicMetricsCollector) RecordClear(model.Slot) {
	m.ClearCount.Add(1)
}

func (m *BasicMetricsCollector) RecordDiscard(model.Generation) {
	m.DiscardCount.Add(1)
}

// Stats is a point-in-time snapshot of a BasicMetricsCollector.
type Stats struct {
	ClickCount    int64
	ClickErrors   int64
	ClickAvgNanos int64
	QueryCount    int64
	QueryErrors   int64
	QueryAvgNanos int64
	ClearCount    int64
	DiscardCount  int64
}

// GetStats returns a snapshot of the collected metrics.
func (m *BasicMetricsCollector) GetStats() Stats {
	s := Stats{
		ClickCount:   m.ClickCount.Load(),
		ClickErrors:  m.ClickErrors.Load(),
		QueryCount:   m.QueryCount.Load(),
		QueryErrors:  m.QueryErrors.Load(),
		ClearCount:   m.ClearCount.Load(),
		DiscardCount: m.DiscardCount.Load(),
	}
	if s.ClickCount > 0 {
		s.ClickAvgNanos = m.ClickTotalNanos.Load() / s.ClickCount
	}
	if s.QueryCount > 0 {
		s.QueryAvgNanos = m.QueryTotalNanos.Load() / s.QueryCount
	}
	return s
}
