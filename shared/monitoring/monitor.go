package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks the outcome of pipeline runs for the health endpoint.
type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	failureStreak  int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.failureStreak = 0

	log.Printf("Run completed successfully - %s (took %v)", summary, duration)
}

func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	// Partial failures degrade output but don't change health status
	log.Printf("PARTIAL FAILURE: %s (Duration: %v)", err.Error(), duration)
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.failureStreak++

	log.Printf("CRITICAL FAILURE: %s (Duration: %v, %d consecutive)", err.Error(), duration, m.failureStreak)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

// RunStatus is a point-in-time snapshot of the monitor for the status
// endpoint.
type RunStatus struct {
	Healthy             bool      `json:"healthy"`
	LastRunTime         time.Time `json:"last_run_time"`
	LastSummary         string    `json:"last_summary"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

func (m *Monitor) Status() RunStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return RunStatus{
		Healthy:             m.lastRunTime.IsZero() || m.lastRunSuccess,
		LastRunTime:         m.lastRunTime,
		LastSummary:         m.lastSummary,
		ConsecutiveFailures: m.failureStreak,
	}
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}
	if m.lastRunSuccess {
		return fmt.Sprintf("Last run %s: %s", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary)
	}
	return fmt.Sprintf("Last run failed %s (%d consecutive): %s", m.lastRunTime.Format("Jan 2 15:04"), m.failureStreak, m.lastSummary)
}
