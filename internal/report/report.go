package report

import (
	"sync"

	"wa-bulk-sender/pkg/models"
)

// Reporter receives batch progress. Calls arrive from the single send loop.
type Reporter interface {
	BatchStarted(models.BatchSummary)
	ContactDone(models.BatchSummary, models.ContactProgress)
	BatchFinished(models.BatchSummary)
}

type multi []Reporter

// Multi fans progress out to every non-nil reporter, in order.
func Multi(rs ...Reporter) Reporter {
	var m multi
	for _, r := range rs {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) BatchStarted(s models.BatchSummary) {
	for _, r := range m {
		r.BatchStarted(s)
	}
}

func (m multi) ContactDone(s models.BatchSummary, p models.ContactProgress) {
	for _, r := range m {
		r.ContactDone(s, p)
	}
}

func (m multi) BatchFinished(s models.BatchSummary) {
	for _, r := range m {
		r.BatchFinished(s)
	}
}

const recentLimit = 50

// Tracker keeps the latest batch state for readers on other goroutines.
type Tracker struct {
	mu     sync.RWMutex
	batch  models.BatchSummary
	recent []models.ContactProgress
}

func NewTracker() *Tracker {
	return &Tracker{batch: models.BatchSummary{Status: models.StatusIdle}}
}

func (t *Tracker) BatchStarted(s models.BatchSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batch = s
	t.recent = nil
}

func (t *Tracker) ContactDone(s models.BatchSummary, p models.ContactProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batch = s
	t.recent = append(t.recent, p)
	if len(t.recent) > recentLimit {
		t.recent = t.recent[len(t.recent)-recentLimit:]
	}
}

func (t *Tracker) BatchFinished(s models.BatchSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.batch = s
}

// Snapshot returns a copy safe to hand to another goroutine.
func (t *Tracker) Snapshot() models.StatusSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	recent := make([]models.ContactProgress, len(t.recent))
	copy(recent, t.recent)
	return models.StatusSnapshot{Batch: t.batch, Recent: recent}
}
