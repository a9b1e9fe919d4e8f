package domain

import (
	"sync"
	"time"
)

// Deduper tracks recently processed event identifiers so re-delivered
// notifications are handled at most once. Entries expire after the retention
// window; expired keys are purged on each check to keep memory bounded
// without per-entry timers.
type Deduper struct {
	mu        sync.Mutex
	retention time.Duration
	entries   map[string]time.Time
}

// NewDeduper constructs a deduper that remembers identifiers for retention.
func NewDeduper(retention time.Duration) *Deduper {
	return &Deduper{
		retention: retention,
		entries:   make(map[string]time.Time),
	}
}

// CheckAndMark reports whether key was already seen inside the retention
// window. Unseen keys are recorded before returning, so the check and the
// record are one atomic step.
func (d *Deduper) CheckAndMark(key string, now time.Time) bool {
	if d == nil || key == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for k, expiresAt := range d.entries {
		if !now.Before(expiresAt) {
			delete(d.entries, k)
		}
	}

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(d.retention)
	return false
}

// Len reports how many identifiers are currently retained.
func (d *Deduper) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
