package notice

import (
	"context"
	"strings"
	"testing"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		value := ids[index%len(ids)]
		index++
		return value, nil
	}
}

// manualScheduler collects expiry callbacks so tests control when they fire.
type manualScheduler struct {
	callbacks []func()
	durations []time.Duration
}

func (s *manualScheduler) schedule(d time.Duration, fn func()) {
	s.durations = append(s.durations, d)
	s.callbacks = append(s.callbacks, fn)
}

func (s *manualScheduler) fireAll() {
	for _, fn := range s.callbacks {
		fn()
	}
	s.callbacks = nil
}

func TestShowInsertsAndExpiresNotice(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scheduler := &manualScheduler{}
	presenter := NewPresenter(5*time.Second, NewLocalizer("en"), fixedClock(now), scheduler.schedule, sequentialIDGenerator("notice-1"))

	notice := presenter.Show("hello")
	if notice.ID != "notice-1" {
		t.Fatalf("notice id = %q, want notice-1", notice.ID)
	}
	if notice.ExpiresAt != now.Add(5*time.Second) {
		t.Fatalf("expires at = %v, want %v", notice.ExpiresAt, now.Add(5*time.Second))
	}

	active := presenter.Active()
	if len(active) != 1 || active[0].Message != "hello" {
		t.Fatalf("active = %+v, want one notice", active)
	}
	if len(scheduler.durations) != 1 || scheduler.durations[0] != 5*time.Second {
		t.Fatalf("expected expiry scheduled at display duration, got %v", scheduler.durations)
	}

	scheduler.fireAll()
	if got := presenter.Active(); len(got) != 0 {
		t.Fatalf("expected notice removed after expiry, got %+v", got)
	}
}

func TestShowAppendFailureRendersLocalizedCopy(t *testing.T) {
	t.Parallel()

	scheduler := &manualScheduler{}
	presenter := NewPresenter(5*time.Second, NewLocalizer("en"), fixedClock(time.Now()), scheduler.schedule, sequentialIDGenerator("notice-1", "notice-2"))

	presenter.ShowAppendFailure(context.Background(), "Variant is sold out")
	presenter.ShowAppendFailure(context.Background(), "")

	active := presenter.Active()
	if len(active) != 2 {
		t.Fatalf("expected two notices, got %d", len(active))
	}
	if !strings.Contains(active[0].Message, "Variant is sold out") {
		t.Fatalf("expected host detail in copy, got %q", active[0].Message)
	}
	if strings.Contains(active[1].Message, ":") {
		t.Fatalf("expected detail-free copy, got %q", active[1].Message)
	}
}

func TestShowAppendFailureLocalizesToPortuguese(t *testing.T) {
	t.Parallel()

	scheduler := &manualScheduler{}
	presenter := NewPresenter(5*time.Second, NewLocalizer("pt-BR"), fixedClock(time.Now()), scheduler.schedule, sequentialIDGenerator("notice-1"))

	presenter.ShowAppendFailure(context.Background(), "")

	active := presenter.Active()
	if len(active) != 1 {
		t.Fatalf("expected one notice, got %d", len(active))
	}
	if !strings.Contains(active[0].Message, "complemento") {
		t.Fatalf("expected Portuguese copy, got %q", active[0].Message)
	}
}

func TestDismissRemovesOnlyTarget(t *testing.T) {
	t.Parallel()

	scheduler := &manualScheduler{}
	presenter := NewPresenter(5*time.Second, NewLocalizer("en"), fixedClock(time.Now()), scheduler.schedule, sequentialIDGenerator("notice-1", "notice-2"))

	presenter.Show("first")
	presenter.Show("second")
	presenter.Dismiss("notice-1")

	active := presenter.Active()
	if len(active) != 1 || active[0].ID != "notice-2" {
		t.Fatalf("expected only notice-2 active, got %+v", active)
	}

	// Firing the stale expiry for notice-1 is harmless.
	scheduler.fireAll()
	if got := presenter.Active(); len(got) != 0 {
		t.Fatalf("expected all notices expired, got %+v", got)
	}
}
