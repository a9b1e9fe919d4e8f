// Package notice surfaces transient, auto-expiring user-visible notices.
package notice

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cartside/addons/internal/platform/id"
	"golang.org/x/text/message"
)

const defaultDisplayDuration = 5 * time.Second

// Localizer is the minimal message-printer contract required by the
// presenter.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Notice is one live transient notice.
type Notice struct {
	ID        string
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Presenter holds active notices and expires each one after the display
// duration. Expiry scheduling is injectable so tests can fire it manually.
type Presenter struct {
	duration  time.Duration
	localizer Localizer
	clock     func() time.Time
	schedule  func(d time.Duration, fn func())
	newID     func() (string, error)

	mu     sync.Mutex
	active []Notice
}

// NewPresenter constructs a presenter. Zero duration falls back to the
// default display duration; nil clock, schedule, and newID fall back to the
// real implementations.
func NewPresenter(duration time.Duration, localizer Localizer, clock func() time.Time, schedule func(time.Duration, func()), newID func() (string, error)) *Presenter {
	if duration <= 0 {
		duration = defaultDisplayDuration
	}
	if localizer == nil {
		localizer = NewLocalizer("")
	}
	if clock == nil {
		clock = time.Now
	}
	if schedule == nil {
		schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Presenter{
		duration:  duration,
		localizer: localizer,
		clock:     clock,
		schedule:  schedule,
		newID:     newID,
	}
}

// ShowAppendFailure inserts the localized add-on append failure notice,
// including the host's error detail when one is available.
func (p *Presenter) ShowAppendFailure(_ context.Context, detail string) {
	if p == nil {
		return
	}
	var copyText string
	if detail == "" {
		copyText = p.localizer.Sprintf("notice.addon_append_failed.body")
	} else {
		copyText = p.localizer.Sprintf("notice.addon_append_failed.body_detail", detail)
	}
	p.Show(copyText)
}

// Show inserts one notice and schedules its expiry.
func (p *Presenter) Show(messageText string) Notice {
	if p == nil {
		return Notice{}
	}
	noticeID, err := p.newID()
	if err != nil {
		log.Printf("generate notice id: %v", err)
	}
	now := p.clock()
	notice := Notice{
		ID:        noticeID,
		Message:   messageText,
		CreatedAt: now,
		ExpiresAt: now.Add(p.duration),
	}

	p.mu.Lock()
	p.active = append(p.active, notice)
	p.mu.Unlock()

	p.schedule(p.duration, func() { p.Dismiss(notice.ID) })
	return notice
}

// Dismiss removes the notice with the given ID, if still active.
func (p *Presenter) Dismiss(noticeID string) {
	if p == nil || noticeID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.active[:0]
	for _, notice := range p.active {
		if notice.ID != noticeID {
			kept = append(kept, notice)
		}
	}
	p.active = kept
}

// Active returns a copy of the live notices in insertion order.
func (p *Presenter) Active() []Notice {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	active := make([]Notice, len(p.active))
	copy(active, p.active)
	return active
}
