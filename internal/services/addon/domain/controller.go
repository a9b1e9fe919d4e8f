// Package domain implements the add-on controller: it observes add-to-cart
// form submissions and cart-update notifications, decides which
// notifications represent a successful primary-product add, and appends the
// add-on selections captured at submit time as extra cart line items.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cartside/addons/internal/platform/events"
	"github.com/cartside/addons/internal/platform/id"
	"github.com/cartside/addons/internal/platform/metrics"
	"github.com/cartside/addons/internal/services/addon/cart"
)

var (
	// ErrCartClientNotConfigured indicates the controller is missing its
	// cart client wiring.
	ErrCartClientNotConfigured = errors.New("cart client is not configured")
	// ErrPublisherNotConfigured indicates the controller is missing its
	// event publisher wiring.
	ErrPublisherNotConfigured = errors.New("event publisher is not configured")
)

// Outcome reports how the controller disposed of one cart-update
// notification. Rejections name the decision step that short-circuited.
type Outcome string

const (
	// OutcomeIgnoredSelf rejects notifications the controller republished.
	OutcomeIgnoredSelf Outcome = "ignored_self"
	// OutcomeIgnoredBusy rejects notifications arriving while an append is
	// in progress.
	OutcomeIgnoredBusy Outcome = "ignored_busy"
	// OutcomeIgnoredDuplicate rejects re-delivered event identifiers.
	OutcomeIgnoredDuplicate Outcome = "ignored_duplicate"
	// OutcomeIgnoredSource rejects notifications not originating from the
	// primary product form.
	OutcomeIgnoredSource Outcome = "ignored_source"
	// OutcomeIgnoredFailedAdd rejects notifications for adds that errored.
	OutcomeIgnoredFailedAdd Outcome = "ignored_failed_add"
	// OutcomeIgnoredNoProduct rejects notifications carrying no product.
	OutcomeIgnoredNoProduct Outcome = "ignored_no_product"
	// OutcomeNoSelections accepts the notification but finds nothing to
	// append.
	OutcomeNoSelections Outcome = "no_selections"
	// OutcomeCanceled aborts inside the critical section because the
	// context ended.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeAppendFailed performed the append call and it failed.
	OutcomeAppendFailed Outcome = "append_failed"
	// OutcomeAppended performed the append call successfully.
	OutcomeAppended Outcome = "appended"
)

// Attempt is one append attempt surfaced to the optional attempt recorder.
type Attempt struct {
	EventID    string
	ProductID  string
	VariantIDs []string
	Outcome    Outcome
	Error      string
	CreatedAt  time.Time
}

// CartClient appends line items to the host cart and reads its state.
type CartClient interface {
	AddItems(ctx context.Context, items []cart.LineItem) (cart.Cart, error)
	FetchCart(ctx context.Context) (cart.Cart, error)
}

// SelectionSource reads the currently-checked add-on selections. It is the
// fallback when no pending set was captured at submit time.
type SelectionSource interface {
	CheckedSelections() []Selection
}

// Publisher emits events onto the shared notification bus.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event)
}

// NoticePresenter surfaces one transient user-visible failure notice.
type NoticePresenter interface {
	ShowAppendFailure(ctx context.Context, detail string)
}

// CountDisplay renders the current cart count somewhere on the page.
type CountDisplay interface {
	SetCount(count int)
}

// AttemptRecorder persists append attempts for auditing. A nil recorder
// disables recording.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// Config bounds the controller's timing behavior.
type Config struct {
	// SettleDelay is the pause before appending, giving the host cart time
	// to finish its own primary add. The host offers no completion signal,
	// so this remains a heuristic wait.
	SettleDelay time.Duration
	// DedupeRetention is how long processed event identifiers are kept.
	DedupeRetention time.Duration
	// RefreshMinInterval is the minimum gap between cart-count refreshes.
	RefreshMinInterval time.Duration
}

const (
	defaultSettleDelay        = 300 * time.Millisecond
	defaultDedupeRetention    = 10 * time.Second
	defaultRefreshMinInterval = time.Second
)

func (c Config) normalized() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = defaultSettleDelay
	}
	if c.DedupeRetention <= 0 {
		c.DedupeRetention = defaultDedupeRetention
	}
	if c.RefreshMinInterval <= 0 {
		c.RefreshMinInterval = defaultRefreshMinInterval
	}
	return c
}

// Dependencies wires the controller's collaborators. Cart and Publisher are
// required; the rest are optional and degrade to no-ops.
type Dependencies struct {
	Cart       CartClient
	Selections SelectionSource
	Publisher  Publisher
	Notices    NoticePresenter
	Displays   []CountDisplay
	Attempts   AttemptRecorder
	Metrics    *metrics.Metrics

	// Clock, Sleep, NewID, and Logf are injectable for tests.
	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	NewID func() (string, error)
	Logf  func(format string, args ...any)
}

// Controller holds all per-page-view mutable state as explicit fields so
// every test can construct a fresh instance.
type Controller struct {
	cart       CartClient
	selections SelectionSource
	publisher  Publisher
	notices    NoticePresenter
	displays   []CountDisplay
	attempts   AttemptRecorder
	metrics    *metrics.Metrics

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	newID func() (string, error)
	logf  func(format string, args ...any)

	cfg Config

	mu          sync.Mutex
	pending     []Selection
	processing  bool
	seen        *Deduper
	lastRefresh time.Time
}

// NewController constructs an add-on controller.
func NewController(deps Dependencies, cfg Config) *Controller {
	cfg = cfg.normalized()
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}
	if deps.NewID == nil {
		deps.NewID = id.NewID
	}
	if deps.Logf == nil {
		deps.Logf = log.Printf
	}
	return &Controller{
		cart:       deps.Cart,
		selections: deps.Selections,
		publisher:  deps.Publisher,
		notices:    deps.Notices,
		displays:   deps.Displays,
		attempts:   deps.Attempts,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		sleep:      deps.Sleep,
		newID:      deps.NewID,
		logf:       deps.Logf,
		cfg:        cfg,
		seen:       NewDeduper(cfg.DedupeRetention),
	}
}

// CaptureSubmit records the add-on selections checked at form-submission
// time. Submissions not targeting the cart-add endpoint are ignored. A new
// submission always replaces any prior uncommitted pending set; it never
// merges with one.
func (c *Controller) CaptureSubmit(submission FormSubmission) {
	if c == nil || !submission.TargetsCartAdd() {
		return
	}
	selections := ParseSelections(submission.Checked)
	c.mu.Lock()
	c.pending = selections
	c.mu.Unlock()
}

// HandleCartUpdate runs the decision chain for one cart-update notification
// and, on acceptance, appends the resolved add-on selections as extra cart
// line items. The returned Outcome names the step that disposed of the
// notification.
func (c *Controller) HandleCartUpdate(ctx context.Context, update CartUpdate) (Outcome, error) {
	if c == nil {
		return OutcomeIgnoredSource, nil
	}
	if c.cart == nil {
		return OutcomeIgnoredSource, ErrCartClientNotConfigured
	}
	if c.publisher == nil {
		return OutcomeIgnoredSource, ErrPublisherNotConfigured
	}

	// The controller must never react to events it republished itself.
	if update.Source == SourceAddonController {
		c.metrics.RecordIgnored(string(OutcomeIgnoredSelf))
		return OutcomeIgnoredSelf, nil
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		c.metrics.RecordIgnored(string(OutcomeIgnoredBusy))
		return OutcomeIgnoredBusy, nil
	}
	if c.seen.CheckAndMark(update.EventID, c.now()) {
		c.mu.Unlock()
		c.metrics.RecordIgnored(string(OutcomeIgnoredDuplicate))
		return OutcomeIgnoredDuplicate, nil
	}
	if update.Source != SourceProductForm {
		c.mu.Unlock()
		c.metrics.RecordIgnored(string(OutcomeIgnoredSource))
		return OutcomeIgnoredSource, nil
	}
	if update.DidError {
		c.mu.Unlock()
		c.metrics.RecordIgnored(string(OutcomeIgnoredFailedAdd))
		return OutcomeIgnoredFailedAdd, nil
	}
	if update.ProductID == "" {
		c.mu.Unlock()
		c.metrics.RecordIgnored(string(OutcomeIgnoredNoProduct))
		return OutcomeIgnoredNoProduct, nil
	}

	// Accepted: enter the critical section before any suspension point.
	c.processing = true
	selections := c.pending
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	if len(selections) == 0 && c.selections != nil {
		selections = c.selections.CheckedSelections()
	}
	if len(selections) == 0 {
		return OutcomeNoSelections, nil
	}

	// Heuristic wait for the host's own add request to settle; the host
	// exposes no completion acknowledgment.
	if err := c.sleep(ctx, c.cfg.SettleDelay); err != nil {
		return OutcomeCanceled, fmt.Errorf("settle wait: %w", err)
	}

	items := make([]cart.LineItem, 0, len(selections))
	for _, selection := range selections {
		items = append(items, cart.LineItem{ID: selection.VariantID, Quantity: 1})
	}

	updated, err := c.cart.AddItems(ctx, items)
	if err != nil {
		if c.notices != nil {
			c.notices.ShowAppendFailure(ctx, hostErrorMessage(err))
		}
		c.recordAttempt(ctx, update, selections, OutcomeAppendFailed, err)
		c.metrics.RecordAppend(string(OutcomeAppendFailed))
		return OutcomeAppendFailed, fmt.Errorf("append add-on line items: %w", err)
	}

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()

	c.recordAttempt(ctx, update, selections, OutcomeAppended, nil)
	c.metrics.RecordAppend(string(OutcomeAppended))
	c.republish(ctx, updated)
	return OutcomeAppended, nil
}

// RefreshCount performs a rate-limited cart-count refresh: at most one fetch
// per minimum interval. Failures are logged and swallowed; the cart mutation
// that prompted the refresh already succeeded.
func (c *Controller) RefreshCount(ctx context.Context) {
	if c == nil || c.cart == nil {
		return
	}

	now := c.now()
	c.mu.Lock()
	if !c.lastRefresh.IsZero() && now.Sub(c.lastRefresh) < c.cfg.RefreshMinInterval {
		c.mu.Unlock()
		return
	}
	c.lastRefresh = now
	c.mu.Unlock()

	state, err := c.cart.FetchCart(ctx)
	if err != nil {
		c.metrics.RecordCountRefresh(false)
		c.logf("refresh cart count: %v", err)
		return
	}
	c.metrics.RecordCountRefresh(true)

	for _, display := range c.displays {
		display.SetCount(state.ItemCount)
	}
	if c.publisher != nil {
		c.publisher.Publish(ctx, events.Event{
			Topic: TopicCartCountUpdated,
			Data:  CountUpdate{Count: state.ItemCount, Cart: state},
		})
	}
}

// republish broadcasts the cart change so collaborating surfaces refresh,
// then triggers the rate-limited count refresh. The cart:update event is
// tagged with the controller's own source so the decision chain rejects it
// on re-entry.
func (c *Controller) republish(ctx context.Context, updated cart.Cart) {
	eventID, err := c.newID()
	if err != nil {
		c.logf("generate republish event id: %v", err)
	}
	c.publisher.Publish(ctx, events.Event{
		Topic: TopicCartUpdate,
		ID:    eventID,
		Data:  CartUpdate{EventID: eventID, Source: SourceAddonController},
	})
	for _, topic := range []string{TopicCartUpdated, TopicCartRefresh, TopicCartDrawerRefresh} {
		c.publisher.Publish(ctx, events.Event{Topic: topic, Data: updated})
	}
	c.RefreshCount(ctx)
}

func (c *Controller) recordAttempt(ctx context.Context, update CartUpdate, selections []Selection, outcome Outcome, appendErr error) {
	if c.attempts == nil {
		return
	}
	variantIDs := make([]string, 0, len(selections))
	for _, selection := range selections {
		variantIDs = append(variantIDs, selection.VariantID)
	}
	attempt := Attempt{
		EventID:    update.EventID,
		ProductID:  update.ProductID,
		VariantIDs: variantIDs,
		Outcome:    outcome,
		CreatedAt:  c.now(),
	}
	if appendErr != nil {
		attempt.Error = appendErr.Error()
	}
	if err := c.attempts.RecordAttempt(ctx, attempt); err != nil {
		c.logf("record append attempt: %v", err)
	}
}

func (c *Controller) now() time.Time {
	if c.clock == nil {
		return time.Now().UTC()
	}
	return c.clock().UTC()
}

// hostErrorMessage extracts the host's error copy when the append failed
// with a cart API error.
func hostErrorMessage(err error) string {
	var apiErr *cart.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
