// Package httpapi exposes the storefront-facing HTTP gateway: inbound
// event ingestion, live selection state, active notices, and the append
// attempt audit log.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cartside/addons/internal/platform/events"
	"github.com/cartside/addons/internal/services/addon/domain"
	"github.com/cartside/addons/internal/services/addon/notice"
	"github.com/cartside/addons/internal/services/addon/storage"
)

// ErrPublisherRequired indicates the gateway is missing its bus wiring.
var ErrPublisherRequired = errors.New("event publisher is required")

// NoticeLister reads the currently active transient notices.
type NoticeLister interface {
	Active() []notice.Notice
}

// Server handles the storefront gateway routes. It also tracks the live
// add-on selection state, acting as the controller's fresh-read fallback,
// and the last published cart count.
type Server struct {
	publisher domain.Publisher
	notices   NoticeLister
	attempts  storage.AttemptStore
	metrics   http.Handler

	mu        sync.Mutex
	checked   []map[string]string
	lastCount int
	hasCount  bool
}

// NewServer constructs a gateway server. Notices, attempts, and metrics are
// optional; their routes respond as empty or absent when unwired.
func NewServer(publisher domain.Publisher, notices NoticeLister, attempts storage.AttemptStore, metrics http.Handler) (*Server, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	return &Server{
		publisher: publisher,
		notices:   notices,
		attempts:  attempts,
		metrics:   metrics,
	}, nil
}

// RegisterRoutes mounts the gateway routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/events/cart-update", s.handleCartUpdateEvent)
	mux.HandleFunc("/events/submit", s.handleSubmitEvent)
	mux.HandleFunc("/selections", s.handleSelections)
	mux.HandleFunc("/notices", s.handleNotices)
	mux.HandleFunc("/attempts", s.handleAttempts)
	mux.HandleFunc("/cart/count", s.handleCartCount)
	mux.HandleFunc("/healthz", s.handleHealthz)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
}

// CheckedSelections implements domain.SelectionSource from the most recent
// selection state reported by the storefront.
func (s *Server) CheckedSelections() []domain.Selection {
	s.mu.Lock()
	checked := s.checked
	s.mu.Unlock()
	return domain.ParseSelections(checked)
}

// SetCount implements domain.CountDisplay.
func (s *Server) SetCount(count int) {
	s.mu.Lock()
	s.lastCount = count
	s.hasCount = true
	s.mu.Unlock()
}

type cartUpdatePayload struct {
	EventID   string `json:"event_id"`
	Source    string `json:"source"`
	DidError  bool   `json:"did_error"`
	ProductID string `json:"product_id"`
}

func (s *Server) handleCartUpdateEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload cartUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	s.publisher.Publish(r.Context(), events.Event{
		Topic: domain.TopicCartUpdate,
		ID:    payload.EventID,
		Data: domain.CartUpdate{
			EventID:   payload.EventID,
			Source:    payload.Source,
			DidError:  payload.DidError,
			ProductID: payload.ProductID,
		},
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type submitPayload struct {
	Action  string              `json:"action"`
	Checked []map[string]string `json:"checked"`
}

func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	// The submission doubles as the freshest known selection state.
	s.mu.Lock()
	s.checked = payload.Checked
	s.mu.Unlock()

	s.publisher.Publish(r.Context(), events.Event{
		Topic: domain.TopicFormSubmit,
		Data: domain.FormSubmission{
			Action:  payload.Action,
			Checked: payload.Checked,
		},
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type selectionsPayload struct {
	Checked []map[string]string `json:"checked"`
}

func (s *Server) handleSelections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		var payload selectionsPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.checked = payload.Checked
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		selections := s.CheckedSelections()
		type selectionView struct {
			ProductID string `json:"product_id"`
			VariantID string `json:"variant_id"`
			Price     string `json:"price,omitempty"`
		}
		views := make([]selectionView, 0, len(selections))
		for _, selection := range selections {
			views = append(views, selectionView{
				ProductID: selection.ProductID,
				VariantID: selection.VariantID,
				Price:     selection.Price,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"selections": views})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type noticeView struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		CreatedAt time.Time `json:"created_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	views := []noticeView{}
	if s.notices != nil {
		for _, active := range s.notices.Active() {
			views = append(views, noticeView{
				ID:        active.ID,
				Message:   active.Message,
				CreatedAt: active.CreatedAt,
				ExpiresAt: active.ExpiresAt,
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": views})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.attempts == nil {
		http.Error(w, "attempt store is not configured", http.StatusNotFound)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	records, err := s.attempts.ListRecentAttempts(r.Context(), limit)
	if err != nil {
		http.Error(w, "list attempts failed", http.StatusInternalServerError)
		return
	}
	type attemptView struct {
		EventID    string    `json:"event_id,omitempty"`
		ProductID  string    `json:"product_id"`
		VariantIDs []string  `json:"variant_ids"`
		Outcome    string    `json:"outcome"`
		LastError  string    `json:"last_error,omitempty"`
		CreatedAt  time.Time `json:"created_at"`
	}
	views := make([]attemptView, 0, len(records))
	for _, record := range records {
		views = append(views, attemptView{
			EventID:    record.EventID,
			ProductID:  record.ProductID,
			VariantIDs: record.VariantIDs,
			Outcome:    record.Outcome,
			LastError:  record.LastError,
			CreatedAt:  record.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": views})
}

func (s *Server) handleCartCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	count, known := s.lastCount, s.hasCount
	s.mu.Unlock()
	if !known {
		http.Error(w, "cart count is not known yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
