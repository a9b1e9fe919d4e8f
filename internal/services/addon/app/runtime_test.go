package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cartside/addons/internal/services/addon/domain"
	addonsqlite "github.com/cartside/addons/internal/services/addon/storage/sqlite"
)

func TestRun_RequiresStorefrontURL(t *testing.T) {
	err := Run(context.Background(), RuntimeConfig{})
	if err == nil {
		t.Fatal("Run() error = nil, want storefront URL error")
	}
	if !strings.Contains(err.Error(), "storefront URL") {
		t.Fatalf("Run() error = %v, want storefront URL error", err)
	}
}

func TestAttemptStoreRecorder_PersistsAttemptFields(t *testing.T) {
	store := openTempAddonStore(t)
	recorder := newAttemptStoreRecorder(store)

	err := recorder.RecordAttempt(context.Background(), domain.Attempt{
		EventID:    "evt-1",
		ProductID:  "prod-1",
		VariantIDs: []string{"var-1", "var-2"},
		Outcome:    domain.OutcomeAppended,
		CreatedAt:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	attempts, err := store.ListRecentAttempts(context.Background(), 10)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts len = %d, want 1", len(attempts))
	}
	if attempts[0].Outcome != string(domain.OutcomeAppended) {
		t.Fatalf("outcome = %q, want %q", attempts[0].Outcome, domain.OutcomeAppended)
	}
	if len(attempts[0].VariantIDs) != 2 || attempts[0].VariantIDs[0] != "var-1" {
		t.Fatalf("variant ids = %v, want [var-1 var-2]", attempts[0].VariantIDs)
	}
}

func TestAttemptStoreRecorder_NilStoreIsNoop(t *testing.T) {
	recorder := newAttemptStoreRecorder(nil)
	if err := recorder.RecordAttempt(context.Background(), domain.Attempt{EventID: "evt-1"}); err != nil {
		t.Fatalf("record attempt with nil store: %v", err)
	}
}

func openTempAddonStore(t *testing.T) *addonsqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "addon.db")
	store, err := addonsqlite.Open(path)
	if err != nil {
		t.Fatalf("open addon store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close addon store: %v", err)
		}
	})
	return store
}
