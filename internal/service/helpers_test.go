package service

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/models"
)

const (
	testCommissionUsername = "OVERLORD_X"
	testCommissionCode     = "SEC-8800-PROTO-9"
	testSecondaryPassword  = "MASTER_KEY_ALPHA_2024"
)

// recordedEvents captures published events for assertions
type recordedEvents struct {
	mu     sync.Mutex
	events []*models.Event
}

func (r *recordedEvents) PublishEvent(ctx context.Context, evt *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

type testEnv struct {
	store    *db.Memory
	events   *recordedEvents
	transfer *TransferService
	auth     *AuthService
	admin    *AdminService
	messages *MessageService
}

func newTestEnv() *testEnv {
	store := db.NewMemory()
	events := &recordedEvents{}
	logger := zap.NewNop()

	transfer := NewTransferService(store, store, store, events, logger)
	return &testEnv{
		store:    store,
		events:   events,
		transfer: transfer,
		auth:     NewAuthService(store, store, events, logger, testCommissionUsername, testCommissionCode),
		admin:    NewAdminService(store, store, store, store, transfer, events, logger, testSecondaryPassword),
		messages: NewMessageService(store, store, logger),
	}
}

// seedAccount creates an account directly in the store
func (e *testEnv) seedAccount(t *testing.T, id string, balance float64, status models.AccountStatus) {
	t.Helper()
	acc := &models.Account{
		ID:       id,
		Username: id,
		Password: "secret-" + id,
		Role:     models.RoleUser,
		Status:   status,
		Balance:  balance,
	}
	if err := e.store.CreateAccount(context.Background(), acc); err != nil {
		t.Fatalf("failed to seed account %s: %v", id, err)
	}
}

// account fetches the current account state
func (e *testEnv) account(t *testing.T, id string) *models.Account {
	t.Helper()
	acc, err := e.store.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get account %s: %v", id, err)
	}
	return acc
}

// logsWithAction filters the security log by action tag
func (e *testEnv) logsWithAction(t *testing.T, action string) []*models.SecurityLog {
	t.Helper()
	all, err := e.store.ListLogs(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("failed to list logs: %v", err)
	}
	var out []*models.SecurityLog
	for _, entry := range all {
		if entry.Action == action {
			out = append(out, entry)
		}
	}
	return out
}

// auditEntries returns the full audit trail
func (e *testEnv) auditEntries(t *testing.T) []*models.AuditEntry {
	t.Helper()
	entries, err := e.store.ListAudit(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	return entries
}
