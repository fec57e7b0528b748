package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cyberone/financial-mesh/internal/models"
)

// Memory is an in-process implementation of every store interface. It backs
// the tests and returns copies so callers cannot mutate stored state without
// an explicit update.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	txs      map[string]*models.Transaction
	txOrder  []string
	messages []*models.Message
	logs     []*models.SecurityLog
	audit    []*models.AuditEntry
}

// creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*models.Account),
		txs:      make(map[string]*models.Transaction),
	}
}

func copyAccount(acc *models.Account) *models.Account {
	dup := *acc
	if acc.LastLogin != nil {
		t := *acc.LastLogin
		dup.LastLogin = &t
	}
	return &dup
}

func copyTransaction(tx *models.Transaction) *models.Transaction {
	dup := *tx
	if tx.Metadata != nil {
		dup.Metadata = make(map[string]string, len(tx.Metadata))
		for k, v := range tx.Metadata {
			dup.Metadata[k] = v
		}
	}
	return &dup
}

func (m *Memory) CreateAccount(ctx context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acc.ID]; ok {
		return fmt.Errorf("account %s already exists", acc.ID)
	}
	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now
	m.accounts[acc.ID] = copyAccount(acc)
	return nil
}

func (m *Memory) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return copyAccount(acc), nil
}

func (m *Memory) UpdateAccount(ctx context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[acc.ID]; !ok {
		return fmt.Errorf("account %s: %w", acc.ID, ErrNotFound)
	}
	acc.UpdatedAt = time.Now()
	m.accounts[acc.ID] = copyAccount(acc)
	return nil
}

func (m *Memory) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		out = append(out, copyAccount(acc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs[tx.ID] = copyTransaction(tx)
	m.txOrder = append(m.txOrder, tx.ID)
	return nil
}

func (m *Memory) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txs[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return copyTransaction(tx), nil
}

func (m *Memory) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.txs[tx.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	m.txs[tx.ID] = copyTransaction(tx)
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pageTransactions(func(*models.Transaction) bool { return true }, limit, offset), nil
}

func (m *Memory) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pageTransactions(func(tx *models.Transaction) bool {
		return tx.SenderID == accountID || tx.ReceiverID == accountID
	}, limit, offset), nil
}

// newest first, mirroring the Mongo sort
func (m *Memory) pageTransactions(match func(*models.Transaction) bool, limit, offset int) []*models.Transaction {
	out := make([]*models.Transaction, 0)
	skipped := 0
	for i := len(m.txOrder) - 1; i >= 0; i-- {
		tx := m.txs[m.txOrder[i]]
		if !match(tx) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, copyTransaction(tx))
	}
	return out
}

func (m *Memory) SaveMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dup := *msg
	m.messages = append(m.messages, &dup)
	return nil
}

func (m *Memory) ListConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Message, 0)
	for _, msg := range m.messages {
		if (msg.FromID == a && msg.ToID == b) || (msg.FromID == b && msg.ToID == a) {
			dup := *msg
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (m *Memory) ListMessagesByAccount(ctx context.Context, accountID string) ([]*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Message, 0)
	for _, msg := range m.messages {
		if msg.FromID == accountID || msg.ToID == accountID {
			dup := *msg
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (m *Memory) AppendLog(ctx context.Context, entry *models.SecurityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dup := *entry
	m.logs = append(m.logs, &dup)
	return nil
}

func (m *Memory) ListLogs(ctx context.Context, limit, offset int) ([]*models.SecurityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.SecurityLog, 0)
	skipped := 0
	for i := len(m.logs) - 1; i >= 0; i-- {
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		dup := *m.logs[i]
		out = append(out, &dup)
	}
	return out, nil
}

func (m *Memory) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dup := *entry
	m.audit = append(m.audit, &dup)
	return nil
}

func (m *Memory) ListAudit(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.AuditEntry, 0)
	skipped := 0
	for i := len(m.audit) - 1; i >= 0; i-- {
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		dup := *m.audit[i]
		out = append(out, &dup)
	}
	return out, nil
}
