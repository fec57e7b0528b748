package db

import (
	"context"
	"errors"

	"github.com/cyberone/financial-mesh/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist
var ErrNotFound = errors.New("not found")

// AccountStore persists mesh accounts
type AccountStore interface {
	CreateAccount(ctx context.Context, acc *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, acc *models.Account) error
	ListAccounts(ctx context.Context) ([]*models.Account, error)
}

// TransactionStore persists the transfer ledger
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, limit, offset int) ([]*models.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error)
}

// MessageStore persists the append-only message feed
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	ListConversation(ctx context.Context, a, b string) ([]*models.Message, error)
	ListMessagesByAccount(ctx context.Context, accountID string) ([]*models.Message, error)
}

// LogStore persists the append-only security log
type LogStore interface {
	AppendLog(ctx context.Context, entry *models.SecurityLog) error
	ListLogs(ctx context.Context, limit, offset int) ([]*models.SecurityLog, error)
}

// AuditStore persists the append-only audit trail of privileged actions
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	ListAudit(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error)
}
