package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/models"
)

// AdminCommand is one of the closed set of privileged mutations. Each
// command computes its own audit old/new values from the store so the
// caller cannot spoof the trail.
type AdminCommand interface {
	isAdminCommand()
}

// SetBalance force-sets an account's balance. The classifier does not run;
// balance overrides are taken at face value.
type SetBalance struct {
	TargetID string
	Value    float64
}

// SetStatus force-sets an account's status, including clearing a block.
type SetStatus struct {
	TargetID string
	Value    models.AccountStatus
}

// RevertTransaction rolls a transfer back through the refund path, so the
// refund rules (no double revert, receiver must cover it) still apply.
type RevertTransaction struct {
	TxID string
}

func (SetBalance) isAdminCommand()        {}
func (SetStatus) isAdminCommand()         {}
func (RevertTransaction) isAdminCommand() {}

// AdminService gates privileged mutations behind the secondary password and
// records every executed one to the audit trail.
type AdminService struct {
	accounts db.AccountStore
	txs      db.TransactionStore
	logs     db.LogStore
	audit    db.AuditStore
	transfer *TransferService
	events   EventPublisher
	logger   *zap.Logger

	secondaryPassword string
}

// creates a new AdminService
func NewAdminService(accounts db.AccountStore, txs db.TransactionStore, logs db.LogStore, audit db.AuditStore, transfer *TransferService, events EventPublisher, logger *zap.Logger, secondaryPassword string) *AdminService {
	return &AdminService{
		accounts:          accounts,
		txs:               txs,
		logs:              logs,
		audit:             audit,
		transfer:          transfer,
		events:            events,
		logger:            logger,
		secondaryPassword: secondaryPassword,
	}
}

// Perform checks the secondary password, executes the command once and
// appends exactly one audit entry. A rejected password appends exactly one
// critical security-log entry attributed to the acting admin.
func (s *AdminService) Perform(ctx context.Context, adminID, secondaryPassword string, cmd AdminCommand) error {
	if secondaryPassword != s.secondaryPassword {
		if err := s.appendLog(ctx, adminID, "SEC_COMM_FAILURE",
			"Unauthorized attempt to bypass secondary auth", models.SeverityCritical); err != nil {
			return err
		}
		s.publish(ctx, &models.Event{
			Type:      models.EventAuthFailure,
			AccountID: adminID,
			Severity:  models.SeverityCritical,
			Details:   "secondary authorization rejected",
			Timestamp: time.Now(),
		})
		return ErrSecondaryAuthRejected
	}

	entry, err := s.execute(ctx, cmd)
	if err != nil {
		return err
	}

	entry.ID = newAuditID()
	entry.AdminID = adminID
	entry.Timestamp = time.Now()
	if err := s.audit.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	s.publish(ctx, &models.Event{
		Type:      models.EventAdminAction,
		AccountID: adminID,
		Severity:  models.SeverityInfo,
		Details:   fmt.Sprintf("%s on %s: %s -> %s", entry.ActionType, entry.TargetID, entry.OldValue, entry.NewValue),
		Timestamp: entry.Timestamp,
	})

	s.logger.Info("admin action executed",
		zap.String("admin", adminID),
		zap.String("action", entry.ActionType),
		zap.String("target", entry.TargetID))

	return nil
}

// execute runs the mutation and returns a partially filled audit entry
// (target, action type, old/new values).
func (s *AdminService) execute(ctx context.Context, cmd AdminCommand) (*models.AuditEntry, error) {
	switch c := cmd.(type) {
	case SetBalance:
		acc, err := s.accounts.GetAccount(ctx, c.TargetID)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", c.TargetID, ErrNotFound)
		}
		old := acc.Balance
		acc.Balance = c.Value
		if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		return &models.AuditEntry{
			TargetID:   c.TargetID,
			ActionType: "BALANCE_ADJUST",
			OldValue:   fmt.Sprintf("%.2f", old),
			NewValue:   fmt.Sprintf("%.2f", c.Value),
		}, nil

	case SetStatus:
		acc, err := s.accounts.GetAccount(ctx, c.TargetID)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", c.TargetID, ErrNotFound)
		}
		old := acc.Status
		acc.Status = c.Value
		if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		return &models.AuditEntry{
			TargetID:   c.TargetID,
			ActionType: "STATUS_OVERRIDE",
			OldValue:   string(old),
			NewValue:   string(c.Value),
		}, nil

	case RevertTransaction:
		tx, err := s.txs.GetTransaction(ctx, c.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransaction, c.TxID)
		}
		old := tx.Status
		if err := s.transfer.Refund(ctx, c.TxID); err != nil {
			return nil, err
		}
		return &models.AuditEntry{
			TargetID:   c.TxID,
			ActionType: "TX_ROLLBACK",
			OldValue:   string(old),
			NewValue:   string(models.Reverted),
		}, nil

	default:
		return nil, fmt.Errorf("unknown admin command %T", cmd)
	}
}

// ListAccounts returns every account for the commission panel
func (s *AdminService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.accounts.ListAccounts(ctx)
}

// ListLedger returns the global transaction ledger, newest first
func (s *AdminService) ListLedger(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	return s.txs.ListTransactions(ctx, limit, offset)
}

// ListLogs returns security-log entries, newest first
func (s *AdminService) ListLogs(ctx context.Context, limit, offset int) ([]*models.SecurityLog, error) {
	return s.logs.ListLogs(ctx, limit, offset)
}

// ListAudit returns audit entries, newest first
func (s *AdminService) ListAudit(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	return s.audit.ListAudit(ctx, limit, offset)
}

// Stats aggregates the panel figures: completed volume, total fees taken
// and the number of blocked accounts.
func (s *AdminService) Stats(ctx context.Context) (*models.MeshStats, error) {
	txs, err := s.txs.ListTransactions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	stats := &models.MeshStats{}
	for _, tx := range txs {
		if tx.Status == models.Completed {
			stats.TotalVolume += tx.Amount
		}
		stats.TotalFees += tx.TotalFee
	}
	for _, acc := range accounts {
		if acc.Status == models.StatusBlocked {
			stats.BlockedAccounts++
		}
	}
	return stats, nil
}

func (s *AdminService) appendLog(ctx context.Context, accountID, action, details string, severity models.LogSeverity) error {
	entry := &models.SecurityLog{
		ID:        newLogID(),
		AccountID: accountID,
		Action:    action,
		Details:   details,
		Severity:  severity,
		Timestamp: time.Now(),
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to append security log: %w", err)
	}
	return nil
}

func (s *AdminService) publish(ctx context.Context, evt *models.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", zap.Error(err))
	}
}
