package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/models"
)

// EventPublisher pushes mesh events to interested consumers so they do not
// poll the store. A nil publisher disables eventing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, evt *models.Event) error
}

// TransferService executes balance transfers, applies the fee policy,
// scores risk and drives account status through the threshold classifier.
type TransferService struct {
	accounts db.AccountStore
	txs      db.TransactionStore
	logs     db.LogStore
	events   EventPublisher
	logger   *zap.Logger
}

// creates a new TransferService
func NewTransferService(accounts db.AccountStore, txs db.TransactionStore, logs db.LogStore, events EventPublisher, logger *zap.Logger) *TransferService {
	return &TransferService{
		accounts: accounts,
		txs:      txs,
		logs:     logs,
		events:   events,
		logger:   logger,
	}
}

// Transfer moves amount from sender to receiver. The sender pays the
// commission twice on top of the principal; the receiver is credited the
// principal unchanged. A high risk score flags the transaction but never
// blocks it.
func (s *TransferService) Transfer(ctx context.Context, senderID, receiverID string, amount float64) (*models.Transaction, error) {
	sender, err := s.accounts.GetAccount(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("sender %s: %w", senderID, ErrNotFound)
	}
	receiver, err := s.accounts.GetAccount(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("receiver %s: %w", receiverID, ErrNotFound)
	}

	if sender.Status == models.StatusBlocked || sender.Status == models.StatusFrozen {
		return nil, ErrAccessRestricted
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Double surcharge policy: the fee is charged twice and both halves
	// come out of the sender.
	singleFee := amount * FeeRate
	totalFee := singleFee * FeeSurchargeFactor
	totalDeduction := amount + totalFee

	if sender.Balance < totalDeduction {
		return nil, ErrInsufficientFunds
	}

	// Risk is the transfer's share of the sender's pre-debit balance.
	riskScore := (amount / sender.Balance) * 100
	status := models.Completed
	if riskScore > RiskScoreHighTransfer {
		status = models.Flagged
	}

	sender.Balance -= totalDeduction
	receiver.Balance += amount

	if err := s.classify(ctx, sender); err != nil {
		return nil, err
	}
	if err := s.classify(ctx, receiver); err != nil {
		return nil, err
	}

	if err := s.accounts.UpdateAccount(ctx, sender); err != nil {
		return nil, fmt.Errorf("failed to update sender: %w", err)
	}
	if err := s.accounts.UpdateAccount(ctx, receiver); err != nil {
		return nil, fmt.Errorf("failed to update receiver: %w", err)
	}

	tx := &models.Transaction{
		ID:         newTransactionID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		TotalFee:   totalFee,
		Status:     status,
		Type:       models.TypeTransfer,
		Metadata:   map[string]string{"risk_score": fmt.Sprintf("%.2f", riskScore)},
		Timestamp:  time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	severity := models.SeverityInfo
	if status == models.Flagged {
		severity = models.SeverityWarning
	}
	if err := s.appendLog(ctx, senderID, "TRANSACTION",
		fmt.Sprintf("Transfer %.2f %s to %s. Fee: %.2f. Risk: %s", amount, CurrencyCode, receiverID, totalFee, status),
		severity); err != nil {
		return nil, err
	}

	s.publish(ctx, &models.Event{
		Type:          models.EventTransfer,
		AccountID:     senderID,
		TransactionID: tx.ID,
		Severity:      severity,
		Details:       fmt.Sprintf("%s -> %s: %.2f %s", senderID, receiverID, amount, CurrencyCode),
		Timestamp:     tx.Timestamp,
	})

	s.logger.Info("transfer executed",
		zap.String("tx_id", tx.ID),
		zap.String("sender", senderID),
		zap.String("receiver", receiverID),
		zap.Float64("amount", amount),
		zap.String("status", string(status)))

	return tx, nil
}

// Refund moves a transaction's principal from receiver back to sender and
// marks it reverted. The fee stays with the platform. Unlike Transfer, this
// path does not re-run the status classifier on either account.
func (s *TransferService) Refund(ctx context.Context, txID string) error {
	tx, err := s.txs.GetTransaction(ctx, txID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, txID)
	}
	if tx.Status == models.Reverted {
		return fmt.Errorf("%w: %s already reverted", ErrInvalidTransaction, txID)
	}

	sender, err := s.accounts.GetAccount(ctx, tx.SenderID)
	if err != nil {
		return fmt.Errorf("sender %s: %w", tx.SenderID, ErrNotFound)
	}
	receiver, err := s.accounts.GetAccount(ctx, tx.ReceiverID)
	if err != nil {
		return fmt.Errorf("receiver %s: %w", tx.ReceiverID, ErrNotFound)
	}

	if receiver.Balance < tx.Amount {
		return fmt.Errorf("receiver cannot cover refund: %w", ErrInsufficientFunds)
	}

	receiver.Balance -= tx.Amount
	sender.Balance += tx.Amount
	tx.Status = models.Reverted

	if err := s.accounts.UpdateAccount(ctx, sender); err != nil {
		return fmt.Errorf("failed to update sender: %w", err)
	}
	if err := s.accounts.UpdateAccount(ctx, receiver); err != nil {
		return fmt.Errorf("failed to update receiver: %w", err)
	}
	if err := s.txs.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	s.logger.Info("transaction reverted",
		zap.String("tx_id", tx.ID),
		zap.Float64("amount", tx.Amount))

	return nil
}

// ListByAccount returns transfers the account sent or received, newest first
func (s *TransferService) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, error) {
	return s.txs.ListTransactionsByAccount(ctx, accountID, limit, offset)
}

// classify re-evaluates an account's status from its balance. Blocked is
// sticky: the classifier never clears it.
func (s *TransferService) classify(ctx context.Context, acc *models.Account) error {
	if acc.Status == models.StatusBlocked {
		return nil
	}

	switch {
	case acc.Balance >= ThresholdBlock:
		acc.Status = models.StatusBlocked
		if err := s.appendLog(ctx, acc.ID, "AUTO_SENTINEL_BLOCK",
			fmt.Sprintf("Critical balance limit breach: %.2f", acc.Balance),
			models.SeverityCritical); err != nil {
			return err
		}
		s.publish(ctx, &models.Event{
			Type:      models.EventStatusChange,
			AccountID: acc.ID,
			Severity:  models.SeverityCritical,
			Details:   fmt.Sprintf("auto-blocked at balance %.2f", acc.Balance),
			Timestamp: time.Now(),
		})
	case acc.Balance >= ThresholdSuspicious:
		acc.Status = models.StatusSuspicious
		if err := s.appendLog(ctx, acc.ID, "RISK_ADVISORY",
			fmt.Sprintf("High balance threshold reached: %.2f", acc.Balance),
			models.SeverityWarning); err != nil {
			return err
		}
	case acc.Status == models.StatusSuspicious:
		acc.Status = models.StatusActive
	}
	return nil
}

func (s *TransferService) appendLog(ctx context.Context, accountID, action, details string, severity models.LogSeverity) error {
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

// eventing is best-effort; a publish failure never fails the operation
func (s *TransferService) publish(ctx context.Context, evt *models.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", zap.Error(err))
	}
}
