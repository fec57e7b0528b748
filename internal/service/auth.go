package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/models"
)

// CommissionAccountID is the well-known id of the privileged account
// created on first commission sign-in.
const CommissionAccountID = "COMM-ROOT"

// AuthService handles registration and login. Credentials are compared
// verbatim; the platform has no real credential store.
type AuthService struct {
	accounts db.AccountStore
	logs     db.LogStore
	events   EventPublisher
	logger   *zap.Logger

	commissionUsername string
	commissionCode     string
}

// creates a new AuthService; the commission pair gates the privileged login
func NewAuthService(accounts db.AccountStore, logs db.LogStore, events EventPublisher, logger *zap.Logger, commissionUsername, commissionCode string) *AuthService {
	return &AuthService{
		accounts:           accounts,
		logs:               logs,
		events:             events,
		logger:             logger,
		commissionUsername: commissionUsername,
		commissionCode:     commissionCode,
	}
}

// GetAccount returns an account by id
func (s *AuthService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return acc, nil
}

// Register creates a standard account with the initial balance and an
// issued card. The registrant picks their own id.
func (s *AuthService) Register(ctx context.Context, id, username, password, originAddr string) (*models.Account, error) {
	if _, err := s.accounts.GetAccount(ctx, id); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check registry: %w", err)
	}

	acc := &models.Account{
		ID:       id,
		Username: username,
		Password: password,
		Role:     models.RoleUser,
		Status:   models.StatusActive,
		Balance:  InitialBalance,
		Card: models.Card{
			ID:       newCardID(),
			Name:     CardProduct,
			IssuedAt: time.Now(),
		},
		LoginAttempts: 0,
		OriginAddr:    originAddr,
	}
	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.appendLog(ctx, id, "REGISTER", "Account initialized", models.SeverityInfo); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("id", id), zap.String("username", username))
	return acc, nil
}

// Login verifies credentials. The attempt-counter check runs before the
// password comparison, so a sixth call locks the account even when the
// password is right.
func (s *AuthService) Login(ctx context.Context, id, password string) (*models.Account, error) {
	acc, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, ErrUnknownCredentials
	}

	if acc.Status == models.StatusBlocked {
		return nil, ErrAccessForbidden
	}

	if acc.LoginAttempts >= MaxLoginAttempts {
		acc.Status = models.StatusBlocked
		if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		if err := s.appendLog(ctx, id, "BRUTE_FORCE_DETECTED", "Auto-blocking account", models.SeverityCritical); err != nil {
			return nil, err
		}
		s.publish(ctx, &models.Event{
			Type:      models.EventAuthFailure,
			AccountID: id,
			Severity:  models.SeverityCritical,
			Details:   "account locked after repeated login failures",
			Timestamp: time.Now(),
		})
		return nil, ErrTooManyAttempts
	}

	if acc.Password == password {
		acc.LoginAttempts = 0
		now := time.Now()
		acc.LastLogin = &now
		if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		if err := s.appendLog(ctx, id, "LOGIN_SUCCESS", "Session established", models.SeverityInfo); err != nil {
			return nil, err
		}
		return acc, nil
	}

	acc.LoginAttempts++
	if err := s.accounts.UpdateAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := s.appendLog(ctx, id, "LOGIN_FAILURE",
		fmt.Sprintf("Attempt %d", acc.LoginAttempts), models.SeverityWarning); err != nil {
		return nil, err
	}
	s.publish(ctx, &models.Event{
		Type:      models.EventAuthFailure,
		AccountID: id,
		Severity:  models.SeverityWarning,
		Details:   fmt.Sprintf("failed login attempt %d/%d", acc.LoginAttempts, MaxLoginAttempts),
		Timestamp: time.Now(),
	})
	return nil, fmt.Errorf("%w: attempt %d/%d", ErrAccessDenied, acc.LoginAttempts, MaxLoginAttempts)
}

// CommissionLogin checks the fixed clearance pair and returns the
// privileged account, creating it on first use.
func (s *AuthService) CommissionLogin(ctx context.Context, username, code string) (*models.Account, error) {
	if username != s.commissionUsername || code != s.commissionCode {
		return nil, ErrUnknownCredentials
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, acc := range accounts {
		if acc.Role == models.RoleCommission {
			return acc, nil
		}
	}

	acc := &models.Account{
		ID:       CommissionAccountID,
		Username: "COMMISSION_OFFICER",
		Password: code,
		Role:     models.RoleCommission,
		Status:   models.StatusActive,
		Balance:  InitialBalance,
		Card: models.Card{
			ID:       newCardID(),
			Name:     CardProduct,
			IssuedAt: time.Now(),
		},
	}
	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		return nil, fmt.Errorf("failed to create commission account: %w", err)
	}
	if err := s.appendLog(ctx, acc.ID, "REGISTER", "Commission account initialized", models.SeverityInfo); err != nil {
		return nil, err
	}

	s.logger.Info("commission account created", zap.String("id", acc.ID))
	return acc, nil
}

func (s *AuthService) appendLog(ctx context.Context, accountID, action, details string, severity models.LogSeverity) error {
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

func (s *AuthService) publish(ctx context.Context, evt *models.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, evt); err != nil {
		s.logger.Warn("failed to publish event", zap.Error(err))
	}
}
