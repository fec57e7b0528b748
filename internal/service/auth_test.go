package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cyberone/financial-mesh/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	acc, err := env.auth.Register(ctx, "NODE-1", "alice", "pw-1", "10.0.0.1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !almostEqual(acc.Balance, InitialBalance) {
		t.Errorf("expected initial balance %.2f, got %.2f", float64(InitialBalance), acc.Balance)
	}
	if acc.Status != models.StatusActive {
		t.Errorf("expected ACTIVE status, got %s", acc.Status)
	}
	if acc.Role != models.RoleUser {
		t.Errorf("expected USER role, got %s", acc.Role)
	}
	if !strings.HasPrefix(acc.Card.ID, "KB-") {
		t.Errorf("expected card id with KB- prefix, got %s", acc.Card.ID)
	}
	if acc.Card.Name != CardProduct {
		t.Errorf("expected card product %q, got %q", CardProduct, acc.Card.Name)
	}

	logs := env.logsWithAction(t, "REGISTER")
	if len(logs) != 1 {
		t.Fatalf("expected 1 register log, got %d", len(logs))
	}

	if _, err := env.auth.Register(ctx, "NODE-1", "bob", "pw-2", ""); !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists for duplicate id, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	// two failures first, then a success must clear the counter
	for i := 0; i < 2; i++ {
		if _, err := env.auth.Login(ctx, "NODE-1", "wrong"); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	}

	acc, err := env.auth.Login(ctx, "NODE-1", "secret-NODE-1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if acc.LoginAttempts != 0 {
		t.Errorf("successful login should reset attempts, got %d", acc.LoginAttempts)
	}
	if acc.LastLogin == nil {
		t.Errorf("successful login should stamp last_login")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	_, err := env.auth.Login(ctx, "NODE-1", "wrong")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if !strings.Contains(err.Error(), "attempt 1/5") {
		t.Errorf("expected attempt counter in error, got %q", err.Error())
	}
	if attempts := env.account(t, "NODE-1").LoginAttempts; attempts != 1 {
		t.Errorf("expected 1 recorded attempt, got %d", attempts)
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	env := newTestEnv()
	if _, err := env.auth.Login(context.Background(), "GHOST", "pw"); !errors.Is(err, ErrUnknownCredentials) {
		t.Errorf("expected ErrUnknownCredentials, got %v", err)
	}
}

func TestLoginBlockedAccount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusBlocked)

	if _, err := env.auth.Login(ctx, "NODE-1", "secret-NODE-1"); !errors.Is(err, ErrAccessForbidden) {
		t.Errorf("expected ErrAccessForbidden for blocked account, got %v", err)
	}
}

func TestLoginLockoutSequence(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	// five wrong passwords are each denied with an attempt counter
	for i := 1; i <= MaxLoginAttempts; i++ {
		_, err := env.auth.Login(ctx, "NODE-1", "wrong")
		if !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("attempt %d: expected ErrAccessDenied, got %v", i, err)
		}
	}

	// the sixth call trips the lockout before the password is even read,
	// so the correct password still locks the account
	_, err := env.auth.Login(ctx, "NODE-1", "secret-NODE-1")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts on sixth call, got %v", err)
	}
	if status := env.account(t, "NODE-1").Status; status != models.StatusBlocked {
		t.Fatalf("expected account BLOCKED after lockout, got %s", status)
	}

	logs := env.logsWithAction(t, "BRUTE_FORCE_DETECTED")
	if len(logs) != 1 || logs[0].Severity != models.SeverityCritical {
		t.Fatalf("expected one critical brute-force log, got %+v", logs)
	}

	// once blocked, every further login is forbidden outright
	if _, err := env.auth.Login(ctx, "NODE-1", "secret-NODE-1"); !errors.Is(err, ErrAccessForbidden) {
		t.Errorf("expected ErrAccessForbidden after block, got %v", err)
	}
}

func TestCommissionLogin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.auth.CommissionLogin(ctx, "OVERLORD_X", "wrong-code"); !errors.Is(err, ErrUnknownCredentials) {
		t.Errorf("expected ErrUnknownCredentials for wrong code, got %v", err)
	}
	if _, err := env.auth.CommissionLogin(ctx, "someone", testCommissionCode); !errors.Is(err, ErrUnknownCredentials) {
		t.Errorf("expected ErrUnknownCredentials for wrong username, got %v", err)
	}

	acc, err := env.auth.CommissionLogin(ctx, testCommissionUsername, testCommissionCode)
	if err != nil {
		t.Fatalf("commission login failed: %v", err)
	}
	if acc.ID != CommissionAccountID {
		t.Errorf("expected account %s, got %s", CommissionAccountID, acc.ID)
	}
	if acc.Role != models.RoleCommission {
		t.Errorf("expected COMMISSION role, got %s", acc.Role)
	}

	// a second sign-in reuses the account instead of creating another
	again, err := env.auth.CommissionLogin(ctx, testCommissionUsername, testCommissionCode)
	if err != nil {
		t.Fatalf("second commission login failed: %v", err)
	}
	if again.ID != acc.ID {
		t.Errorf("expected same commission account, got %s", again.ID)
	}

	accounts, err := env.store.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected exactly one account, got %d", len(accounts))
	}
}
