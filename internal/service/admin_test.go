package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cyberone/financial-mesh/internal/models"
)

func TestPerformRejectsWrongSecondaryPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	err := env.admin.Perform(ctx, "COMM-ROOT", "wrong-key", SetBalance{TargetID: "NODE-1", Value: 0})
	if !errors.Is(err, ErrSecondaryAuthRejected) {
		t.Fatalf("expected ErrSecondaryAuthRejected, got %v", err)
	}

	// the command must not have run
	if bal := env.account(t, "NODE-1").Balance; !almostEqual(bal, 1000) {
		t.Errorf("balance mutated despite rejected auth: %.2f", bal)
	}

	logs := env.logsWithAction(t, "SEC_COMM_FAILURE")
	if len(logs) != 1 {
		t.Fatalf("expected exactly one failure log, got %d", len(logs))
	}
	if logs[0].Severity != models.SeverityCritical || logs[0].AccountID != "COMM-ROOT" {
		t.Errorf("unexpected failure log: %+v", logs[0])
	}

	if entries := env.auditEntries(t); len(entries) != 0 {
		t.Errorf("rejected command must not be audited, got %d entries", len(entries))
	}
}

func TestSetBalance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	err := env.admin.Perform(ctx, "COMM-ROOT", testSecondaryPassword,
		SetBalance{TargetID: "NODE-1", Value: 2500.5})
	if err != nil {
		t.Fatalf("set balance failed: %v", err)
	}

	if bal := env.account(t, "NODE-1").Balance; !almostEqual(bal, 2500.5) {
		t.Errorf("expected balance 2500.50, got %.2f", bal)
	}

	entries := env.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ActionType != "BALANCE_ADJUST" || entry.TargetID != "NODE-1" || entry.AdminID != "COMM-ROOT" {
		t.Errorf("unexpected audit entry: %+v", entry)
	}
	if entry.OldValue != "1000.00" || entry.NewValue != "2500.50" {
		t.Errorf("expected old/new 1000.00/2500.50, got %s/%s", entry.OldValue, entry.NewValue)
	}
}

func TestSetBalanceSkipsClassifier(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusActive)

	err := env.admin.Perform(ctx, "COMM-ROOT", testSecondaryPassword,
		SetBalance{TargetID: "NODE-1", Value: 150000})
	if err != nil {
		t.Fatalf("set balance failed: %v", err)
	}

	// an override above the block threshold does not trigger the classifier
	if status := env.account(t, "NODE-1").Status; status != models.StatusActive {
		t.Errorf("balance override must not reclassify, got %s", status)
	}
}

func TestSetStatusClearsBlock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-1", 1000, models.StatusBlocked)

	err := env.admin.Perform(ctx, "COMM-ROOT", testSecondaryPassword,
		SetStatus{TargetID: "NODE-1", Value: models.StatusActive})
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	if status := env.account(t, "NODE-1").Status; status != models.StatusActive {
		t.Errorf("expected ACTIVE after override, got %s", status)
	}

	entries := env.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].ActionType != "STATUS_OVERRIDE" ||
		entries[0].OldValue != "BLOCKED" || entries[0].NewValue != "ACTIVE" {
		t.Errorf("unexpected audit entry: %+v", entries[0])
	}
}

func TestSetBalanceUnknownTarget(t *testing.T) {
	env := newTestEnv()
	err := env.admin.Perform(context.Background(), "COMM-ROOT", testSecondaryPassword,
		SetBalance{TargetID: "GHOST", Value: 100})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if entries := env.auditEntries(t); len(entries) != 0 {
		t.Errorf("failed command must not be audited, got %d entries", len(entries))
	}
}

func TestRevertTransaction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-A", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-B", 500, models.StatusActive)

	tx, err := env.transfer.Transfer(ctx, "NODE-A", "NODE-B", 100)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	err = env.admin.Perform(ctx, "COMM-ROOT", testSecondaryPassword,
		RevertTransaction{TxID: tx.ID})
	if err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	// principal returned, fee kept
	if bal := env.account(t, "NODE-A").Balance; !almostEqual(bal, 990) {
		t.Errorf("expected sender balance 990, got %.2f", bal)
	}
	if bal := env.account(t, "NODE-B").Balance; !almostEqual(bal, 500) {
		t.Errorf("expected receiver balance 500, got %.2f", bal)
	}

	entries := env.auditEntries(t)
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].ActionType != "TX_ROLLBACK" ||
		entries[0].OldValue != "COMPLETED" || entries[0].NewValue != "REVERTED" {
		t.Errorf("unexpected audit entry: %+v", entries[0])
	}

	// reverting again fails and leaves no second audit entry
	err = env.admin.Perform(ctx, "COMM-ROOT", testSecondaryPassword,
		RevertTransaction{TxID: tx.ID})
	if !errors.Is(err, ErrInvalidTransaction) {
		t.Fatalf("expected ErrInvalidTransaction on double revert, got %v", err)
	}
	if entries := env.auditEntries(t); len(entries) != 1 {
		t.Errorf("double revert must not add an audit entry, got %d", len(entries))
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-A", 10000, models.StatusActive)
	env.seedAccount(t, "NODE-B", 1000, models.StatusActive)
	env.seedAccount(t, "LOCKED", 0, models.StatusBlocked)

	// completed transfer: 100 volume, 10 fee
	if _, err := env.transfer.Transfer(ctx, "NODE-A", "NODE-B", 100); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	// flagged transfer: excluded from volume, fee still counted
	if _, err := env.transfer.Transfer(ctx, "NODE-B", "NODE-A", 500); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	stats, err := env.admin.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !almostEqual(stats.TotalVolume, 100) {
		t.Errorf("expected volume 100, got %.2f", stats.TotalVolume)
	}
	if !almostEqual(stats.TotalFees, 60) {
		t.Errorf("expected fees 60, got %.2f", stats.TotalFees)
	}
	if stats.BlockedAccounts != 1 {
		t.Errorf("expected 1 blocked account, got %d", stats.BlockedAccounts)
	}
}
