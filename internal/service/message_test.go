package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cyberone/financial-mesh/internal/models"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-A", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-B", 1000, models.StatusActive)

	msg, err := env.messages.Send(ctx, "NODE-A", "NODE-B", "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if msg.FromID != "NODE-A" || msg.ToID != "NODE-B" || msg.Content != "hello" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if msg.ID == "" {
		t.Errorf("expected an assigned message id")
	}
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	env := newTestEnv()
	env.seedAccount(t, "NODE-A", 1000, models.StatusActive)

	if _, err := env.messages.Send(context.Background(), "NODE-A", "GHOST", "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func TestConversationFiltering(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-A", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-B", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-C", 1000, models.StatusActive)

	for _, m := range []struct{ from, to, content string }{
		{"NODE-A", "NODE-B", "one"},
		{"NODE-B", "NODE-A", "two"},
		{"NODE-A", "NODE-C", "other thread"},
		{"NODE-C", "NODE-B", "another thread"},
	} {
		if _, err := env.messages.Send(ctx, m.from, m.to, m.content); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}

	conv, err := env.messages.Conversation(ctx, "NODE-A", "NODE-B")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(conv) != 2 {
		t.Fatalf("expected 2 messages in conversation, got %d", len(conv))
	}
	// oldest first, both directions
	if conv[0].Content != "one" || conv[1].Content != "two" {
		t.Errorf("unexpected conversation order: %q then %q", conv[0].Content, conv[1].Content)
	}
}

func TestMessageHistory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedAccount(t, "NODE-A", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-B", 1000, models.StatusActive)
	env.seedAccount(t, "NODE-C", 1000, models.StatusActive)

	if _, err := env.messages.Send(ctx, "NODE-A", "NODE-B", "to b"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := env.messages.Send(ctx, "NODE-C", "NODE-A", "from c"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := env.messages.Send(ctx, "NODE-B", "NODE-C", "unrelated"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	history, err := env.messages.History(ctx, "NODE-A")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages for NODE-A, got %d", len(history))
	}
	for _, msg := range history {
		if msg.FromID != "NODE-A" && msg.ToID != "NODE-A" {
			t.Errorf("history leaked an unrelated message: %+v", msg)
		}
	}
}
