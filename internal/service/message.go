package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cyberone/financial-mesh/internal/db"
	"github.com/cyberone/financial-mesh/internal/models"
)

// MessageService handles the plaintext message feed between accounts.
type MessageService struct {
	messages db.MessageStore
	accounts db.AccountStore
	logger   *zap.Logger
}

// creates a new MessageService
func NewMessageService(messages db.MessageStore, accounts db.AccountStore, logger *zap.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		accounts: accounts,
		logger:   logger,
	}
}

// Send appends a message from one account to another
func (s *MessageService) Send(ctx context.Context, fromID, toID, content string) (*models.Message, error) {
	if _, err := s.accounts.GetAccount(ctx, toID); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", toID, ErrNotFound)
	}

	msg := &models.Message{
		ID:        newMessageID(),
		FromID:    fromID,
		ToID:      toID,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.logger.Debug("message sent", zap.String("from", fromID), zap.String("to", toID))
	return msg, nil
}

// Conversation returns the history between two accounts, oldest first
func (s *MessageService) Conversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	return s.messages.ListConversation(ctx, a, b)
}

// History returns everything an account sent or received; the commission
// panel uses it to review a single participant.
func (s *MessageService) History(ctx context.Context, accountID string) ([]*models.Message, error) {
	return s.messages.ListMessagesByAccount(ctx, accountID)
}
