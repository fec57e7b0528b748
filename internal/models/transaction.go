package models

import (
	"time"
)

type TransactionType string

const (
	// TypeTransfer represents a peer-to-peer balance movement
	TypeTransfer TransactionType = "TRANSFER"

	// TypeAdjustment represents an administrative balance override
	TypeAdjustment TransactionType = "ADJUSTMENT"

	// TypeRefund represents a returned transfer
	TypeRefund TransactionType = "REFUND"
)

type TransactionStatus string

const (
	// Completed indicates the transfer executed without a risk flag
	Completed TransactionStatus = "COMPLETED"

	// Flagged indicates the transfer executed but exceeded the risk score
	// threshold; flagging is advisory, the movement still happened
	Flagged TransactionStatus = "FLAGGED"

	// Reverted indicates an administrator rolled the transfer back
	Reverted TransactionStatus = "REVERTED"
)

// Transaction represents a balance movement between two accounts
type Transaction struct {
	ID         string            `json:"id" bson:"_id"`
	SenderID   string            `json:"sender_id" bson:"sender_id"`
	ReceiverID string            `json:"receiver_id" bson:"receiver_id"`
	Amount     float64           `json:"amount" bson:"amount"`
	TotalFee   float64           `json:"total_fee" bson:"total_fee"`
	Status     TransactionStatus `json:"status" bson:"status"`
	Type       TransactionType   `json:"type" bson:"type"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp" bson:"timestamp"`
}

// represents the request to move funds to another account
type TransferRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
}

// MeshStats aggregates ledger figures for the commission panel
type MeshStats struct {
	TotalVolume     float64 `json:"total_volume"`
	TotalFees       float64 `json:"total_fees"`
	BlockedAccounts int     `json:"blocked_accounts"`
}
