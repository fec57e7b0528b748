package models

import (
	"time"
)

type EventType string

const (
	// EventTransfer is emitted after every executed transfer
	EventTransfer EventType = "TRANSFER"

	// EventStatusChange is emitted when the classifier or an admin changes
	// an account's status
	EventStatusChange EventType = "STATUS_CHANGE"

	// EventAuthFailure is emitted on failed logins and rejected secondary
	// authorization
	EventAuthFailure EventType = "AUTH_FAILURE"

	// EventAdminAction is emitted after a privileged mutation
	EventAdminAction EventType = "ADMIN_ACTION"
)

// Event is published to the mesh event queue so consumers do not have to
// poll the store for changes.
type Event struct {
	Type          EventType   `json:"type"`
	AccountID     string      `json:"account_id,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
	Severity      LogSeverity `json:"severity"`
	Details       string      `json:"details"`
	Timestamp     time.Time   `json:"timestamp"`
}
