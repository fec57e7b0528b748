package models

import (
	"time"
)

type LogSeverity string

const (
	SeverityInfo     LogSeverity = "INFO"
	SeverityWarning  LogSeverity = "WARNING"
	SeverityCritical LogSeverity = "CRITICAL"
)

// SecurityLog is an append-only record of a security-relevant action
type SecurityLog struct {
	ID        string      `json:"id" bson:"_id"`
	AccountID string      `json:"account_id" bson:"account_id"`
	Action    string      `json:"action" bson:"action"`
	Details   string      `json:"details" bson:"details"`
	Severity  LogSeverity `json:"severity" bson:"severity"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}

// AuditEntry records a privileged mutation that passed secondary
// authorization. Append-only.
type AuditEntry struct {
	ID         string    `json:"id" bson:"_id"`
	AdminID    string    `json:"admin_id" bson:"admin_id"`
	TargetID   string    `json:"target_id" bson:"target_id"`
	ActionType string    `json:"action_type" bson:"action_type"`
	OldValue   string    `json:"old_value" bson:"old_value"`
	NewValue   string    `json:"new_value" bson:"new_value"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}
