package models

import (
	"time"
)

type AccountRole string

const (
	// RoleUser is a standard mesh participant
	RoleUser AccountRole = "USER"

	// RoleCommission is the privileged administrative role
	RoleCommission AccountRole = "COMMISSION"
)

type AccountStatus string

const (
	// StatusActive is the normal operating state
	StatusActive AccountStatus = "ACTIVE"

	// StatusSuspicious marks accounts above the suspicious balance threshold
	StatusSuspicious AccountStatus = "SUSPICIOUS"

	// StatusBlocked bars the account from transfers and login; only an
	// administrator can clear it
	StatusBlocked AccountStatus = "BLOCKED"

	// StatusFrozen bars outgoing transfers but still allows login
	StatusFrozen AccountStatus = "FROZEN"
)

// Card is the payment card embedded in every account
type Card struct {
	ID       string    `json:"id" db:"card_id"`
	Name     string    `json:"name" db:"card_name"`
	IssuedAt time.Time `json:"issued_at" db:"card_issued_at"`
}

// Account represents a mesh participant holding a balance
type Account struct {
	ID            string        `json:"id" db:"id"`
	Username      string        `json:"username" db:"username"`
	Password      string        `json:"-" db:"password"`
	Role          AccountRole   `json:"role" db:"role"`
	Status        AccountStatus `json:"status" db:"status"`
	Balance       float64       `json:"balance" db:"balance"`
	Card          Card          `json:"card"`
	LastLogin     *time.Time    `json:"last_login,omitempty" db:"last_login"`
	LoginAttempts int           `json:"login_attempts" db:"login_attempts"`
	OriginAddr    string        `json:"origin_addr,omitempty" db:"origin_addr"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// represents the request to register a new account
type RegisterRequest struct {
	ID       string `json:"id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

// commission sign-in uses the fixed clearance pair instead of account credentials
type CommissionLoginRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// LoginResponse carries the session token alongside the account
type LoginResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}
