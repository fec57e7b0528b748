package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cyberone/financial-mesh/internal/models"
	_ "github.com/lib/pq"
)

// Postgres handles PostgreSQL database operations; it backs the accounts table
type Postgres struct {
	db *sql.DB
}

// creates a new Postgres instance
func NewPostgres(connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// initialize the database schema
func (p *Postgres) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR(64) PRIMARY KEY,
		username VARCHAR(128) NOT NULL,
		password VARCHAR(256) NOT NULL,
		role VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		balance DECIMAL(20, 2) NOT NULL,
		card_id VARCHAR(32) NOT NULL,
		card_name VARCHAR(64) NOT NULL,
		card_issued_at TIMESTAMP NOT NULL,
		last_login TIMESTAMP,
		login_attempts INT NOT NULL DEFAULT 0,
		origin_addr VARCHAR(64),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	_, err := p.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

// creates a new account
func (p *Postgres) CreateAccount(ctx context.Context, acc *models.Account) error {
	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	query := `
	INSERT INTO accounts (
		id, username, password, role, status, balance,
		card_id, card_name, card_issued_at,
		last_login, login_attempts, origin_addr, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := p.db.ExecContext(ctx, query,
		acc.ID, acc.Username, acc.Password, acc.Role, acc.Status, acc.Balance,
		acc.Card.ID, acc.Card.Name, acc.Card.IssuedAt,
		acc.LastLogin, acc.LoginAttempts, acc.OriginAddr, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// retrieves an account by ID
func (p *Postgres) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `
	SELECT id, username, password, role, status, balance,
		card_id, card_name, card_issued_at,
		last_login, login_attempts, origin_addr, created_at, updated_at
	FROM accounts
	WHERE id = $1`

	acc, err := scanAccount(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// writes back an account's mutable fields
func (p *Postgres) UpdateAccount(ctx context.Context, acc *models.Account) error {
	acc.UpdatedAt = time.Now()

	query := `
	UPDATE accounts
	SET username = $1, password = $2, role = $3, status = $4, balance = $5,
		last_login = $6, login_attempts = $7, updated_at = $8
	WHERE id = $9`

	res, err := p.db.ExecContext(ctx, query,
		acc.Username, acc.Password, acc.Role, acc.Status, acc.Balance,
		acc.LastLogin, acc.LoginAttempts, acc.UpdatedAt, acc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("account %s: %w", acc.ID, ErrNotFound)
	}
	return nil
}

// retrieves all accounts ordered by creation time
func (p *Postgres) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	query := `
	SELECT id, username, password, role, status, balance,
		card_id, card_name, card_issued_at,
		last_login, login_attempts, origin_addr, created_at, updated_at
	FROM accounts
	ORDER BY created_at`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var acc models.Account
	var lastLogin sql.NullTime
	var originAddr sql.NullString

	err := row.Scan(
		&acc.ID, &acc.Username, &acc.Password, &acc.Role, &acc.Status, &acc.Balance,
		&acc.Card.ID, &acc.Card.Name, &acc.Card.IssuedAt,
		&lastLogin, &acc.LoginAttempts, &originAddr, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		acc.LastLogin = &t
	}
	if originAddr.Valid {
		acc.OriginAddr = originAddr.String
	}
	return &acc, nil
}
