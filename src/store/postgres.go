package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"budget-server/src/apperr"
	"budget-server/src/db"
	"budget-server/src/models"
)

// PostgresStore backs the Store with a shared Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if err := migratePostgres(databaseURL); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

const pgTransactionColumns = `id, user_id, description, amount, kind, category, to_char(occurred_on, 'YYYY-MM-DD'), created_at`

func (s *PostgresStore) CreateTransaction(ctx context.Context, ownerID int64, draft models.TransactionDraft) (*models.Transaction, error) {
	draft, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO transactions (user_id, description, amount, kind, category, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6::date)
		RETURNING ` + pgTransactionColumns
	var t models.Transaction
	err = s.pool.QueryRow(ctx, query,
		ownerID,
		draft.Description,
		draft.Amount,
		draft.Kind,
		draft.Category,
		time.Now().Format("2006-01-02"),
	).Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.Date, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + pgTransactionColumns + ` FROM transactions WHERE id = $1`
	var t models.Transaction
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.Date, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, id, ownerID int64, patch models.TransactionDraft) (*models.Transaction, error) {
	patch, err := normalizeDraft(patch)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions
		SET description = $1, amount = $2, kind = $3, category = $4
		WHERE id = $5 AND user_id = $6
		RETURNING ` + pgTransactionColumns
	var t models.Transaction
	err = s.pool.QueryRow(ctx, query,
		patch.Description,
		patch.Amount,
		patch.Kind,
		patch.Category,
		id,
		ownerID,
	).Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.Date, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	query := `SELECT ` + pgTransactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY id ASC`
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

const pgUserColumns = `id, email, display_name, password_hash, is_admin, is_approved, created_at, last_login`

func (s *PostgresStore) CreateUser(ctx context.Context, email, displayName string, passwordHash []byte, isAdmin, isApproved bool) (*models.User, error) {
	query := `
		INSERT INTO users (email, display_name, password_hash, is_admin, is_approved)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + pgUserColumns
	var u models.User
	err := s.pool.QueryRow(ctx, query, email, displayName, string(passwordHash), isAdmin, isApproved).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.IsAdmin, &u.IsApproved, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return s.scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.IsAdmin, &u.IsApproved, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users ORDER BY id ASC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.IsAdmin, &u.IsApproved, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) ApproveUser(ctx context.Context, id int64) error {
	cmd, err := s.pool.Exec(ctx, `UPDATE users SET is_approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	// Transactions go with the account via ON DELETE CASCADE.
	cmd, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, id int64, email, displayName string) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $1, display_name = $2 WHERE id = $3`,
		email, displayName, id)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		string(passwordHash), id)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserLastLogin(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
