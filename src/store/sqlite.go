package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"budget-server/src/apperr"
	"budget-server/src/models"
)

// SQLiteStore backs the Store with a local SQLite file, for single-box
// deployments and tests. Semantics are identical to PostgresStore.
type SQLiteStore struct {
	conn *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := migrateSQLite(path); err != nil {
		return nil, err
	}

	// Foreign keys are off by default in SQLite; the user cascade needs them.
	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLiteStore{conn: conn}, nil
}

const sqliteTransactionColumns = `id, user_id, description, amount, kind, category, occurred_on, created_at`

func (s *SQLiteStore) CreateTransaction(ctx context.Context, ownerID int64, draft models.TransactionDraft) (*models.Transaction, error) {
	draft, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}

	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO transactions (user_id, description, amount, kind, category, occurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ownerID,
		draft.Description,
		draft.Amount,
		draft.Kind,
		draft.Category,
		time.Now().Format("2006-01-02"),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return s.GetTransaction(ctx, id)
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+sqliteTransactionColumns+` FROM transactions WHERE id = ?`, id)
	return scanSQLiteTransaction(row)
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, id, ownerID int64, patch models.TransactionDraft) (*models.Transaction, error) {
	patch, err := normalizeDraft(patch)
	if err != nil {
		return nil, err
	}

	res, err := s.conn.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, kind = ?, category = ?
		WHERE id = ? AND user_id = ?`,
		patch.Description, patch.Amount, patch.Kind, patch.Category, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetTransaction(ctx, id)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sqliteTransactionColumns+` FROM transactions WHERE user_id = ? ORDER BY id ASC`, ownerID)
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

func scanSQLiteTransaction(row *sql.Row) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.Kind, &t.Category, &t.Date, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	return &t, nil
}

const sqliteUserColumns = `id, email, display_name, password_hash, is_admin, is_approved, created_at, last_login`

func (s *SQLiteStore) CreateUser(ctx context.Context, email, displayName string, passwordHash []byte, isAdmin, isApproved bool) (*models.User, error) {
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (email, display_name, password_hash, is_admin, is_approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		email, displayName, string(passwordHash), isAdmin, isApproved, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.IsAdmin, &u.IsApproved, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sqliteUserColumns+` FROM users ORDER BY id ASC`)
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

func (s *SQLiteStore) ApproveUser(ctx context.Context, id int64) error {
	return s.execOne(ctx, `UPDATE users SET is_approved = 1 WHERE id = ?`, id)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	// Transactions go with the account via ON DELETE CASCADE.
	return s.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, id int64, email, displayName string) error {
	return s.execOne(ctx, `UPDATE users SET email = ?, display_name = ? WHERE id = ?`, email, displayName, id)
}

func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash []byte) error {
	return s.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, string(passwordHash), id)
}

func (s *SQLiteStore) UpdateUserLastLogin(ctx context.Context, id int64) error {
	_, err := s.conn.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	return nil
}

// execOne runs a statement expected to touch exactly one row and maps a
// zero-row result to apperr.ErrNotFound.
func (s *SQLiteStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
