package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// PostgresStore persists users in the users table. Writes join the caller's
// transaction when the context carries one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO users (id, telegram_id, full_name, phone, email, role, consent_pd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), int64(u.TelegramID), u.FullName, u.Phone, u.Email,
		string(u.Role), u.ConsentPD, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.UserID) (*User, error) {
	const query = `
		SELECT id, telegram_id, full_name, phone, email, role, consent_pd, created_at
		FROM users WHERE id = $1
	`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*User, error) {
	const query = `
		SELECT id, telegram_id, full_name, phone, email, role, consent_pd, created_at
		FROM users WHERE telegram_id = $1
	`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, int64(tgID)))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	var (
		u    User
		id   uuid.UUID
		tgID int64
		role string
	)
	err := row.Scan(&id, &tgID, &u.FullName, &u.Phone, &u.Email, &role, &u.ConsentPD, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.TelegramID = domain.TelegramID(tgID)
	u.Role = domain.UserRole(role)
	return &u, nil
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE users SET full_name = $2, phone = $3, email = $4, role = $5
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(u.ID), u.FullName, u.Phone, u.Email, string(u.Role),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.UserID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
