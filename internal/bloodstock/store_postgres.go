package bloodstock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const stockColumns = `id, clinic_id, blood_type, volume_ml, price_rub, expiration_date, status, created_at`

func (s *PostgresStore) Create(ctx context.Context, st *Stock) error {
	const query = `
		INSERT INTO blood_stocks (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(st.ID), uuid.UUID(st.ClinicID), st.BloodType, st.VolumeML,
		st.PriceRub, st.ExpirationDate, string(st.Status), st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blood stock: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.StockID) (*Stock, error) {
	const query = `SELECT ` + stockColumns + ` FROM blood_stocks WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	st, err := scanStock(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return st, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Stock, error) {
	const query = `SELECT ` + stockColumns + ` FROM blood_stocks ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query blood stocks: %w", err)
	}
	defer rows.Close()

	var out []Stock
	for rows.Next() {
		st, err := scanStock(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func (s *PostgresStore) HasActive(ctx context.Context, clinicID domain.ClinicID, bloodType string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM blood_stocks
			WHERE clinic_id = $1 AND blood_type = $2 AND status = $3
		)
	`
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(clinicID), bloodType, string(domain.StockActive)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active stock: %w", err)
	}
	return exists, nil
}

func scanStock(scan func(...any) error) (*Stock, error) {
	var (
		st         Stock
		id, clinic uuid.UUID
		status     string
	)
	err := scan(&id, &clinic, &st.BloodType, &st.VolumeML, &st.PriceRub,
		&st.ExpirationDate, &status, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan blood stock: %w", err)
	}
	st.ID = domain.StockID(id)
	st.ClinicID = domain.ClinicID(clinic)
	st.Status = domain.StockStatus(status)
	return &st, nil
}

func (s *PostgresStore) Update(ctx context.Context, st *Stock) error {
	const query = `
		UPDATE blood_stocks
		SET blood_type = $2, volume_ml = $3, price_rub = $4, expiration_date = $5, status = $6
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(st.ID), st.BloodType, st.VolumeML, st.PriceRub,
		st.ExpirationDate, string(st.Status),
	)
	if err != nil {
		return fmt.Errorf("update blood stock: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.StockID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM blood_stocks WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete blood stock: %w", err)
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
