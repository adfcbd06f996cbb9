package clinic

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

const clinicColumns = `id, owner_id, name, phone, address, work_hours, latitude, longitude, created_at`

func (s *PostgresStore) Create(ctx context.Context, c *Clinic) error {
	const query = `
		INSERT INTO vet_clinics (` + clinicColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.OwnerID), c.Name, c.Phone, c.Address,
		c.WorkHours, c.Location.Latitude, c.Location.Longitude, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert clinic: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.ClinicID) (*Clinic, error) {
	const query = `SELECT ` + clinicColumns + ` FROM vet_clinics WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	c, err := scanClinic(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Clinic, error) {
	const query = `SELECT ` + clinicColumns + ` FROM vet_clinics ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query clinics: %w", err)
	}
	defer rows.Close()

	var out []Clinic
	for rows.Next() {
		c, err := scanClinic(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanClinic(scan func(...any) error) (*Clinic, error) {
	var (
		c       Clinic
		id, own uuid.UUID
	)
	err := scan(&id, &own, &c.Name, &c.Phone, &c.Address, &c.WorkHours,
		&c.Location.Latitude, &c.Location.Longitude, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan clinic: %w", err)
	}
	c.ID = domain.ClinicID(id)
	c.OwnerID = domain.UserID(own)
	return &c, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *Clinic) error {
	const query = `
		UPDATE vet_clinics
		SET name = $2, phone = $3, address = $4, work_hours = $5, latitude = $6, longitude = $7
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, c.Phone, c.Address, c.WorkHours,
		c.Location.Latitude, c.Location.Longitude,
	)
	if err != nil {
		return fmt.Errorf("update clinic: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ClinicID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM vet_clinics WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete clinic: %w", err)
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
