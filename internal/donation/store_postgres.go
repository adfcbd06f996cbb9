package donation

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

const donationColumns = `id, owner_id, donor_pet_id, clinic_id, date, status, created_at`

func (s *PostgresStore) Create(ctx context.Context, d *Donation) error {
	const query = `
		INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(d.ID), uuid.UUID(d.OwnerID), uuid.UUID(d.DonorPetID),
		uuid.UUID(d.ClinicID), d.Date, string(d.Status), d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.DonationID) (*Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	d, err := scanDonation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return d, err
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Donation, error) {
	const query = `SELECT ` + donationColumns + ` FROM donations WHERE owner_id = $1 ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query donations: %w", err)
	}
	defer rows.Close()

	var out []Donation
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDonation(scan func(...any) error) (*Donation, error) {
	var (
		d                     Donation
		id, owner, petU, clin uuid.UUID
		status                string
	)
	err := scan(&id, &owner, &petU, &clin, &d.Date, &status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	d.ID = domain.DonationID(id)
	d.OwnerID = domain.UserID(owner)
	d.DonorPetID = domain.PetID(petU)
	d.ClinicID = domain.ClinicID(clin)
	d.Status = domain.DonationStatus(status)
	return &d, nil
}

func (s *PostgresStore) Update(ctx context.Context, d *Donation) error {
	const query = `UPDATE donations SET date = $2, status = $3 WHERE id = $1`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(d.ID), d.Date, string(d.Status))
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.DonationID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM donations WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
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
