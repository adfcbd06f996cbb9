package pet

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

const petColumns = `id, owner_id, name, species, breed, weight_kg, photo_url, latitude, longitude, blood_type, created_at`

func (s *PostgresStore) Create(ctx context.Context, p *Pet) error {
	const query = `
		INSERT INTO pets (` + petColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.OwnerID), p.Name, p.Species, p.Breed,
		p.WeightKg, p.PhotoURL, p.Location.Latitude, p.Location.Longitude,
		p.BloodType, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.PetID) (*Pet, error) {
	const query = `SELECT ` + petColumns + ` FROM pets WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	p, err := scanPet(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Pet, error) {
	const query = `SELECT ` + petColumns + ` FROM pets WHERE owner_id = $1 ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query pets: %w", err)
	}
	defer rows.Close()

	var out []Pet
	for rows.Next() {
		p, err := scanPet(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPet(scan func(...any) error) (*Pet, error) {
	var (
		p       Pet
		id, own uuid.UUID
	)
	err := scan(&id, &own, &p.Name, &p.Species, &p.Breed, &p.WeightKg, &p.PhotoURL,
		&p.Location.Latitude, &p.Location.Longitude, &p.BloodType, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pet: %w", err)
	}
	p.ID = domain.PetID(id)
	p.OwnerID = domain.UserID(own)
	return &p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Pet) error {
	const query = `
		UPDATE pets
		SET name = $2, breed = $3, weight_kg = $4, photo_url = $5,
		    latitude = $6, longitude = $7, blood_type = $8
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.Breed, p.WeightKg, p.PhotoURL,
		p.Location.Latitude, p.Location.Longitude, p.BloodType,
	)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.PetID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
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
