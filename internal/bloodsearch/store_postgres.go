package bloodsearch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// PostgresStore persists searches in the blood_searches table. The
// qualifying clinic set is stored as a jsonb array of clinic UUIDs.
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

const searchColumns = `id, pet_id, requester_id, blood_type, status, qualifying_clinics, created_at`

func (s *PostgresStore) Create(ctx context.Context, sr *Search) error {
	clinics, err := marshalClinics(sr.QualifyingClinics)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO blood_searches (` + searchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(sr.ID), uuid.UUID(sr.PetID), uuid.UUID(sr.RequesterID),
		sr.BloodType, string(sr.Status), clinics, sr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert blood search: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id domain.SearchID) (*Search, error) {
	const query = `SELECT ` + searchColumns + ` FROM blood_searches WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(id))
	sr, err := scanSearch(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return sr, err
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID domain.UserID) ([]Search, error) {
	const query = `SELECT ` + searchColumns + ` FROM blood_searches WHERE requester_id = $1 ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(requesterID))
	if err != nil {
		return nil, fmt.Errorf("query blood searches: %w", err)
	}
	defer rows.Close()

	var out []Search
	for rows.Next() {
		sr, err := scanSearch(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *sr)
	}
	return out, rows.Err()
}

func scanSearch(scan func(...any) error) (*Search, error) {
	var (
		sr           Search
		id, pet, req uuid.UUID
		status       string
		clinics      []byte
	)
	err := scan(&id, &pet, &req, &sr.BloodType, &status, &clinics, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan blood search: %w", err)
	}
	sr.ID = domain.SearchID(id)
	sr.PetID = domain.PetID(pet)
	sr.RequesterID = domain.UserID(req)
	sr.Status = domain.SearchStatus(status)
	if len(clinics) > 0 {
		var raw []uuid.UUID
		if err := json.Unmarshal(clinics, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal qualifying clinics: %w", err)
		}
		sr.QualifyingClinics = make([]domain.ClinicID, len(raw))
		for i, u := range raw {
			sr.QualifyingClinics[i] = domain.ClinicID(u)
		}
	}
	return &sr, nil
}

func marshalClinics(ids []domain.ClinicID) ([]byte, error) {
	raw := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		raw[i] = uuid.UUID(id)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal qualifying clinics: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) Update(ctx context.Context, sr *Search) error {
	clinics, err := marshalClinics(sr.QualifyingClinics)
	if err != nil {
		return err
	}
	const query = `
		UPDATE blood_searches SET status = $2, qualifying_clinics = $3
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(sr.ID), string(sr.Status), clinics)
	if err != nil {
		return fmt.Errorf("update blood search: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.SearchID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM blood_searches WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete blood search: %w", err)
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
