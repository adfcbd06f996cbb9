//go:build integration

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
	"vetblood/pkg/testutil/containers"
)

func TestPostgresStore_CRUD(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	t.Cleanup(func() { _ = pg.DB.Close() })
	ctx := context.Background()
	store := NewPostgresStore(pg.DB)

	u := &User{
		ID:         domain.NewUserID(),
		TelegramID: 42,
		FullName:   "Ivan Petrov",
		Role:       domain.RoleOwner,
		ConsentPD:  true,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.Create(ctx, u))

	got, err := store.GetByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.FullName, got.FullName)

	// Same Telegram identity cannot register twice.
	dup := &User{
		ID:         domain.NewUserID(),
		TelegramID: 42,
		FullName:   "Another",
		Role:       domain.RoleDonor,
		ConsentPD:  true,
		CreatedAt:  time.Now(),
	}
	assert.ErrorIs(t, store.Create(ctx, dup), sentinel.ErrConflict)

	got.FullName = "Ivan Sidorov"
	require.NoError(t, store.Update(ctx, got))
	updated, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Sidorov", updated.FullName)

	require.NoError(t, store.Delete(ctx, u.ID))
	_, err = store.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_TxRollback(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	t.Cleanup(func() { _ = pg.DB.Close() })
	ctx := context.Background()
	store := NewPostgresStore(pg.DB)
	runner := txcontext.NewSQLRunner(pg.DB)

	id := domain.NewUserID()
	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := store.Create(ctx, &User{
			ID:         id,
			TelegramID: 7,
			FullName:   "Rolled Back",
			Role:       domain.RoleOwner,
			ConsentPD:  true,
			CreatedAt:  time.Now(),
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = store.GetByID(ctx, id)
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "rollback must discard the insert")
}
