package test_utils

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SeedOwner inserts a user and one pet owned by it, returning both ids.
// Repository tests need them to satisfy foreign keys.
func SeedOwner(t *testing.T, ctx context.Context, db *pgxpool.Pool, username string) (userId int, petId int) {
	t.Helper()
	err := db.QueryRow(ctx,
		`INSERT INTO app_user (uid, username, timezone) VALUES ($1, $2, 'Europe/Warsaw') RETURNING id`,
		"uid-"+username, username,
	).Scan(&userId)
	require.NoError(t, err)

	petId = SeedPet(t, ctx, db, userId, "Pet of "+username)
	return userId, petId
}

func SeedPet(t *testing.T, ctx context.Context, db *pgxpool.Pool, userId int, name string) int {
	t.Helper()
	var petId int
	err := db.QueryRow(ctx, `INSERT INTO pet (user_id, name) VALUES ($1, $2) RETURNING id`, userId, name).Scan(&petId)
	require.NoError(t, err)
	return petId
}
