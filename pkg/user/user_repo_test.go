package user

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/petpassport/petpassport/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	defer func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			log.Errorf("failed to terminate container: %s", err)
		}
	}()
	code := m.Run()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *UserRepoImpl) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, NewUserRepo(db)
}

func TestUserRepoImpl_CreateAndGet(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)

	// when
	id, err := repo.CreateUser(ctx, User{Uid: "uid-1", Username: "alice", DisplayName: "Alice", Settings: Settings{Timezone: "Europe/Warsaw"}})
	require.NoError(t, err)
	byId, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	byUid, err := repo.GetUserByUid(ctx, "uid-1")
	require.NoError(t, err)

	// then
	assert.Equal(t, "alice", byId.Username)
	assert.Equal(t, "Europe/Warsaw", byId.Settings.Timezone)
	assert.Equal(t, byId, byUid)
}

func TestUserRepoImpl_Errors(t *testing.T) {
	ctx, repo := setupTestRepository(t)
	_, err := repo.CreateUser(ctx, User{Uid: "uid-1", Username: "alice", Settings: Settings{Timezone: "UTC"}})
	require.NoError(t, err)

	t.Run("should reject duplicate username", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, User{Uid: "uid-2", Username: "alice", Settings: Settings{Timezone: "UTC"}})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("should report unknown uid", func(t *testing.T) {
		_, err := repo.GetUserByUid(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepoImpl_GetAllUsers(t *testing.T) {
	// given
	ctx, repo := setupTestRepository(t)
	for _, name := range []string{"alice", "bob"} {
		_, err := repo.CreateUser(ctx, User{Uid: "uid-" + name, Username: name, Settings: Settings{Timezone: "UTC"}})
		require.NoError(t, err)
	}

	// when
	users, err := repo.GetAllUsers(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
