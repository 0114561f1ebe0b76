package pet

import (
	"context"
	"os"
	"testing"
	"time"

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

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId, _ := test_utils.SeedOwner(t, ctx, db, "owner")
	return ctx, NewRepo(db), userId
}

func TestRepositoryImpl_CreateAndGetPet(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	birthDate := time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC)

	// when
	created, err := repo.CreatePet(ctx, userId, Pet{
		Name:      "Luna",
		Species:   "dog",
		Breed:     "Beagle",
		BirthDate: &birthDate,
		Microchip: "985112004567890",
	})
	require.NoError(t, err)
	fetched, err := repo.GetPet(ctx, userId, created.Id)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Luna", fetched.Name)
	assert.Equal(t, "Beagle", fetched.Breed)
	require.NotNil(t, fetched.BirthDate)
	assert.Equal(t, "2020-05-17", fetched.BirthDate.Format(time.DateOnly))
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestRepositoryImpl_GetPetOfOtherUser(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	created, err := repo.CreatePet(ctx, userId, Pet{Name: "Luna"})
	require.NoError(t, err)

	// when
	_, err = repo.GetPet(ctx, userId+100, created.Id)

	// then
	assert.ErrorIs(t, err, ErrPetNotFound)
}

func TestRepositoryImpl_ListUpdateDelete(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	milo, err := repo.CreatePet(ctx, userId, Pet{Name: "Milo"})
	require.NoError(t, err)

	// when
	pets, err := repo.ListPets(ctx, userId)
	require.NoError(t, err)
	updated, err := repo.UpdatePet(ctx, userId, Pet{Id: milo.Id, Name: "Milo", Notes: "allergic to chicken"})
	require.NoError(t, err)
	deleted, err := repo.DeletePet(ctx, userId, milo.Id)
	require.NoError(t, err)
	deletedAgain, err := repo.DeletePet(ctx, userId, milo.Id)
	require.NoError(t, err)
	_, updateMissingErr := repo.UpdatePet(ctx, userId, Pet{Id: milo.Id, Name: "Ghost"})

	// then
	require.Len(t, pets, 2) // seeded pet + Milo
	assert.Equal(t, "Milo", pets[0].Name)
	assert.Equal(t, "allergic to chicken", updated.Notes)
	assert.True(t, deleted)
	assert.False(t, deletedAgain)
	assert.ErrorIs(t, updateMissingErr, ErrPetNotFound)
}
