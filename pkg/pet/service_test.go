package pet

import (
	"context"
	"testing"

	"github.com/petpassport/petpassport/internal/event_bus"
	"github.com/petpassport/petpassport/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest() (context.Context, *ServiceImpl, *event_bus.EventBus) {
	eventBus := event_bus.NewEventBus()
	service := NewService(NewRepositoryStub(), eventBus)
	ctx := user.WithUser(context.Background(), user.User{Id: 1, Uid: "owner"})
	return ctx, service, eventBus
}

func TestServiceImpl_CreatePet(t *testing.T) {
	t.Run("should create pet and publish event", func(t *testing.T) {
		// given
		ctx, service, eventBus := setupServiceTest()
		var published []event_bus.PetCreated
		event_bus.SubscribeTyped(eventBus, event_bus.PetCreatedType, func(e event_bus.EventT[event_bus.PetCreated]) error {
			published = append(published, e.Data)
			return nil
		})

		// when
		created, err := service.CreatePet(ctx, Pet{Name: "  Luna ", Species: "dog"})

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, "Luna", created.Name)
		require.Len(t, published, 1)
		assert.Equal(t, event_bus.PetCreated{PetId: created.Id, Name: "Luna"}, published[0])
	})

	t.Run("should reject pet without name", func(t *testing.T) {
		ctx, service, _ := setupServiceTest()

		_, err := service.CreatePet(ctx, Pet{Name: "   "})

		assert.ErrorIs(t, err, ErrPetDataInvalid)
	})

	t.Run("should keep created pet when subscriber fails", func(t *testing.T) {
		// given
		ctx, service, eventBus := setupServiceTest()
		eventBus.Subscribe(event_bus.PetCreatedType, func(e event_bus.Event) error {
			return assert.AnError
		})

		// when
		created, err := service.CreatePet(ctx, Pet{Name: "Milo"})

		// then
		require.NoError(t, err)
		stored, err := service.GetPet(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "Milo", stored.Name)
	})

	t.Run("should require user in context", func(t *testing.T) {
		_, service, _ := setupServiceTest()

		_, err := service.CreatePet(context.Background(), Pet{Name: "Luna"})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_ScopesPetsToUser(t *testing.T) {
	// given
	ctx, service, _ := setupServiceTest()
	otherCtx := user.WithUser(context.Background(), user.User{Id: 2})
	luna, err := service.CreatePet(ctx, Pet{Name: "Luna"})
	require.NoError(t, err)
	_, err = service.CreatePet(otherCtx, Pet{Name: "Rex"})
	require.NoError(t, err)

	// when
	pets, err := service.ListPets(ctx)
	require.NoError(t, err)
	_, getErr := service.GetPet(otherCtx, luna.Id)
	_, updateErr := service.UpdatePet(otherCtx, Pet{Id: luna.Id, Name: "Stolen"})
	deleted, deleteErr := service.DeletePet(otherCtx, luna.Id)

	// then
	require.Len(t, pets, 1)
	assert.Equal(t, "Luna", pets[0].Name)
	assert.ErrorIs(t, getErr, ErrPetNotFound)
	assert.ErrorIs(t, updateErr, ErrPetNotFound)
	assert.NoError(t, deleteErr)
	assert.False(t, deleted)
}

func TestServiceImpl_UpdateAndDeletePet(t *testing.T) {
	// given
	ctx, service, _ := setupServiceTest()
	created, err := service.CreatePet(ctx, Pet{Name: "Luna", Species: "dog"})
	require.NoError(t, err)

	// when
	updated, err := service.UpdatePet(ctx, Pet{Id: created.Id, Name: "Luna", Species: "cat", Microchip: " 9851 "})
	require.NoError(t, err)
	deleted, err := service.DeletePet(ctx, created.Id)
	require.NoError(t, err)

	// then
	assert.Equal(t, "cat", updated.Species)
	assert.Equal(t, "9851", updated.Microchip)
	assert.True(t, deleted)
	_, err = service.GetPet(ctx, created.Id)
	assert.ErrorIs(t, err, ErrPetNotFound)
}
