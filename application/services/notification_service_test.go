package services_test

import (
	"context"
	"testing"

	"chirp/application/services"
	"chirp/domain/entities"
	"chirp/infrastructure/persistence/memory"
	"chirp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newNotificationEnv() (*memory.UserStore, *memory.NotificationStore, *services.NotificationService) {
	users := memory.NewUserStore()
	notifications := memory.NewNotificationStore()
	svc := services.NewNotificationService(notifications, users, zap.NewNop())
	return users, notifications, svc
}

func TestNotificationService_ListFor_MarksRead(t *testing.T) {
	ctx := context.Background()
	users, notifications, svc := newNotificationEnv()
	ada := mustCreateUser(t, users, "ada")
	grace := mustCreateUser(t, users, "grace")

	require.NoError(t, svc.Emit(ctx, entities.NotificationFollow, grace.ID, ada.ID))
	require.NoError(t, svc.Emit(ctx, entities.NotificationLike, grace.ID, ada.ID))

	views, err := svc.ListFor(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// The response shows the pre-view read state
	for _, v := range views {
		assert.False(t, v.Read)
		require.NotNil(t, v.From)
		assert.Equal(t, "grace", v.From.Username)
	}

	// But the store now holds them read
	stored, err := notifications.ListByRecipient(ctx, ada.ID)
	require.NoError(t, err)
	for _, n := range stored {
		assert.True(t, n.Read)
	}

	// A second view returns them read
	views, err = svc.ListFor(ctx, ada.ID)
	require.NoError(t, err)
	for _, v := range views {
		assert.True(t, v.Read)
	}
}

func TestNotificationService_ListFor_UnknownUser(t *testing.T) {
	_, _, svc := newNotificationEnv()

	_, err := svc.ListFor(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestNotificationService_ClearFor(t *testing.T) {
	ctx := context.Background()
	users, notifications, svc := newNotificationEnv()
	ada := mustCreateUser(t, users, "ada")
	grace := mustCreateUser(t, users, "grace")

	require.NoError(t, svc.Emit(ctx, entities.NotificationFollow, grace.ID, ada.ID))
	require.NoError(t, svc.ClearFor(ctx, ada.ID))

	stored, err := notifications.ListByRecipient(ctx, ada.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestNotificationService_Emit_Invalid(t *testing.T) {
	_, _, svc := newNotificationEnv()

	err := svc.Emit(context.Background(), entities.NotificationType("bogus"), "a", "b")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
