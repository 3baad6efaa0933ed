package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormRepo_Notifications(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	require.NoError(t, r.CreateNotifications(ctx, nil))
	require.NoError(t, r.CreateNotifications(ctx, []models.Notification{
		{Title: "Sale", Message: "everything"},
		{UserID: &user, Title: "Shipped", Message: "on its way", Type: "order"},
		{UserID: &other, Title: "Shipped", Message: "on its way"},
	}))

	feed, err := r.ListNotifications(ctx, user, 50)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, n := range feed {
		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.NotEmpty(t, n.Type)
		if n.UserID != nil {
			assert.Equal(t, user, *n.UserID)
		}
	}

	limited, err := r.ListNotifications(ctx, user, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	unread, err := r.CountUnreadNotifications(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	var own models.Notification
	require.NoError(t, r.DB.Where("user_id = ?", user).First(&own).Error)

	_, err = r.MarkNotificationRead(ctx, own.ID, other)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	read, err := r.MarkNotificationRead(ctx, own.ID, user)
	require.NoError(t, err)
	assert.True(t, read.Read)

	unread, err = r.CountUnreadNotifications(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
