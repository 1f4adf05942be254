package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"samplepedia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn          func(context.Context, *models.Notification) error
	listByRecipientFn func(context.Context, uint, int, int) ([]*models.Notification, error)
	topUnreadFn       func(context.Context, uint, int) ([]*models.Notification, error)
	unreadCountFn     func(context.Context, uint) (int64, error)
	markReadFn        func(context.Context, uint, uint) error
	markAllReadFn     func(context.Context, uint) error
	deleteFn          func(context.Context, uint, uint) error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientID, limit, offset)
}
func (s *notificationRepoStub) TopUnread(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	return s.topUnreadFn(ctx, recipientID, limit)
}
func (s *notificationRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, recipientID uint) error {
	return s.markReadFn(ctx, id, recipientID)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) error {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) Delete(ctx context.Context, id, recipientID uint) error {
	return s.deleteFn(ctx, id, recipientID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn: func(_ context.Context, n *models.Notification) error {
			n.ID = 1
			return nil
		},
		listByRecipientFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) { return nil, nil },
		topUnreadFn:       func(_ context.Context, _ uint, _ int) ([]*models.Notification, error) { return nil, nil },
		unreadCountFn:     func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:        func(_ context.Context, _, _ uint) error { return nil },
		markAllReadFn:     func(_ context.Context, _ uint) error { return nil },
		deleteFn:          func(_ context.Context, _, _ uint) error { return nil },
	}
}

func TestNotificationService_Notify(t *testing.T) {
	t.Parallel()

	t.Run("stores and publishes", func(t *testing.T) {
		t.Parallel()
		var published *models.Notification
		svc := NewNotificationService(noopNotificationRepo(), func(n *models.Notification) { published = n })

		svc.Notify(context.Background(), &models.Notification{
			RecipientID: 99,
			ActorID:     7,
			Verb:        models.VerbCommented,
			Description: "mallory commented on your sample",
		})
		require.NotNil(t, published)
		assert.Equal(t, uint(1), published.ID)
	})

	t.Run("storage failure suppresses publish", func(t *testing.T) {
		t.Parallel()
		notificationRepo := noopNotificationRepo()
		notificationRepo.createFn = func(_ context.Context, _ *models.Notification) error {
			return models.NewInternalError(errors.New("db down"))
		}
		published := false
		svc := NewNotificationService(notificationRepo, func(_ *models.Notification) { published = true })

		svc.Notify(context.Background(), &models.Notification{RecipientID: 99, ActorID: 7, Verb: models.VerbLiked})
		assert.False(t, published)
	})
}

func TestNotificationService_Dropdown(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	notificationRepo := noopNotificationRepo()
	notificationRepo.topUnreadFn = func(_ context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
		assert.Equal(t, uint(99), recipientID)
		assert.Equal(t, 5, limit)
		return []*models.Notification{
			{
				ID:          1,
				Verb:        models.VerbLikedSolution,
				Description: "mallory liked your solution 'Unpacking X'",
				SHA256:      "abc123",
				TargetURL:   "/sample/abc123/?highlight_solution=4",
				CreatedAt:   created,
			},
			{
				ID:          2,
				Verb:        models.VerbAddedSolution,
				Description: "mallory added a solution 'Config extractor' to your sample",
				CreatedAt:   created,
			},
		}, nil
	}
	notificationRepo.unreadCountFn = func(_ context.Context, _ uint) (int64, error) { return 8, nil }

	svc := NewNotificationService(notificationRepo, nil)
	payload, err := svc.Dropdown(context.Background(), 99)
	require.NoError(t, err)

	assert.Equal(t, int64(8), payload.UnreadCount)
	require.Len(t, payload.Notifications, 2)

	// liked_solution rows drop the quoted title; everything else keeps it.
	assert.Equal(t, "mallory liked your solution", payload.Notifications[0].Description)
	assert.Equal(t, "mallory added a solution 'Config extractor' to your sample", payload.Notifications[1].Description)

	assert.Equal(t, "2026-05-04T12:00:00Z", payload.Notifications[0].Timestamp)
	assert.Equal(t, "/sample/abc123/?highlight_solution=4", payload.Notifications[0].URL)
	assert.Equal(t, "abc123", payload.Notifications[0].SHA256)
}

func TestNotificationService_RecipientScopedOps(t *testing.T) {
	t.Parallel()

	var markedID, markedRecipient uint
	notificationRepo := noopNotificationRepo()
	notificationRepo.markReadFn = func(_ context.Context, id, recipientID uint) error {
		markedID, markedRecipient = id, recipientID
		return nil
	}

	svc := NewNotificationService(notificationRepo, nil)
	require.NoError(t, svc.MarkRead(context.Background(), 4, 99))
	assert.Equal(t, uint(4), markedID)
	assert.Equal(t, uint(99), markedRecipient)
}
