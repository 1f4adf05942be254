package repository

import (
	"context"
	"testing"

	"samplepedia/internal/cache"
	"samplepedia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache points the cache package at a miniredis instance for the
// duration of the test.
func setupTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func TestNotificationRepository_UnreadCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE recipient_id = \$1 AND unread = \$2`).
		WithArgs(4, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.UnreadCount(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_UnreadCount_Cached(t *testing.T) {
	setupTestCache(t)
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	// Only the first read hits the database.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE recipient_id = \$1 AND unread = \$2`).
		WithArgs(4, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.UnreadCount(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	count, err = repo.UnreadCount(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Marking all read invalidates the entry, so the next poll sees zero.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "unread"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectCommit()
	require.NoError(t, repo.MarkAllRead(ctx, 4))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE recipient_id = \$1 AND unread = \$2`).
		WithArgs(4, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err = repo.UnreadCount(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications" SET "unread"=\$1.* WHERE id = \$\d+ AND recipient_id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.MarkRead(ctx, 10, 4)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Foreign recipient treated as not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "notifications" SET "unread"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkRead(ctx, 10, 99)
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNotificationRepository_TopUnread(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "notifications" WHERE recipient_id = \$1 AND unread = \$2 ORDER BY created_at DESC LIMIT \$\d+`).
		WithArgs(4, true, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "verb", "unread"}).
			AddRow(2, 4, models.VerbLiked, true).
			AddRow(1, 4, models.VerbCommented, true))

	notifications, err := repo.TopUnread(ctx, 4, 5)
	assert.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, models.VerbLiked, notifications[0].Verb)
	assert.NoError(t, mock.ExpectationsWereMet())
}
