package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestTaskRepository_ExistsBySHA256(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	t.Run("Found, lookup is lowercased", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "analysis_tasks" WHERE sha256 = \$1`).
			WithArgs(strings.Repeat("a", 64)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsBySHA256(ctx, strings.Repeat("A", 64))
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "analysis_tasks" WHERE sha256 = \$1`).
			WithArgs(strings.Repeat("b", 64)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsBySHA256(ctx, strings.Repeat("b", 64))
		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskRepository_IncrementViewCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "analysis_tasks" SET "view_count"=view_count \+ 1 WHERE id = \$1`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.IncrementViewCount(ctx, 9)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds favorite when absent", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites" WHERE user_id = \$1 AND task_id = \$2`).
			WithArgs(1, 5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectExec(`INSERT INTO favorites`).
			WithArgs(1, 5, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites" WHERE task_id = \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		liked, count, err := repo.ToggleFavorite(ctx, 1, 5)
		assert.NoError(t, err)
		assert.True(t, liked)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Removes favorite when present", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites" WHERE user_id = \$1 AND task_id = \$2`).
			WithArgs(1, 5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "favorites" WHERE user_id = \$1 AND task_id = \$2`).
			WithArgs(1, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "favorites" WHERE task_id = \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		liked, count, err := repo.ToggleFavorite(ctx, 1, 5)
		assert.NoError(t, err)
		assert.False(t, liked)
		assert.Equal(t, 2, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTaskRepository_List_ExcludesCourseSamples(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	// The catalogue query filters out samples pinned to a course lecture.
	mock.ExpectQuery(`FROM "analysis_tasks" WHERE analysis_tasks\.id NOT IN \(SELECT task_course_references\.analysis_task_id FROM "task_course_references"\)`).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tasks, err := repo.List(ctx, TaskFilter{Limit: 25}, 0)
	assert.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_TagsInUse(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "labels" WHERE labels\.id IN \(SELECT task_tags\.label_id FROM "task_tags"\) ORDER BY labels\.name ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(1, "apt").
			AddRow(2, "ransomware"))

	labels, err := repo.TagsInUse(ctx)
	assert.NoError(t, err)
	assert.Len(t, labels, 2)
	assert.Equal(t, "apt", labels[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
