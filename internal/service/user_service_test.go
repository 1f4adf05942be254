package service

import (
	"context"
	"testing"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	scoreFn         func(context.Context, uint) (int, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Score(ctx context.Context, userID uint) (int, error) {
	return s.scoreFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "mallory"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		scoreFn:         func(_ context.Context, _ uint) (int, error) { return 0, nil },
	}
}

func TestUserService_Profile(t *testing.T) {
	t.Parallel()

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopTaskRepo(), noopSolutionRepo())
		_, err := svc.Profile(context.Background(), "ghost", 0)
		assertNotFoundError(t, err)
	})

	t.Run("assembles tasks, solutions, and score", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 7, Username: username}, nil
		}
		userRepo.scoreFn = func(_ context.Context, userID uint) (int, error) {
			assert.Equal(t, uint(7), userID)
			return 90, nil
		}

		var taskFilter repository.TaskFilter
		taskRepo := noopTaskRepo()
		taskRepo.listFn = func(_ context.Context, f repository.TaskFilter, _ uint) ([]*models.AnalysisTask, error) {
			taskFilter = f
			return []*models.AnalysisTask{{ID: 1, AuthorID: 7}}, nil
		}

		solutionRepo := noopSolutionRepo()
		solutionRepo.listFn = func(_ context.Context, f repository.SolutionFilter, _ uint) ([]*models.Solution, error) {
			assert.Equal(t, uint(7), f.AuthorID)
			return []*models.Solution{{ID: 2, AuthorID: 7}}, nil
		}

		svc := NewUserService(userRepo, taskRepo, solutionRepo)
		profile, err := svc.Profile(context.Background(), "mallory", 3)
		require.NoError(t, err)

		assert.Equal(t, uint(7), profile.User.ID)
		assert.Equal(t, uint(7), taskFilter.AuthorID)
		assert.Len(t, profile.Tasks, 1)
		assert.Len(t, profile.Solutions, 1)
		assert.Equal(t, 90, profile.Score)
	})
}

func TestUserService_SetStaff(t *testing.T) {
	t.Parallel()

	var saved *models.User
	userRepo := noopUserRepo()
	userRepo.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(userRepo, noopTaskRepo(), noopSolutionRepo())
	user, err := svc.SetStaff(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	require.NotNil(t, saved)
	assert.True(t, saved.IsStaff)
}

func TestUserService_SetContributor(t *testing.T) {
	t.Parallel()

	userRepo := noopUserRepo()
	svc := NewUserService(userRepo, noopTaskRepo(), noopSolutionRepo())

	user, err := svc.SetContributor(context.Background(), 7, true)
	require.NoError(t, err)
	assert.True(t, user.IsContributor)
}
