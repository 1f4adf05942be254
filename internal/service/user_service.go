package service

import (
	"context"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"
)

// UserService exposes profiles and the scoring ledger.
type UserService struct {
	userRepo     repository.UserRepository
	taskRepo     repository.TaskRepository
	solutionRepo repository.SolutionRepository
}

// UserProfile is the public profile payload: account info, authored work,
// and the accumulated score.
type UserProfile struct {
	User      *models.User           `json:"user"`
	Tasks     []*models.AnalysisTask `json:"tasks"`
	Solutions []*models.Solution     `json:"solutions"`
	Score     int                    `json:"score"`
}

func NewUserService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	solutionRepo repository.SolutionRepository,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		taskRepo:     taskRepo,
		solutionRepo: solutionRepo,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// Profile builds the profile page payload for a username.
func (s *UserService) Profile(ctx context.Context, username string, currentUserID uint) (*UserProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.profileFor(ctx, user, currentUserID)
}

// ProfileByID builds the profile payload for the given account, used by the
// "me" endpoint.
func (s *UserService) ProfileByID(ctx context.Context, id uint) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, user, id)
}

func (s *UserService) profileFor(ctx context.Context, user *models.User, currentUserID uint) (*UserProfile, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{
		AuthorID: user.ID,
		Sort:     "-created",
		Limit:    100,
	}, currentUserID)
	if err != nil {
		return nil, err
	}

	solutions, err := s.solutionRepo.List(ctx, repository.SolutionFilter{
		AuthorID: user.ID,
		Limit:    100,
	}, currentUserID)
	if err != nil {
		return nil, err
	}

	score, err := s.userRepo.Score(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		User:      user,
		Tasks:     tasks,
		Solutions: solutions,
		Score:     score,
	}, nil
}

// SetStaff grants or revokes the staff flag on an account.
func (s *UserService) SetStaff(ctx context.Context, targetID uint, isStaff bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.IsStaff = isStaff
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetContributor grants or revokes contributor group membership.
func (s *UserService) SetContributor(ctx context.Context, targetID uint, isContributor bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	user.IsContributor = isContributor
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
