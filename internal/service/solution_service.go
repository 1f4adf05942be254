package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"
)

// SolutionService manages write-ups attached to tasks.
type SolutionService struct {
	solutionRepo repository.SolutionRepository
	taskRepo     repository.TaskRepository
	notify       func(ctx context.Context, n *models.Notification) // nil disables
}

type CreateSolutionInput struct {
	TaskID       uint
	Title        string
	SolutionType string
	URL          string
	Content      string
	Author       *models.User
}

type ListSolutionsInput struct {
	Type          string
	Query         string
	Limit         int
	Offset        int
	CurrentUserID uint
}

func NewSolutionService(
	solutionRepo repository.SolutionRepository,
	taskRepo repository.TaskRepository,
	notify func(ctx context.Context, n *models.Notification),
) *SolutionService {
	return &SolutionService{
		solutionRepo: solutionRepo,
		taskRepo:     taskRepo,
		notify:       notify,
	}
}

// CreateSolution validates and stores a solution, notifying the task author
// when someone else contributes.
func (s *SolutionService) CreateSolution(ctx context.Context, in CreateSolutionInput) (*models.Solution, error) {
	if in.Author == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}

	task, err := s.taskRepo.GetByID(ctx, in.TaskID, in.Author.ID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}

	st := models.SolutionType(in.SolutionType)
	if !st.Valid() {
		return nil, models.NewValidationError("Select a valid solution type: onsite, blog, paper or video.")
	}
	if st == models.SolutionTypeOnsite {
		if strings.TrimSpace(in.Content) == "" {
			return nil, models.NewValidationError("On-site reference solutions must have content.")
		}
	} else if strings.TrimSpace(in.URL) == "" {
		return nil, models.NewValidationError("External reference solutions must have a URL.")
	}

	solution := &models.Solution{
		TaskID:       task.ID,
		Title:        title,
		SolutionType: st,
		URL:          strings.TrimSpace(in.URL),
		Content:      in.Content,
		AuthorID:     in.Author.ID,
	}
	if err := s.solutionRepo.Create(ctx, solution); err != nil {
		return nil, err
	}

	if s.notify != nil && in.Author.ID != task.AuthorID {
		s.notify(ctx, &models.Notification{
			RecipientID: task.AuthorID,
			ActorID:     in.Author.ID,
			Verb:        models.VerbAddedSolution,
			Description: fmt.Sprintf("%s added a solution '%s' to your sample", in.Author.Username, solution.Title),
			SHA256:      task.SHA256,
			TargetURL:   task.DetailURL(),
		})
	}

	return s.solutionRepo.GetByID(ctx, solution.ID, in.Author.ID)
}

// GetSolution fetches a solution, enforcing the hiding window and bumping the
// view counter for on-site write-ups only.
func (s *SolutionService) GetSolution(ctx context.Context, id uint, viewer *models.User) (*models.Solution, error) {
	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}

	solution, err := s.solutionRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if !solution.VisibleTo(viewer, time.Now()) {
		return nil, models.NewNotFoundError("Solution", id)
	}

	if solution.SolutionType == models.SolutionTypeOnsite {
		if err := s.solutionRepo.IncrementViewCount(ctx, id); err != nil {
			return nil, err
		}
		solution.ViewCount++
	}
	return solution, nil
}

func (s *SolutionService) ListSolutions(ctx context.Context, in ListSolutionsInput) ([]*models.Solution, error) {
	f := repository.SolutionFilter{
		Type:   in.Type,
		Query:  in.Query,
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	return s.solutionRepo.List(ctx, f, in.CurrentUserID)
}

// ListByTask returns the task's solutions visible to the viewer, oldest first.
func (s *SolutionService) ListByTask(ctx context.Context, taskID uint, viewer *models.User) ([]*models.Solution, error) {
	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}
	solutions, err := s.solutionRepo.ListByTask(ctx, taskID, viewerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	visible := make([]*models.Solution, 0, len(solutions))
	for _, sol := range solutions {
		if sol.VisibleTo(viewer, now) {
			visible = append(visible, sol)
		}
	}
	return visible, nil
}

func (s *SolutionService) DeleteSolution(ctx context.Context, id uint, user *models.User) error {
	if user == nil {
		return models.NewUnauthorizedError("Login required")
	}
	solution, err := s.solutionRepo.GetByID(ctx, id, user.ID)
	if err != nil {
		return err
	}
	if solution.AuthorID != user.ID && !user.IsStaff {
		return models.NewForbiddenError("You can only delete your own solutions")
	}
	return s.solutionRepo.Delete(ctx, id)
}

// ToggleLike flips the caller's like and notifies the solution author on a
// fresh like from someone else.
func (s *SolutionService) ToggleLike(ctx context.Context, solutionID uint, user *models.User) (bool, int, error) {
	if user == nil {
		return false, 0, models.NewUnauthorizedError("Login required")
	}

	solution, err := s.solutionRepo.GetByID(ctx, solutionID, user.ID)
	if err != nil {
		return false, 0, err
	}

	liked, count, err := s.solutionRepo.ToggleLike(ctx, user.ID, solutionID)
	if err != nil {
		return false, 0, err
	}

	if liked && s.notify != nil && user.ID != solution.AuthorID {
		s.notify(ctx, &models.Notification{
			RecipientID: solution.AuthorID,
			ActorID:     user.ID,
			Verb:        models.VerbLikedSolution,
			Description: fmt.Sprintf("%s liked your solution '%s'", user.Username, solution.Title),
			SHA256:      solution.Task.SHA256,
			TargetURL:   fmt.Sprintf("%s?highlight_solution=%d", solution.Task.DetailURL(), solution.ID),
		})
	}
	return liked, count, nil
}
