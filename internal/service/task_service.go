// Package service contains the application's business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"
	"samplepedia/internal/validation"
)

// TaskService implements the submission and catalogue workflows.
type TaskService struct {
	taskRepo  repository.TaskRepository
	imageRepo repository.ImageRepository
	announce  func(task *models.AnalysisTask) // webhook delivery, nil disables
	clearDraft func(ctx context.Context, userID uint) error
}

// ListTasksInput narrows and pages the catalogue listing.
type ListTasksInput struct {
	Query         string
	Tag           string
	Difficulty    string
	FavoritesOnly bool
	Sort          string
	Limit         int
	Offset        int
	CurrentUserID uint
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	imageRepo repository.ImageRepository,
	announce func(task *models.AnalysisTask),
	clearDraft func(ctx context.Context, userID uint) error,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		imageRepo:  imageRepo,
		announce:   announce,
		clearDraft: clearDraft,
	}
}

// SubmitTask validates and stores a new task with its optional reference
// solution, announces it, and clears the submitter's draft.
func (s *TaskService) SubmitTask(ctx context.Context, in validation.TaskSubmission, submitter *models.User) (*models.AnalysisTask, error) {
	if submitter == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}

	errs := validation.ValidateTask(&in, submitter, false)

	sha := strings.ToLower(strings.TrimSpace(in.SHA256))
	if _, taken := errs["sha256"]; !taken && sha != "" {
		exists, err := s.taskRepo.ExistsBySHA256(ctx, sha)
		if err != nil {
			return nil, err
		}
		if exists {
			errs["sha256"] = "A sample with this SHA256 already exists."
		}
	}
	if len(errs) > 0 {
		return nil, models.NewFieldValidationError(errs)
	}

	imageURL, err := s.resolveImageURL(ctx, in.ImageID)
	if err != nil {
		return nil, err
	}

	task := &models.AnalysisTask{
		SHA256:       sha,
		DownloadLink: strings.TrimSpace(in.DownloadLink),
		Goal:         strings.TrimSpace(in.Goal),
		Description:  strings.TrimSpace(in.Description),
		Difficulty:   models.Difficulty(in.Difficulty),
		YouTubeID:    strings.TrimSpace(in.YouTubeID),
		ImageURL:     imageURL,
		AuthorID:     submitter.ID,
	}

	ref := buildReferenceSolution(in.ReferenceSolution, submitter.ID)
	tags := validation.NormalizeLabels(in.Tags)
	tools := validation.NormalizeLabels(in.Tools)

	if err := s.taskRepo.Create(ctx, task, tags, tools, ref); err != nil {
		return nil, err
	}

	created, err := s.taskRepo.GetByID(ctx, task.ID, submitter.ID)
	if err != nil {
		return nil, err
	}

	if s.announce != nil {
		s.announce(created)
	}
	if s.clearDraft != nil {
		_ = s.clearDraft(ctx, submitter.ID)
	}
	return created, nil
}

// matchSHA256 treats an id whose stored hash differs from the requested one
// as not found. Empty means the caller addressed the task by id alone.
func matchSHA256(task *models.AnalysisTask, sha string) error {
	if sha != "" && !strings.EqualFold(sha, task.SHA256) {
		return models.NewNotFoundError("Task", task.ID)
	}
	return nil
}

// UpdateTask revalidates like a submission but skips the reference-solution
// requirement and the duplicate check against the task itself.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, taskSHA string, in validation.TaskSubmission, editor *models.User) (*models.AnalysisTask, error) {
	if editor == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}

	task, err := s.taskRepo.GetByID(ctx, taskID, editor.ID)
	if err != nil {
		return nil, err
	}
	if err := matchSHA256(task, taskSHA); err != nil {
		return nil, err
	}
	if !editor.CanEditTask(task) {
		return nil, models.NewForbiddenError("You do not have permission to edit this task")
	}

	errs := validation.ValidateTask(&in, editor, true)

	sha := strings.ToLower(strings.TrimSpace(in.SHA256))
	if _, taken := errs["sha256"]; !taken && sha != "" && sha != task.SHA256 {
		exists, err := s.taskRepo.ExistsBySHA256(ctx, sha)
		if err != nil {
			return nil, err
		}
		if exists {
			errs["sha256"] = "A sample with this SHA256 already exists."
		}
	}
	if len(errs) > 0 {
		return nil, models.NewFieldValidationError(errs)
	}

	imageURL, err := s.resolveImageURL(ctx, in.ImageID)
	if err != nil {
		return nil, err
	}

	task.SHA256 = sha
	task.DownloadLink = strings.TrimSpace(in.DownloadLink)
	task.Goal = strings.TrimSpace(in.Goal)
	task.Description = strings.TrimSpace(in.Description)
	task.Difficulty = models.Difficulty(in.Difficulty)
	task.YouTubeID = strings.TrimSpace(in.YouTubeID)
	if imageURL != "" {
		task.ImageURL = imageURL
	}

	tags := validation.NormalizeLabels(in.Tags)
	tools := validation.NormalizeLabels(in.Tools)
	if err := s.taskRepo.Update(ctx, task, tags, tools); err != nil {
		return nil, err
	}
	return s.taskRepo.GetByID(ctx, taskID, editor.ID)
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID uint, taskSHA string, user *models.User) error {
	if user == nil {
		return models.NewUnauthorizedError("Login required")
	}
	task, err := s.taskRepo.GetByID(ctx, taskID, user.ID)
	if err != nil {
		return err
	}
	if err := matchSHA256(task, taskSHA); err != nil {
		return err
	}
	if !user.CanEditTask(task) {
		return models.NewForbiddenError("You do not have permission to delete this task")
	}
	return s.taskRepo.Delete(ctx, taskID)
}

// GetTask fetches the detail view, bumps the view counter, and filters out
// solutions still inside their hiding window for the given viewer.
func (s *TaskService) GetTask(ctx context.Context, taskID uint, taskSHA string, viewer *models.User) (*models.AnalysisTask, error) {
	var viewerID uint
	if viewer != nil {
		viewerID = viewer.ID
	}

	task, err := s.taskRepo.GetByID(ctx, taskID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := matchSHA256(task, taskSHA); err != nil {
		return nil, err
	}

	if err := s.taskRepo.IncrementViewCount(ctx, taskID); err != nil {
		return nil, err
	}
	// Reflect the increment without re-reading the row.
	task.ViewCount++

	now := time.Now()
	visible := make([]models.Solution, 0, len(task.Solutions))
	for _, sol := range task.Solutions {
		if !sol.CurrentlyHidden(now) {
			visible = append(visible, sol)
			continue
		}
		if viewer != nil && (viewer.IsStaff || viewer.ID == sol.AuthorID || viewer.ID == task.AuthorID) {
			visible = append(visible, sol)
		}
	}
	task.Solutions = visible

	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, in ListTasksInput) ([]*models.AnalysisTask, error) {
	f := repository.TaskFilter{
		Query:      in.Query,
		Tag:        in.Tag,
		Difficulty: in.Difficulty,
		Sort:       in.Sort,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.FavoritesOnly {
		if in.CurrentUserID == 0 {
			return nil, models.NewUnauthorizedError("Login required")
		}
		f.FavoritesOf = in.CurrentUserID
	}
	return s.taskRepo.List(ctx, f, in.CurrentUserID)
}

// ToggleFavorite flips the caller's favorite on a task and returns the new
// state with the updated count.
func (s *TaskService) ToggleFavorite(ctx context.Context, userID, taskID uint) (bool, int, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID, userID); err != nil {
		return false, 0, err
	}
	return s.taskRepo.ToggleFavorite(ctx, userID, taskID)
}

func (s *TaskService) ListTags(ctx context.Context) ([]models.Label, error) {
	return s.taskRepo.TagsInUse(ctx)
}

func (s *TaskService) ListImages(ctx context.Context) ([]models.SampleImage, error) {
	if s.imageRepo == nil {
		return nil, nil
	}
	return s.imageRepo.List(ctx)
}

// resolveImageURL maps a gallery image id to its URL. Zero means no artwork.
func (s *TaskService) resolveImageURL(ctx context.Context, imageID uint) (string, error) {
	if imageID == 0 || s.imageRepo == nil {
		return "", nil
	}
	img, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return "", models.NewValidationError("Select a valid image.")
	}
	return img.URL, nil
}

func buildReferenceSolution(ref *validation.ReferenceSolutionInput, authorID uint) *models.Solution {
	if !ref.Provided() {
		return nil
	}
	return &models.Solution{
		Title:        strings.TrimSpace(ref.Title),
		SolutionType: models.SolutionType(ref.SolutionType),
		URL:          strings.TrimSpace(ref.URL),
		Content:      ref.Content,
		AuthorID:     authorID,
	}
}
