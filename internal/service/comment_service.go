package service

import (
	"context"
	"fmt"
	"strings"

	"samplepedia/internal/models"
	"samplepedia/internal/repository"
)

// CommentService manages the discussion threads on task detail pages.
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	notify      func(ctx context.Context, n *models.Notification) // nil disables
}

type CreateCommentInput struct {
	TaskID  uint
	Content string
	User    *models.User
}

type UpdateCommentInput struct {
	CommentID uint
	Content   string
	User      *models.User
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	notify func(ctx context.Context, n *models.Notification),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		notify:      notify,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.User == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}

	task, err := s.taskRepo.GetByID(ctx, in.TaskID, in.User.ID)
	if err != nil {
		return nil, err
	}

	const maxCommentLen = 10000

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		TaskID:  task.ID,
		UserID:  in.User.ID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notify != nil && in.User.ID != task.AuthorID {
		s.notify(ctx, &models.Notification{
			RecipientID: task.AuthorID,
			ActorID:     in.User.ID,
			Verb:        models.VerbCommented,
			Description: fmt.Sprintf("%s commented on your sample", in.User.Username),
			SHA256:      task.SHA256,
			TargetURL:   task.DetailURL(),
		})
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, taskID uint) ([]*models.Comment, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTask(ctx, taskID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if in.User == nil {
		return nil, models.NewUnauthorizedError("Login required")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.User.ID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment allows the comment author, staff, or the task's author to
// remove a comment.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, user *models.User) error {
	if user == nil {
		return models.NewUnauthorizedError("Login required")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != user.ID && !user.IsStaff && comment.Task.AuthorID != user.ID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}
