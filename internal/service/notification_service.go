package service

import (
	"context"
	"regexp"
	"time"

	"samplepedia/internal/middleware"
	"samplepedia/internal/models"
	"samplepedia/internal/repository"
)

// quotedTitle matches the quoted solution title embedded in liked_solution
// descriptions, e.g. "mallory liked your solution 'Unpacking X'".
var quotedTitle = regexp.MustCompile(` '[^']*'`)

// NotificationService stores notifications and hands them to the live
// fan-out when one is wired.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	publish          func(n *models.Notification) // live delivery, nil disables
}

// NotificationEntry is the dropdown payload shape.
type NotificationEntry struct {
	ID          uint   `json:"id"`
	Verb        string `json:"verb"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
	URL         string `json:"url"`
	SHA256      string `json:"sha256"`
}

type DropdownPayload struct {
	Notifications []NotificationEntry `json:"notifications"`
	UnreadCount   int64               `json:"unread_count"`
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publish func(n *models.Notification),
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		publish:          publish,
	}
}

// Notify persists the notification and pushes it to the live stream. Failures
// are logged; they never propagate into the action that triggered them.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) {
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to store notification",
			"verb", n.Verb, "recipient_id", n.RecipientID, "error", err)
		return
	}
	if s.publish != nil {
		s.publish(n)
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, recipientID)
}

// Dropdown returns the latest five unread notifications with the total unread
// count. liked_solution descriptions have the quoted title stripped to keep
// dropdown rows short.
func (s *NotificationService) Dropdown(ctx context.Context, recipientID uint) (*DropdownPayload, error) {
	unread, err := s.notificationRepo.TopUnread(ctx, recipientID, 5)
	if err != nil {
		return nil, err
	}
	count, err := s.notificationRepo.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	entries := make([]NotificationEntry, 0, len(unread))
	for _, n := range unread {
		description := n.Description
		if n.Verb == models.VerbLikedSolution {
			description = quotedTitle.ReplaceAllString(description, "")
		}
		entries = append(entries, NotificationEntry{
			ID:          n.ID,
			Verb:        n.Verb,
			Description: description,
			Timestamp:   n.CreatedAt.Format(time.RFC3339),
			URL:         n.TargetURL,
			SHA256:      n.SHA256,
		})
	}

	return &DropdownPayload{Notifications: entries, UnreadCount: count}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	return s.notificationRepo.MarkRead(ctx, id, recipientID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, id, recipientID uint) error {
	return s.notificationRepo.Delete(ctx, id, recipientID)
}
