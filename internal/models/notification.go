// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Notification verbs.
const (
	VerbLiked         = "liked"
	VerbCommented     = "commented"
	VerbAddedSolution = "added_solution"
	VerbLikedSolution = "liked_solution"
)

// Notification records an activity directed at a user: someone favorited
// their task, commented on it, added a solution, or liked their solution.
type Notification struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecipientID uint   `gorm:"not null;index:idx_notifications_recipient_unread" json:"recipient_id"`
	Recipient   User   `gorm:"foreignKey:RecipientID" json:"-"`
	ActorID     uint   `gorm:"not null" json:"actor_id"`
	Actor       User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Verb        string `gorm:"size:50;not null" json:"verb"`
	Description string `gorm:"type:text;not null" json:"description"`
	// SHA256 links the notification back to the sample it concerns, when any.
	SHA256 string `gorm:"size:64" json:"sha256,omitempty"`
	// TargetURL is the detail page the notification should navigate to.
	TargetURL string    `gorm:"size:500" json:"url"`
	Unread    bool      `gorm:"default:true;index:idx_notifications_recipient_unread" json:"unread"`
	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}
