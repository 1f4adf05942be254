// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered Samplepedia account.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	// IsStaff grants moderation rights: edit/delete any task, submit without a
	// reference solution, use non-allowlisted download links.
	IsStaff bool `gorm:"default:false" json:"is_staff"`
	// IsContributor marks membership in the contributor group, which grants
	// edit rights on any task without full staff powers.
	IsContributor bool           `gorm:"default:false" json:"is_contributor"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Tasks     []AnalysisTask `gorm:"foreignKey:AuthorID" json:"tasks,omitempty"`
	Solutions []Solution     `gorm:"foreignKey:AuthorID" json:"solutions,omitempty"`
}

// CanEditTask reports whether the user may edit or delete the given task.
func (u *User) CanEditTask(task *AnalysisTask) bool {
	if u == nil || task == nil {
		return false
	}
	return u.ID == task.AuthorID || u.IsStaff || u.IsContributor
}
