// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// SolutionType distinguishes on-site write-ups from external references.
type SolutionType string

const (
	// SolutionTypeOnsite is a markdown article hosted on Samplepedia itself.
	SolutionTypeOnsite SolutionType = "onsite"
	// SolutionTypeBlog links to an external blog post.
	SolutionTypeBlog SolutionType = "blog"
	// SolutionTypePaper links to a published paper.
	SolutionTypePaper SolutionType = "paper"
	// SolutionTypeVideo links to a video walkthrough.
	SolutionTypeVideo SolutionType = "video"
)

// SolutionTypes lists every valid solution type.
var SolutionTypes = []SolutionType{
	SolutionTypeOnsite,
	SolutionTypeBlog,
	SolutionTypePaper,
	SolutionTypeVideo,
}

// Valid reports whether the type is one of the enumerated values.
func (t SolutionType) Valid() bool {
	switch t {
	case SolutionTypeOnsite, SolutionTypeBlog, SolutionTypePaper, SolutionTypeVideo:
		return true
	}
	return false
}

// External reports whether the solution lives off-site and therefore needs a URL.
func (t SolutionType) External() bool {
	return t.Valid() && t != SolutionTypeOnsite
}

// Solution is an analysis write-up attached to a task. Onsite solutions carry
// markdown content; external ones carry a URL.
type Solution struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	TaskID       uint         `gorm:"not null;index;uniqueIndex:idx_solution_task_title" json:"task_id"`
	Task         AnalysisTask `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Title        string       `gorm:"size:200;not null;uniqueIndex:idx_solution_task_title" json:"title"`
	SolutionType SolutionType `gorm:"size:10;not null" json:"solution_type"`
	URL          string       `gorm:"size:500" json:"url,omitempty"`
	Content      string       `gorm:"type:text" json:"content,omitempty"`
	AuthorID     uint         `gorm:"not null;index" json:"author_id"`
	Author       User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	// ViewCount is only incremented for onsite solutions.
	ViewCount int `gorm:"default:0" json:"view_count"`
	// HiddenUntil delays visibility of a reference solution. Nil means
	// immediately visible.
	HiddenUntil *time.Time `json:"hidden_until,omitempty"`

	// LikeCount is not persisted; computed at query time.
	LikeCount int `gorm:"->" json:"like_count"`
	// Liked indicates whether the requesting user liked this solution (computed).
	Liked bool `gorm:"->" json:"liked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentlyHidden reports whether the solution is inside its hiding window.
func (s *Solution) CurrentlyHidden(now time.Time) bool {
	return s.HiddenUntil != nil && now.Before(*s.HiddenUntil)
}

// VisibleTo reports whether a viewer may see the solution while hidden.
// Staff, the task author, and the solution author always see it.
func (s *Solution) VisibleTo(viewer *User, now time.Time) bool {
	if !s.CurrentlyHidden(now) {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsStaff || viewer.ID == s.AuthorID || viewer.ID == s.Task.AuthorID
}

// SolutionLike marks a solution as liked by a user.
type SolutionLike struct {
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	SolutionID uint      `gorm:"primaryKey" json:"solution_id"`
	CreatedAt  time.Time `json:"created_at"`
}
