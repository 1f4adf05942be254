// Package models contains data structures for the application's domain models.
package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Difficulty classifies how hard a sample is to analyze.
type Difficulty string

const (
	// DifficultyEasy is the entry-level tier.
	DifficultyEasy Difficulty = "easy"
	// DifficultyMedium is the intermediate tier.
	DifficultyMedium Difficulty = "medium"
	// DifficultyAdvanced is the hardest user-selectable tier.
	DifficultyAdvanced Difficulty = "advanced"
	// DifficultyExpert is reserved for curated samples and is never offered
	// as a submission choice.
	DifficultyExpert Difficulty = "expert"
)

// SubmittableDifficulties are the choices offered on the submission form.
// Expert is deliberately absent.
var SubmittableDifficulties = []Difficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyAdvanced,
}

// DifficultyPoints maps each tier to its score multiplier. A like on a task
// or solution is worth this many points to its author.
var DifficultyPoints = map[Difficulty]int{
	DifficultyEasy:     10,
	DifficultyMedium:   20,
	DifficultyAdvanced: 40,
	DifficultyExpert:   80,
}

// Rank orders difficulties for sorting (easy < medium < advanced < expert).
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyAdvanced:
		return 3
	case DifficultyExpert:
		return 4
	}
	return 0
}

// Points returns the score multiplier for the difficulty, defaulting to 1
// for unknown values.
func (d Difficulty) Points() int {
	if p, ok := DifficultyPoints[d]; ok {
		return p
	}
	return 1
}

// SHA256Pattern matches a full SHA256 hash in hex form.
var SHA256Pattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// AnalysisTask is a cataloged malware sample with analysis metadata.
type AnalysisTask struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SHA256       string     `gorm:"size:64;uniqueIndex;not null" json:"sha256"`
	DownloadLink string     `gorm:"size:500;not null" json:"download_link"`
	Goal         string     `gorm:"type:text;not null" json:"goal"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	Difficulty   Difficulty `gorm:"size:10;default:'easy';index" json:"difficulty"`
	YouTubeID    string     `gorm:"size:32" json:"youtube_id,omitempty"`
	ImageURL     string     `gorm:"size:500" json:"image_url,omitempty"`
	ViewCount    int        `gorm:"default:0" json:"view_count"`
	AuthorID     uint       `gorm:"not null;index" json:"author_id"`
	Author       User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Tags  []Label `gorm:"many2many:task_tags" json:"tags,omitempty"`
	Tools []Label `gorm:"many2many:task_tools" json:"tools,omitempty"`

	// FavoriteCount is not persisted; computed at query time.
	FavoriteCount int `gorm:"->" json:"like_count"`
	// Liked indicates whether the requesting user has favorited this task (computed).
	Liked bool `gorm:"->" json:"liked"`
	// SolutionCount is not persisted; computed at query time.
	SolutionCount int `gorm:"->" json:"solution_count"`

	Solutions []Solution     `gorm:"foreignKey:TaskID" json:"solutions,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeSave normalizes the hash so lookups are case-insensitive by storage.
func (t *AnalysisTask) BeforeSave(_ *gorm.DB) error {
	t.SHA256 = strings.ToLower(t.SHA256)
	return nil
}

// DetailURL returns the canonical path of the task's detail page.
func (t *AnalysisTask) DetailURL() string {
	return "/sample/" + t.SHA256 + "/"
}

// Favorite marks a task as favorited by a user.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	TaskID    uint      `gorm:"primaryKey" json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Label is a shared tag/tool vocabulary entry. Names are stored lowercase.
type Label struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// SampleImage is a gallery entry that submitters can pick as task artwork.
type SampleImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"size:500;uniqueIndex;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
