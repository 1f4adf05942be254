package models

import (
	"time"
)

// Course is an external training course whose lectures work through catalog
// samples. Samples pinned to a course are listed on the course page instead
// of the main catalogue.
type Course struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	URL      string `gorm:"size:500" json:"url,omitempty"`
	ImageURL string `gorm:"size:500" json:"image_url,omitempty"`

	// SampleCount is not persisted; computed at query time.
	SampleCount int `gorm:"->" json:"sample_count"`

	References []CourseReference `gorm:"foreignKey:CourseID" json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
}

// CourseReference pins samples to a lecture slot within a course. The
// (course, section, lecture) triple is unique.
type CourseReference struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CourseID      uint   `gorm:"not null;uniqueIndex:idx_course_lecture" json:"course_id"`
	Course        Course `gorm:"foreignKey:CourseID" json:"-"`
	Section       int    `gorm:"not null;uniqueIndex:idx_course_lecture" json:"section"`
	LectureNumber int    `gorm:"not null;uniqueIndex:idx_course_lecture" json:"lecture_number"`
	LectureTitle  string `gorm:"size:500;not null" json:"lecture_title"`

	Tasks []AnalysisTask `gorm:"many2many:task_course_references" json:"tasks,omitempty"`
}
