package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"student"`
	CourseID    uuid.UUID  `json:"course"`
	CourseTitle string     `json:"course_title,omitempty"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Enrollment) IsCompleted() bool {
	return e.CompletedAt != nil
}

type ProgressSnapshot struct {
	TotalLessons         int     `json:"total_lessons"`
	CompletedLessons     int     `json:"completed_lessons"`
	CompletionPercentage float64 `json:"completion_percentage"`
	IsCompleted          bool    `json:"is_completed"`
}

// NewProgressSnapshot derives the snapshot metrics. Percentage is defined
// as 0.0 for a course without lessons, not an error.
func NewProgressSnapshot(total, completed int, completedAt *time.Time) ProgressSnapshot {
	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(completed)/float64(total)*100*100) / 100
	}
	return ProgressSnapshot{
		TotalLessons:         total,
		CompletedLessons:     completed,
		CompletionPercentage: percentage,
		IsCompleted:          completedAt != nil,
	}
}

// CompletionDetails is what the notifier needs to address a completion message.
type CompletionDetails struct {
	EnrollmentID uuid.UUID
	StudentEmail string
	StudentName  string
	CourseTitle  string
}
