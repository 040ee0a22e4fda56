package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"

	courseCodePrefix = "COURSE"
)

type Course struct {
	ID           uuid.UUID `json:"id"`
	Code         string    `json:"code"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	InstructorID uuid.UUID `json:"instructor_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Course) IsPublished() bool {
	return c.Status == StatusPublished
}

// CodeSuffix extracts the numeric suffix of a course code.
// Malformed or non-numeric suffixes count as 0 so they never win the max.
func CodeSuffix(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(code[idx+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextCourseCode returns the code following the highest numeric suffix
// among the given codes, starting at COURSE-0001 when there are none.
func NextCourseCode(codes []string) string {
	highest := 0
	for _, code := range codes {
		if n := CodeSuffix(code); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%04d", courseCodePrefix, highest+1)
}
