package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/service/access"
	"CourseForge/pkg/logger"
)

type courseRepo interface {
	CreateCourse(ctx context.Context, course models.Course) (*models.Course, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	PublishCourse(ctx context.Context, id uuid.UUID) error
	CoursesByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error)
	CoursesByStatus(ctx context.Context, status string) ([]models.Course, error)
}

type lessonRepo interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error)
	CreateLessons(ctx context.Context, lessons []models.Lesson) ([]models.Lesson, error)
	OrdersByCourse(ctx context.Context, courseID uuid.UUID) ([]int, error)
	LessonsByInstructor(ctx context.Context, instructorID uuid.UUID, courseID *uuid.UUID) ([]models.Lesson, error)
	LessonsByEnrolledStudent(ctx context.Context, studentID uuid.UUID, courseID *uuid.UUID) ([]models.Lesson, error)
}

type CatalogService struct {
	log        logger.Log
	courseRepo courseRepo
	lessonRepo lessonRepo
}

func NewCatalogService(l logger.Log, c courseRepo, lr lessonRepo) *CatalogService {
	return &CatalogService{
		log:        l,
		courseRepo: c,
		lessonRepo: lr,
	}
}

// CreateCourse persists a new draft course for the instructor. The course
// code is assigned inside the repository transaction so concurrent creates
// cannot observe the same highest suffix.
func (s *CatalogService) CreateCourse(ctx context.Context, principal *models.User, title, description string) (*models.Course, error) {
	if err := access.Require(principal, access.IsInstructor); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, app_errors.Validation("title", "title is required")
	}

	course := models.Course{
		Title:        title,
		Description:  description,
		InstructorID: principal.ID,
		Status:       models.StatusDraft,
	}
	created, err := s.courseRepo.CreateCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	s.log.Info("course created", "course_id", created.ID, "code", created.Code)
	return created, nil
}

// Publish moves a draft course to published. The transition is one-way.
func (s *CatalogService) Publish(ctx context.Context, principal *models.User, courseID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(principal, access.CourseOwner(course)); err != nil {
		return nil, err
	}
	if course.Status != models.StatusDraft {
		return nil, app_errors.InvalidState("status", "Only draft courses can be published")
	}
	if err := s.courseRepo.PublishCourse(ctx, courseID); err != nil {
		return nil, err
	}
	course.Status = models.StatusPublished
	return course, nil
}

func (s *CatalogService) AddLesson(ctx context.Context, principal *models.User, courseID uuid.UUID, title, content string, order int) (*models.Lesson, error) {
	if err := access.Require(principal, access.IsInstructor); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(principal, access.CourseOwner(course)); err != nil {
		return nil, err
	}
	if order < 1 {
		return nil, app_errors.Validation("order", "order must be a positive integer")
	}

	lesson := models.Lesson{
		CourseID: courseID,
		Title:    title,
		Content:  content,
		Order:    order,
	}
	return s.lessonRepo.CreateLesson(ctx, lesson)
}

type NewLesson struct {
	Title   string
	Content string
	Order   int
}

// BulkAddLessons creates all submitted lessons or none. Orders must be
// unique among themselves and against the course's existing lessons; the
// returned conflict error lists every conflicting order value.
func (s *CatalogService) BulkAddLessons(ctx context.Context, principal *models.User, courseID uuid.UUID, lessons []NewLesson) ([]models.Lesson, error) {
	if err := access.Require(principal, access.IsInstructor); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(principal, access.CourseOwner(course)); err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, app_errors.Validation("lessons", "at least one lesson is required")
	}
	for _, l := range lessons {
		if l.Order < 1 {
			return nil, app_errors.Validation("lessons", "order must be a positive integer")
		}
	}

	existing, err := s.lessonRepo.OrdersByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[int]struct{}, len(existing))
	for _, o := range existing {
		existingSet[o] = struct{}{}
	}

	seen := make(map[int]struct{}, len(lessons))
	conflictSet := make(map[int]struct{})
	for _, l := range lessons {
		if _, dup := seen[l.Order]; dup {
			conflictSet[l.Order] = struct{}{}
		}
		seen[l.Order] = struct{}{}
		if _, taken := existingSet[l.Order]; taken {
			conflictSet[l.Order] = struct{}{}
		}
	}
	if len(conflictSet) > 0 {
		conflicts := make([]int, 0, len(conflictSet))
		for o := range conflictSet {
			conflicts = append(conflicts, o)
		}
		sort.Ints(conflicts)
		return nil, app_errors.Conflict("lessons",
			fmt.Sprintf("Lesson orders %v conflict within the request or with existing lessons in this course.", conflicts))
	}

	toCreate := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		toCreate = append(toCreate, models.Lesson{
			CourseID: courseID,
			Title:    l.Title,
			Content:  l.Content,
			Order:    l.Order,
		})
	}
	return s.lessonRepo.CreateLessons(ctx, toCreate)
}

// ListCourses applies the role visibility rule: instructors see their own
// courses in any status, students see published courses, anything else
// sees an empty list rather than an error.
func (s *CatalogService) ListCourses(ctx context.Context, principal *models.User) ([]models.Course, error) {
	if principal == nil {
		return nil, app_errors.Authentication("authentication required")
	}
	switch principal.Role {
	case models.RoleInstructor:
		return s.courseRepo.CoursesByInstructor(ctx, principal.ID)
	case models.RoleStudent:
		return s.courseRepo.CoursesByStatus(ctx, models.StatusPublished)
	default:
		return []models.Course{}, nil
	}
}

// ListLessons returns lessons visible to the principal, ascending by order.
// Students see lessons of enrolled courses regardless of the course's
// current status.
func (s *CatalogService) ListLessons(ctx context.Context, principal *models.User, courseID *uuid.UUID) ([]models.Lesson, error) {
	if principal == nil {
		return nil, app_errors.Authentication("authentication required")
	}
	switch principal.Role {
	case models.RoleInstructor:
		return s.lessonRepo.LessonsByInstructor(ctx, principal.ID, courseID)
	case models.RoleStudent:
		return s.lessonRepo.LessonsByEnrolledStudent(ctx, principal.ID, courseID)
	default:
		return []models.Lesson{}, nil
	}
}
