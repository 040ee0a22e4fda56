package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/service/access"
	"CourseForge/pkg/logger"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	// CreateEnrollment inserts the enrollment and fans out one incomplete
	// progress record per existing lesson in a single transaction.
	CreateEnrollment(ctx context.Context, enrollment models.Enrollment) (*models.Enrollment, error)
	EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error)
	EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error)
	ProgressCounts(ctx context.Context, enrollmentID uuid.UUID) (total, completed int, err error)
}

type progressRepo interface {
	ProgressByID(ctx context.Context, id uuid.UUID) (*models.LessonProgress, error)
	ProgressByStudent(ctx context.Context, studentID uuid.UUID) ([]models.LessonProgress, error)
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	// FirstIncompletePrerequisite returns the lowest-order lesson below the
	// given order whose progress is still incomplete, or nil when the
	// sequential rule is satisfied.
	FirstIncompletePrerequisite(ctx context.Context, enrollmentID uuid.UUID, order int) (*models.Lesson, error)
	// CompleteProgress marks the record completed and, when every lesson of
	// the course is now complete, stamps the enrollment's completed_at with
	// a conditional update. courseCompleted reports whether this call was
	// the one that completed the enrollment.
	CompleteProgress(ctx context.Context, progressID uuid.UUID, now time.Time) (progress *models.LessonProgress, courseCompleted bool, err error)
}

type completionQueue interface {
	Enqueue(enrollmentID uuid.UUID)
}

type EnrollmentService struct {
	log            logger.Log
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
	progressRepo   progressRepo
	queue          completionQueue
}

func NewEnrollmentService(l logger.Log, c courseRepo, e enrollmentRepo, p progressRepo, q completionQueue) *EnrollmentService {
	return &EnrollmentService{
		log:            l,
		courseRepo:     c,
		enrollmentRepo: e,
		progressRepo:   p,
		queue:          q,
	}
}

// Enroll creates an enrollment for the student. Each precondition is a
// distinct failure; the progress fan-out is atomic with the enrollment
// insert, so a zero-lesson course enrolls with zero progress records.
func (s *EnrollmentService) Enroll(ctx context.Context, principal *models.User, courseID uuid.UUID) (*models.Enrollment, error) {
	if err := access.Require(principal, access.IsStudent); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished() {
		return nil, app_errors.InvalidState("course", "course not open for enrollment")
	}
	if course.InstructorID == principal.ID {
		return nil, app_errors.InvalidState("course", "owner cannot enroll")
	}

	enrollment := models.Enrollment{
		StudentID: principal.ID,
		CourseID:  courseID,
	}
	created, err := s.enrollmentRepo.CreateEnrollment(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	s.log.Info("student enrolled", "enrollment_id", created.ID, "course_id", courseID)
	return created, nil
}

func (s *EnrollmentService) Enrollments(ctx context.Context, principal *models.User) ([]models.Enrollment, error) {
	if err := access.Require(principal, access.IsStudent); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.EnrollmentsByStudent(ctx, principal.ID)
}

// EnrollmentWithProgress returns the enrollment together with its derived
// progress snapshot. Ownership failure on an existing enrollment is an
// authorization error, not a not-found.
func (s *EnrollmentService) EnrollmentWithProgress(ctx context.Context, principal *models.User, id uuid.UUID) (*models.Enrollment, models.ProgressSnapshot, error) {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, id)
	if err != nil {
		return nil, models.ProgressSnapshot{}, err
	}
	if err := access.Require(principal, access.IsStudent, access.EnrollmentOwner(enrollment)); err != nil {
		return nil, models.ProgressSnapshot{}, err
	}
	total, completed, err := s.enrollmentRepo.ProgressCounts(ctx, id)
	if err != nil {
		return nil, models.ProgressSnapshot{}, err
	}
	return enrollment, models.NewProgressSnapshot(total, completed, enrollment.CompletedAt), nil
}

func (s *EnrollmentService) ListProgress(ctx context.Context, principal *models.User) ([]models.LessonProgress, error) {
	if err := access.Require(principal, access.IsStudent); err != nil {
		return nil, err
	}
	return s.progressRepo.ProgressByStudent(ctx, principal.ID)
}

// CompleteLesson marks a progress record completed, enforcing the
// sequential-completion rule. Completing an already-completed lesson is
// idempotent: no error, no state change, no duplicate notification.
func (s *EnrollmentService) CompleteLesson(ctx context.Context, principal *models.User, progressID uuid.UUID) (*models.LessonProgress, error) {
	progress, err := s.progressRepo.ProgressByID(ctx, progressID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, progress.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(principal, access.IsStudent, access.EnrollmentOwner(enrollment)); err != nil {
		return nil, err
	}
	if progress.Completed {
		return progress, nil
	}

	lesson, err := s.progressRepo.LessonByID(ctx, progress.LessonID)
	if err != nil {
		return nil, err
	}
	prerequisite, err := s.progressRepo.FirstIncompletePrerequisite(ctx, enrollment.ID, lesson.Order)
	if err != nil {
		return nil, err
	}
	if prerequisite != nil {
		return nil, app_errors.Validation("lesson",
			fmt.Sprintf("You must complete lesson %d (%s) before completing this lesson.", prerequisite.Order, prerequisite.Title))
	}

	updated, courseCompleted, err := s.progressRepo.CompleteProgress(ctx, progressID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if courseCompleted {
		s.queue.Enqueue(enrollment.ID)
		s.log.Info("course completed", "enrollment_id", enrollment.ID)
	}
	return updated, nil
}

// UpdateProgress is the PATCH surface over a progress record. Setting
// completed=true delegates to CompleteLesson; completion is never undone.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, principal *models.User, progressID uuid.UUID, completed *bool, lessonID *uuid.UUID) (*models.LessonProgress, error) {
	progress, err := s.progressRepo.ProgressByID(ctx, progressID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, progress.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(principal, access.IsStudent, access.EnrollmentOwner(enrollment)); err != nil {
		return nil, err
	}

	if lessonID != nil && *lessonID != progress.LessonID {
		lesson, err := s.progressRepo.LessonByID(ctx, *lessonID)
		if err != nil {
			return nil, err
		}
		if lesson.CourseID != enrollment.CourseID {
			return nil, app_errors.Validation("lesson", "Lesson does not belong to the enrolled course")
		}
		return nil, app_errors.Validation("lesson", "progress records cannot be moved to another lesson")
	}

	if completed == nil {
		return progress, nil
	}
	if !*completed {
		if progress.Completed {
			return nil, app_errors.InvalidState("completed", "lesson completion cannot be undone")
		}
		return progress, nil
	}
	return s.CompleteLesson(ctx, principal, progressID)
}

// Snapshot recomputes the progress metrics for an enrollment.
func (s *EnrollmentService) Snapshot(ctx context.Context, enrollmentID uuid.UUID) (models.ProgressSnapshot, error) {
	enrollment, err := s.enrollmentRepo.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return models.ProgressSnapshot{}, err
	}
	total, completed, err := s.enrollmentRepo.ProgressCounts(ctx, enrollmentID)
	if err != nil {
		return models.ProgressSnapshot{}, err
	}
	return models.NewProgressSnapshot(total, completed, enrollment.CompletedAt), nil
}
