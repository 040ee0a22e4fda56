package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

// CreateEnrollment inserts the enrollment and fans out one incomplete
// progress record per lesson currently in the course, all in one
// transaction. The (student, course) unique constraint turns a concurrent
// double-enroll into a conflict instead of a duplicate.
func (r *EnrollmentPostgres) CreateEnrollment(ctx context.Context, enrollment models.Enrollment) (*models.Enrollment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	now := time.Now().UTC()
	enrollment.EnrolledAt = now
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	insertQuery := `
		INSERT INTO enrollments (id, student_id, course_id, enrolled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insertQuery,
		enrollment.ID, enrollment.StudentID, enrollment.CourseID,
		enrollment.EnrolledAt, enrollment.CreatedAt, enrollment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.Conflict("course", "already enrolled")
		}
		return nil, fmt.Errorf("failed to insert enrollment: %w", err)
	}

	fanOutQuery := `
		INSERT INTO lesson_progress (id, enrollment_id, lesson_id, completed, created_at, updated_at)
		SELECT gen_random_uuid(), $1, id, FALSE, $2, $2
		FROM lessons
		WHERE course_id = $3
	`
	if _, err = tx.Exec(ctx, fanOutQuery, enrollment.ID, now, enrollment.CourseID); err != nil {
		return nil, fmt.Errorf("failed to fan out lesson progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentPostgres) EnrollmentByID(ctx context.Context, id uuid.UUID) (*models.Enrollment, error) {
	query := `
		SELECT e.id, e.student_id, e.course_id, c.title, e.enrolled_at, e.completed_at, e.created_at, e.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.id = $1
	`
	var e models.Enrollment
	row := r.db.QueryRow(ctx, query, id)
	err := row.Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.CourseTitle,
		&e.EnrolledAt, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NotFound("Enrollment not found")
		}
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentPostgres) EnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Enrollment, error) {
	query := `
		SELECT e.id, e.student_id, e.course_id, c.title, e.enrolled_at, e.completed_at, e.created_at, e.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1
		ORDER BY e.enrolled_at DESC
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.CourseTitle,
			&e.EnrolledAt, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ProgressCounts returns the lesson total for the enrollment's course and
// how many of this enrollment's progress records are completed.
func (r *EnrollmentPostgres) ProgressCounts(ctx context.Context, enrollmentID uuid.UUID) (total, completed int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM lessons l JOIN enrollments e ON e.course_id = l.course_id WHERE e.id = $1),
			(SELECT COUNT(*) FROM lesson_progress WHERE enrollment_id = $1 AND completed = TRUE)
	`
	err = r.db.QueryRow(ctx, query, enrollmentID).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count progress: %w", err)
	}
	return total, completed, nil
}

// CompletionDetails resolves the student and course behind an enrollment
// for the notifier.
func (r *EnrollmentPostgres) CompletionDetails(ctx context.Context, enrollmentID uuid.UUID) (*models.CompletionDetails, error) {
	query := `
		SELECT e.id, u.email, u.full_name, c.title
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		JOIN courses c ON c.id = e.course_id
		WHERE e.id = $1
	`
	var details models.CompletionDetails
	row := r.db.QueryRow(ctx, query, enrollmentID)
	err := row.Scan(&details.EnrollmentID, &details.StudentEmail, &details.StudentName, &details.CourseTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NotFound("Enrollment not found")
		}
		return nil, err
	}
	return &details, nil
}
