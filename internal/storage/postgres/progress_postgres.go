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

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

func (r *ProgressPostgres) ProgressByID(ctx context.Context, id uuid.UUID) (*models.LessonProgress, error) {
	query := `
		SELECT p.id, p.enrollment_id, p.lesson_id, l.title, p.completed, p.completed_at, p.created_at, p.updated_at
		FROM lesson_progress p
		JOIN lessons l ON l.id = p.lesson_id
		WHERE p.id = $1
	`
	var p models.LessonProgress
	row := r.db.QueryRow(ctx, query, id)
	err := row.Scan(
		&p.ID, &p.EnrollmentID, &p.LessonID, &p.LessonTitle,
		&p.Completed, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NotFound("Progress record not found")
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProgressPostgres) ProgressByStudent(ctx context.Context, studentID uuid.UUID) ([]models.LessonProgress, error) {
	query := `
		SELECT p.id, p.enrollment_id, p.lesson_id, l.title, p.completed, p.completed_at, p.created_at, p.updated_at
		FROM lesson_progress p
		JOIN lessons l ON l.id = p.lesson_id
		JOIN enrollments e ON e.id = p.enrollment_id
		WHERE e.student_id = $1
		ORDER BY p.enrollment_id, l.lesson_order
	`
	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []models.LessonProgress
	for rows.Next() {
		var p models.LessonProgress
		if err := rows.Scan(
			&p.ID, &p.EnrollmentID, &p.LessonID, &p.LessonTitle,
			&p.Completed, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ProgressPostgres) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	return NewLessonPostgres(r.db).LessonByID(ctx, id)
}

// FirstIncompletePrerequisite returns the lowest-order lesson before the
// given order whose progress for this enrollment is still incomplete.
// This is the tie-break the sequential rule reports: always the earliest
// blocking lesson.
func (r *ProgressPostgres) FirstIncompletePrerequisite(ctx context.Context, enrollmentID uuid.UUID, order int) (*models.Lesson, error) {
	query := `
		SELECT l.id, l.course_id, l.title, l.content, l.lesson_order, l.created_at, l.updated_at
		FROM lessons l
		JOIN lesson_progress p ON p.lesson_id = l.id AND p.enrollment_id = $1
		WHERE l.lesson_order < $2 AND p.completed = FALSE
		ORDER BY l.lesson_order
		LIMIT 1
	`
	var lesson models.Lesson
	row := r.db.QueryRow(ctx, query, enrollmentID, order)
	err := row.Scan(
		&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
		&lesson.Order, &lesson.CreatedAt, &lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lesson, nil
}

// CompleteProgress marks the record completed and evaluates course
// completion in the same transaction. The row lock plus the conditional
// completed_at update guarantee the completion is detected, and the
// notification therefore enqueued, at most once per enrollment.
func (r *ProgressPostgres) CompleteProgress(ctx context.Context, progressID uuid.UUID, now time.Time) (*models.LessonProgress, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	lockQuery := `
		SELECT id, enrollment_id, lesson_id, completed, completed_at, created_at, updated_at
		FROM lesson_progress
		WHERE id = $1
		FOR UPDATE
	`
	var p models.LessonProgress
	row := tx.QueryRow(ctx, lockQuery, progressID)
	err = row.Scan(&p.ID, &p.EnrollmentID, &p.LessonID, &p.Completed, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, app_errors.NotFound("Progress record not found")
		}
		return nil, false, err
	}
	if p.Completed {
		// Lost a race with an identical request; idempotent either way.
		return &p, false, tx.Commit(ctx)
	}

	updateQuery := `
		UPDATE lesson_progress
		   SET completed = TRUE, completed_at = $2, updated_at = $2
		 WHERE id = $1
	`
	if _, err = tx.Exec(ctx, updateQuery, progressID, now); err != nil {
		return nil, false, fmt.Errorf("failed to complete progress: %w", err)
	}
	p.Completed = true
	p.CompletedAt = &now
	p.UpdatedAt = now

	countQuery := `
		SELECT
			(SELECT COUNT(*) FROM lessons l JOIN enrollments e ON e.course_id = l.course_id WHERE e.id = $1),
			(SELECT COUNT(*) FROM lesson_progress WHERE enrollment_id = $1 AND completed = TRUE)
	`
	var total, completed int
	if err = tx.QueryRow(ctx, countQuery, p.EnrollmentID).Scan(&total, &completed); err != nil {
		return nil, false, fmt.Errorf("failed to count progress: %w", err)
	}

	courseCompleted := false
	if total > 0 && completed == total {
		completeQuery := `
			UPDATE enrollments
			   SET completed_at = $2, updated_at = $2
			 WHERE id = $1 AND completed_at IS NULL
		`
		cmdTag, err := tx.Exec(ctx, completeQuery, p.EnrollmentID, now)
		if err != nil {
			return nil, false, fmt.Errorf("failed to complete enrollment: %w", err)
		}
		courseCompleted = cmdTag.RowsAffected() == 1
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &p, courseCompleted, nil
}
