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

// courseCodeLockID serializes course-code generation across concurrent
// transactions via an advisory lock.
const courseCodeLockID = 874002391

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

// CreateCourse assigns the next sequential code and inserts the course in
// one transaction. The advisory lock makes read-max-then-insert atomic;
// the unique constraint on code is the backstop.
func (r *CoursePostgres) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, courseCodeLockID); err != nil {
		return nil, fmt.Errorf("failed to take course code lock: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT code FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("failed to read course codes: %w", err)
	}
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return nil, err
		}
		codes = append(codes, code)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	course.Code = models.NextCourseCode(codes)

	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (id, code, title, description, instructor_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		course.ID, course.Code, course.Title, course.Description,
		course.InstructorID, course.Status, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert course: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	const query = `
		SELECT id, code, title, description, instructor_id, status, created_at, updated_at
		FROM courses
		WHERE id = $1
	`
	course := &models.Course{}
	row := r.db.QueryRow(ctx, query, id)
	err := row.Scan(
		&course.ID, &course.Code, &course.Title, &course.Description,
		&course.InstructorID, &course.Status, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NotFound("Course not found")
		}
		return nil, err
	}

	return course, nil
}

// PublishCourse flips a draft course to published. The status guard in
// the WHERE clause keeps the transition one-way under concurrency.
func (r *CoursePostgres) PublishCourse(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE courses
		   SET status = 'published',
		       updated_at = NOW()
		 WHERE id = $1 AND status = 'draft'
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.InvalidState("status", "Only draft courses can be published")
	}
	return nil
}

func (r *CoursePostgres) CoursesByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	const query = `
		SELECT id, code, title, description, instructor_id, status, created_at, updated_at
		FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query, instructorID)
}

func (r *CoursePostgres) CoursesByStatus(ctx context.Context, status string) ([]models.Course, error) {
	const query = `
		SELECT id, code, title, description, instructor_id, status, created_at, updated_at
		FROM courses
		WHERE status = $1
		ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query, status)
}

func (r *CoursePostgres) queryCourses(ctx context.Context, query string, arg interface{}) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Title, &c.Description,
			&c.InstructorID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
