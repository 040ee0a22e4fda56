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

type LessonPostgres struct {
	db *pgxpool.Pool
}

func NewLessonPostgres(db *pgxpool.Pool) *LessonPostgres {
	return &LessonPostgres{db: db}
}

func (r *LessonPostgres) CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error) {
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	query := `
		INSERT INTO lessons (id, course_id, title, content, lesson_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		lesson.ID, lesson.CourseID, lesson.Title, lesson.Content,
		lesson.Order, lesson.CreatedAt, lesson.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.Conflict("order", "lesson with this order already exists in this course")
		}
		return nil, fmt.Errorf("failed to insert lesson: %w", err)
	}
	return &lesson, nil
}

// CreateLessons inserts all lessons in one transaction; any failure rolls
// the whole batch back.
func (r *LessonPostgres) CreateLessons(ctx context.Context, lessons []models.Lesson) ([]models.Lesson, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	query := `
		INSERT INTO lessons (id, course_id, title, content, lesson_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	created := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if lesson.ID == uuid.Nil {
			lesson.ID = uuid.New()
		}
		lesson.CreatedAt = now
		lesson.UpdatedAt = now
		_, err = tx.Exec(ctx, query,
			lesson.ID, lesson.CourseID, lesson.Title, lesson.Content,
			lesson.Order, lesson.CreatedAt, lesson.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, app_errors.Conflict("lessons",
					fmt.Sprintf("Lesson orders %v conflict within the request or with existing lessons in this course.", []int{lesson.Order}))
			}
			return nil, fmt.Errorf("failed to insert lesson: %w", err)
		}
		created = append(created, lesson)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *LessonPostgres) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	query := `
		SELECT id, course_id, title, content, lesson_order, created_at, updated_at
		FROM lessons
		WHERE id = $1
	`
	var lesson models.Lesson
	row := r.db.QueryRow(ctx, query, id)
	err := row.Scan(
		&lesson.ID, &lesson.CourseID, &lesson.Title, &lesson.Content,
		&lesson.Order, &lesson.CreatedAt, &lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.NotFound("Lesson not found")
		}
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonPostgres) OrdersByCourse(ctx context.Context, courseID uuid.UUID) ([]int, error) {
	query := `SELECT lesson_order FROM lessons WHERE course_id = $1 ORDER BY lesson_order`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson orders: %w", err)
	}
	defer rows.Close()

	var orders []int
	for rows.Next() {
		var order int
		if err := rows.Scan(&order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *LessonPostgres) LessonsByInstructor(ctx context.Context, instructorID uuid.UUID, courseID *uuid.UUID) ([]models.Lesson, error) {
	query := `
		SELECT l.id, l.course_id, l.title, l.content, l.lesson_order, l.created_at, l.updated_at
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE c.instructor_id = $1
		  AND ($2::uuid IS NULL OR l.course_id = $2)
		ORDER BY l.course_id, l.lesson_order
	`
	return r.queryLessons(ctx, query, instructorID, courseID)
}

// LessonsByEnrolledStudent lists lessons of courses the student is
// enrolled in, regardless of the course's current status.
func (r *LessonPostgres) LessonsByEnrolledStudent(ctx context.Context, studentID uuid.UUID, courseID *uuid.UUID) ([]models.Lesson, error) {
	query := `
		SELECT l.id, l.course_id, l.title, l.content, l.lesson_order, l.created_at, l.updated_at
		FROM lessons l
		JOIN enrollments e ON e.course_id = l.course_id
		WHERE e.student_id = $1
		  AND ($2::uuid IS NULL OR l.course_id = $2)
		ORDER BY l.course_id, l.lesson_order
	`
	return r.queryLessons(ctx, query, studentID, courseID)
}

func (r *LessonPostgres) queryLessons(ctx context.Context, query string, args ...interface{}) ([]models.Lesson, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(
			&l.ID, &l.CourseID, &l.Title, &l.Content,
			&l.Order, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lessons, nil
}
