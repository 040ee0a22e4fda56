package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

type fakeCatalogStore struct {
	courses map[uuid.UUID]*models.Course
	lessons map[uuid.UUID]*models.Lesson
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		courses: make(map[uuid.UUID]*models.Course),
		lessons: make(map[uuid.UUID]*models.Lesson),
	}
}

func (f *fakeCatalogStore) CreateCourse(_ context.Context, course models.Course) (*models.Course, error) {
	codes := make([]string, 0, len(f.courses))
	for _, c := range f.courses {
		codes = append(codes, c.Code)
	}
	course.ID = uuid.New()
	course.Code = models.NextCourseCode(codes)
	f.courses[course.ID] = &course
	return &course, nil
}

func (f *fakeCatalogStore) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, app_errors.NotFound("Course not found")
	}
	copied := *course
	return &copied, nil
}

func (f *fakeCatalogStore) PublishCourse(_ context.Context, id uuid.UUID) error {
	course, ok := f.courses[id]
	if !ok {
		return app_errors.NotFound("Course not found")
	}
	if course.Status != models.StatusDraft {
		return app_errors.InvalidState("status", "Only draft courses can be published")
	}
	course.Status = models.StatusPublished
	return nil
}

func (f *fakeCatalogStore) CoursesByInstructor(_ context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.InstructorID == instructorID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCatalogStore) CoursesByStatus(_ context.Context, status string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		if c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCatalogStore) CreateLesson(_ context.Context, lesson models.Lesson) (*models.Lesson, error) {
	for _, l := range f.lessons {
		if l.CourseID == lesson.CourseID && l.Order == lesson.Order {
			return nil, app_errors.Conflict("order", "lesson with this order already exists in this course")
		}
	}
	lesson.ID = uuid.New()
	f.lessons[lesson.ID] = &lesson
	return &lesson, nil
}

func (f *fakeCatalogStore) CreateLessons(ctx context.Context, lessons []models.Lesson) ([]models.Lesson, error) {
	created := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		inserted, err := f.CreateLesson(ctx, l)
		if err != nil {
			return nil, err
		}
		created = append(created, *inserted)
	}
	return created, nil
}

func (f *fakeCatalogStore) OrdersByCourse(_ context.Context, courseID uuid.UUID) ([]int, error) {
	var orders []int
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			orders = append(orders, l.Order)
		}
	}
	return orders, nil
}

func (f *fakeCatalogStore) LessonsByInstructor(_ context.Context, instructorID uuid.UUID, courseID *uuid.UUID) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		course := f.courses[l.CourseID]
		if course == nil || course.InstructorID != instructorID {
			continue
		}
		if courseID != nil && l.CourseID != *courseID {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeCatalogStore) LessonsByEnrolledStudent(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]models.Lesson, error) {
	return nil, nil
}

func newTestCatalog(t *testing.T) (*CatalogService, *fakeCatalogStore) {
	t.Helper()
	store := newFakeCatalogStore()
	return NewCatalogService(logger.New("local"), store, store), store
}

func instructor() *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleInstructor}
}

func student() *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleStudent}
}

func TestCreateCourseAssignsSequentialCodes(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	first, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "intro")
	require.NoError(t, err)
	assert.Equal(t, "COURSE-0001", first.Code)
	assert.Equal(t, models.StatusDraft, first.Status)

	second, err := svc.CreateCourse(context.Background(), teach, "Go Advanced", "")
	require.NoError(t, err)
	assert.Equal(t, "COURSE-0002", second.Code)
}

func TestCreateCourseRequiresInstructor(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.CreateCourse(context.Background(), student(), "Go Basics", "")
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthorization))

	_, err = svc.CreateCourse(context.Background(), nil, "Go Basics", "")
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthentication))
}

func TestCreateCourseRequiresTitle(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.CreateCourse(context.Background(), instructor(), "", "desc")
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindValidation))
}

func TestPublishTransitions(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	course, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "")
	require.NoError(t, err)

	published, err := svc.Publish(context.Background(), teach, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, published.Status)

	// Publishing is one-way and not repeatable.
	_, err = svc.Publish(context.Background(), teach, course.ID)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindInvalidState))
	assert.EqualError(t, err, "Only draft courses can be published")
}

func TestPublishRequiresOwnership(t *testing.T) {
	svc, _ := newTestCatalog(t)

	course, err := svc.CreateCourse(context.Background(), instructor(), "Go Basics", "")
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), instructor(), course.ID)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindAuthorization))
}

func TestPublishUnknownCourse(t *testing.T) {
	svc, _ := newTestCatalog(t)

	_, err := svc.Publish(context.Background(), instructor(), uuid.New())
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindNotFound))
}

func TestAddLessonValidatesOrder(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	course, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "")
	require.NoError(t, err)

	_, err = svc.AddLesson(context.Background(), teach, course.ID, "Intro", "", 0)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindValidation))

	lesson, err := svc.AddLesson(context.Background(), teach, course.ID, "Intro", "hello", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, lesson.Order)

	_, err = svc.AddLesson(context.Background(), teach, course.ID, "Intro again", "", 1)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindConflict))
}

func TestBulkAddLessonsReportsAllConflicts(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	course, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "")
	require.NoError(t, err)
	_, err = svc.AddLesson(context.Background(), teach, course.ID, "Intro", "", 1)
	require.NoError(t, err)

	_, err = svc.BulkAddLessons(context.Background(), teach, course.ID, []NewLesson{
		{Title: "A", Order: 1},
		{Title: "B", Order: 3},
		{Title: "C", Order: 3},
	})
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindConflict))
	assert.EqualError(t, err, "Lesson orders [1 3] conflict within the request or with existing lessons in this course.")
}

func TestBulkAddLessonsAllOrNothing(t *testing.T) {
	svc, store := newTestCatalog(t)
	teach := instructor()

	course, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "")
	require.NoError(t, err)

	created, err := svc.BulkAddLessons(context.Background(), teach, course.ID, []NewLesson{
		{Title: "A", Order: 1},
		{Title: "B", Order: 2},
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)

	// A conflicting batch leaves the stored lessons untouched.
	_, err = svc.BulkAddLessons(context.Background(), teach, course.ID, []NewLesson{
		{Title: "C", Order: 2},
		{Title: "D", Order: 3},
	})
	require.Error(t, err)
	orders, _ := store.OrdersByCourse(context.Background(), course.ID)
	assert.Len(t, orders, 2)
}

func TestBulkAddLessonsRejectsEmptyBatch(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	course, err := svc.CreateCourse(context.Background(), teach, "Go Basics", "")
	require.NoError(t, err)

	_, err = svc.BulkAddLessons(context.Background(), teach, course.ID, nil)
	require.Error(t, err)
	assert.True(t, app_errors.IsKind(err, app_errors.KindValidation))
}

func TestListCoursesVisibility(t *testing.T) {
	svc, _ := newTestCatalog(t)
	teach := instructor()

	draft, err := svc.CreateCourse(context.Background(), teach, "Draft Course", "")
	require.NoError(t, err)
	published, err := svc.CreateCourse(context.Background(), teach, "Published Course", "")
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), teach, published.ID)
	require.NoError(t, err)

	mine, err := svc.ListCourses(context.Background(), teach)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	visible, err := svc.ListCourses(context.Background(), student())
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, published.ID, visible[0].ID)
	assert.NotEqual(t, draft.ID, visible[0].ID)
}
