package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/pkg/logger"
)

type EnrollmentUseCase interface {
	Enroll(ctx context.Context, principal *models.User, courseID uuid.UUID) (*models.Enrollment, error)
	Enrollments(ctx context.Context, principal *models.User) ([]models.Enrollment, error)
	EnrollmentWithProgress(ctx context.Context, principal *models.User, id uuid.UUID) (*models.Enrollment, models.ProgressSnapshot, error)
}

type EnrollmentController struct {
	log     logger.Log
	service EnrollmentUseCase
}

func NewEnrollmentController(log logger.Log, s EnrollmentUseCase) *EnrollmentController {
	return &EnrollmentController{
		log:     log,
		service: s,
	}
}

type enrollRequest struct {
	Course string `json:"course" binding:"required"`
}

func (h *EnrollmentController) Create(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	courseID, err := uuid.Parse(req.Course)
	if err != nil {
		respondError(c, h.log, app_errors.Validation("course", "invalid course id"))
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), Principal(c), courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentController) List(c *gin.Context) {
	enrollments, err := h.service.Enrollments(c.Request.Context(), Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

// enrollmentDetail merges the enrollment with its derived progress metrics.
type enrollmentDetail struct {
	models.Enrollment
	TotalLessons         int     `json:"total_lessons"`
	CompletedLessons     int     `json:"completed_lessons"`
	CompletionPercentage float64 `json:"completion_percentage"`
	IsCompleted          bool    `json:"is_completed"`
}

func (h *EnrollmentController) Retrieve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, app_errors.Validation("id", "invalid enrollment id"))
		return
	}

	enrollment, snapshot, err := h.service.EnrollmentWithProgress(c.Request.Context(), Principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, enrollmentDetail{
		Enrollment:           *enrollment,
		TotalLessons:         snapshot.TotalLessons,
		CompletedLessons:     snapshot.CompletedLessons,
		CompletionPercentage: snapshot.CompletionPercentage,
		IsCompleted:          snapshot.IsCompleted,
	})
}
