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

type ProgressUseCase interface {
	ListProgress(ctx context.Context, principal *models.User) ([]models.LessonProgress, error)
	CompleteLesson(ctx context.Context, principal *models.User, progressID uuid.UUID) (*models.LessonProgress, error)
	UpdateProgress(ctx context.Context, principal *models.User, progressID uuid.UUID, completed *bool, lessonID *uuid.UUID) (*models.LessonProgress, error)
}

type ProgressController struct {
	log     logger.Log
	service ProgressUseCase
}

func NewProgressController(log logger.Log, s ProgressUseCase) *ProgressController {
	return &ProgressController{
		log:     log,
		service: s,
	}
}

func (h *ProgressController) List(c *gin.Context) {
	records, err := h.service.ListProgress(c.Request.Context(), Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if records == nil {
		records = []models.LessonProgress{}
	}
	c.JSON(http.StatusOK, records)
}

type updateProgressRequest struct {
	Completed *bool   `json:"completed"`
	Lesson    *string `json:"lesson"`
}

func (h *ProgressController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, app_errors.Validation("id", "invalid progress id"))
		return
	}
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	var lessonID *uuid.UUID
	if req.Lesson != nil {
		parsed, err := uuid.Parse(*req.Lesson)
		if err != nil {
			respondError(c, h.log, app_errors.Validation("lesson", "invalid lesson id"))
			return
		}
		lessonID = &parsed
	}

	progress, err := h.service.UpdateProgress(c.Request.Context(), Principal(c), id, req.Completed, lessonID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *ProgressController) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, app_errors.Validation("id", "invalid progress id"))
		return
	}

	progress, err := h.service.CompleteLesson(c.Request.Context(), Principal(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
