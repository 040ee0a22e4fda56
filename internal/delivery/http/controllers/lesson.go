package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"CourseForge/internal/service/catalog"
	"CourseForge/pkg/logger"
)

type LessonUseCase interface {
	AddLesson(ctx context.Context, principal *models.User, courseID uuid.UUID, title, content string, order int) (*models.Lesson, error)
	BulkAddLessons(ctx context.Context, principal *models.User, courseID uuid.UUID, lessons []catalog.NewLesson) ([]models.Lesson, error)
	ListLessons(ctx context.Context, principal *models.User, courseID *uuid.UUID) ([]models.Lesson, error)
}

type LessonController struct {
	log     logger.Log
	service LessonUseCase
}

func NewLessonController(log logger.Log, s LessonUseCase) *LessonController {
	return &LessonController{
		log:     log,
		service: s,
	}
}

type createLessonRequest struct {
	Course  string `json:"course" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Order   int    `json:"order" binding:"required"`
}

func (h *LessonController) Create(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	courseID, err := uuid.Parse(req.Course)
	if err != nil {
		respondError(c, h.log, app_errors.Validation("course", "invalid course id"))
		return
	}

	lesson, err := h.service.AddLesson(c.Request.Context(), Principal(c), courseID, req.Title, req.Content, req.Order)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

type bulkLessonItem struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Order   int    `json:"order" binding:"required"`
}

type bulkCreateRequest struct {
	Course  string           `json:"course" binding:"required"`
	Lessons []bulkLessonItem `json:"lessons" binding:"required"`
}

func (h *LessonController) BulkCreate(c *gin.Context) {
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	courseID, err := uuid.Parse(req.Course)
	if err != nil {
		respondError(c, h.log, app_errors.Validation("course", "invalid course id"))
		return
	}

	lessons := make([]catalog.NewLesson, 0, len(req.Lessons))
	for _, l := range req.Lessons {
		lessons = append(lessons, catalog.NewLesson{
			Title:   l.Title,
			Content: l.Content,
			Order:   l.Order,
		})
	}

	created, err := h.service.BulkAddLessons(c.Request.Context(), Principal(c), courseID, lessons)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *LessonController) List(c *gin.Context) {
	var courseID *uuid.UUID
	if raw := c.Query("course"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, app_errors.Validation("course", "invalid course id"))
			return
		}
		courseID = &id
	}

	lessons, err := h.service.ListLessons(c.Request.Context(), Principal(c), courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	c.JSON(http.StatusOK, lessons)
}
