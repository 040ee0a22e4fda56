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

type CatalogUseCase interface {
	CreateCourse(ctx context.Context, principal *models.User, title, description string) (*models.Course, error)
	Publish(ctx context.Context, principal *models.User, courseID uuid.UUID) (*models.Course, error)
	ListCourses(ctx context.Context, principal *models.User) ([]models.Course, error)
}

type CourseController struct {
	log     logger.Log
	service CatalogUseCase
}

func NewCourseController(log logger.Log, s CatalogUseCase) *CourseController {
	return &CourseController{
		log:     log,
		service: s,
	}
}

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *CourseController) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), Principal(c), req.Title, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseController) List(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context(), Principal(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

func (h *CourseController) Publish(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, h.log, app_errors.Validation("id", "invalid course id"))
		return
	}

	course, err := h.service.Publish(c.Request.Context(), Principal(c), courseID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "Course published successfully",
		"course": course,
	})
}

func errNoPrincipal() error {
	return app_errors.Authentication("authentication required")
}
