package service

import (
	"CourseForge/internal/service/auth"
	"CourseForge/internal/service/catalog"
	"CourseForge/internal/service/enrollment"
)

type Collection struct {
	*auth.AuthService
	*catalog.CatalogService
	*enrollment.EnrollmentService
}
