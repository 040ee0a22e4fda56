package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"CourseForge/internal/delivery/http/controllers"
	"CourseForge/internal/models"
	"CourseForge/internal/service"
	"CourseForge/pkg/logger"
)

func InitRoutes(l logger.Log, u service.Collection) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	authMiddleware := controllers.NewAuthMiddlewareProvider(l, u.AuthService)
	authController := controllers.NewAuthController(l, u.AuthService)
	courseController := controllers.NewCourseController(l, u.CatalogService)
	lessonController := controllers.NewLessonController(l, u.CatalogService)
	enrollmentController := controllers.NewEnrollmentController(l, u.EnrollmentService)
	progressController := controllers.NewProgressController(l, u.EnrollmentService)

	api := r.Group("/api", controllers.LoggingMiddleware(l))
	{
		api.GET("/status", controllers.Status)

		api.GET("/me", authMiddleware.AuthMiddleware, authController.Me)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/refresh", authController.Refresh)
		}

		courses := api.Group("/courses", authMiddleware.AuthMiddleware)
		{
			courses.GET("", courseController.List)

			instructor := courses.Group("", controllers.RequireRole(l, models.RoleInstructor))
			{
				instructor.POST("", courseController.Create)
				instructor.PATCH("/:id/publish", courseController.Publish)
			}
		}

		lessons := api.Group("/lessons", authMiddleware.AuthMiddleware)
		{
			lessons.GET("", lessonController.List)

			instructor := lessons.Group("", controllers.RequireRole(l, models.RoleInstructor))
			{
				instructor.POST("", lessonController.Create)
				instructor.POST("/bulk_create", lessonController.BulkCreate)
			}
		}

		enrollments := api.Group("/enrollments", authMiddleware.AuthMiddleware, controllers.RequireRole(l, models.RoleStudent))
		{
			enrollments.POST("", enrollmentController.Create)
			enrollments.GET("", enrollmentController.List)
			enrollments.GET("/:id", enrollmentController.Retrieve)
		}

		progress := api.Group("/progress", authMiddleware.AuthMiddleware, controllers.RequireRole(l, models.RoleStudent))
		{
			progress.GET("", progressController.List)
			progress.PATCH("/:id", progressController.Update)
			progress.POST("/:id/complete", progressController.Complete)
		}
	}
	return r
}
