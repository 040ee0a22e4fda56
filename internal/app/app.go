package app

import (
	"os"
	"os/signal"
	"syscall"

	"CourseForge/internal/app/server"
	"CourseForge/internal/config"
	"CourseForge/internal/delivery/http"
	"CourseForge/internal/notifier"
	"CourseForge/internal/service"
	"CourseForge/internal/service/auth"
	"CourseForge/internal/service/catalog"
	"CourseForge/internal/service/enrollment"
	"CourseForge/internal/storage/postgres"
	"CourseForge/pkg/logger"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	if err := postgres.Migrate(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName); err != nil {
		log.FatalErr("error applying migrations", err)
	}

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	userRepo := postgres.NewUserPostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	lessonRepo := postgres.NewLessonPostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)
	progressRepo := postgres.NewProgressPostgres(pg.Pool)

	var completionNotifier notifier.Notifier
	if cfg.Notifier.SendgridKey != "" {
		completionNotifier = notifier.NewSendgridNotifier(cfg.Notifier.SendgridKey, cfg.Notifier.FromName, cfg.Notifier.FromEmail, enrollmentRepo)
	} else {
		log.Warn("sendgrid key not set, logging completion notifications instead")
		completionNotifier = notifier.NewConsoleNotifier(log, enrollmentRepo)
	}
	queue := notifier.NewQueue(log, completionNotifier, cfg.Notifier.QueueSize)
	queue.Start()
	defer queue.Stop()

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "courseforge", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	u := service.Collection{
		AuthService:       auth.NewAuthService(log, jwtManager, userRepo, tokenRepo),
		CatalogService:    catalog.NewCatalogService(log, courseRepo, lessonRepo),
		EnrollmentService: enrollment.NewEnrollmentService(log, courseRepo, enrollmentRepo, progressRepo, queue),
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	if err = srv.Shutdown(); err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
