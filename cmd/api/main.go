package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grievance-go-api/internal/config"
	"github.com/noah-isme/grievance-go-api/internal/database"
	"github.com/noah-isme/grievance-go-api/internal/handler"
	"github.com/noah-isme/grievance-go-api/internal/middleware"
	"github.com/noah-isme/grievance-go-api/internal/models"
	"github.com/noah-isme/grievance-go-api/internal/repository"
	"github.com/noah-isme/grievance-go-api/internal/router"
	"github.com/noah-isme/grievance-go-api/internal/service"
	"github.com/noah-isme/grievance-go-api/pkg/ai"
	cloud "github.com/noah-isme/grievance-go-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Faculty{},
		&models.Complaint{},
		&models.Assignment{},
		&models.Submission{},
		&models.Mark{},
		&models.ResultStatus{},
		&models.Notification{},
		&models.Notice{},
		&models.NoticeRead{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var triager ai.Triager
	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey != "" {
		triager, err = ai.NewOpenAITriager(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai triager: %v", err)
		}
	} else {
		logger.Info().Msg("advisory triage disabled, complaints rely on rule-based classification only")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	complaintRepo := repository.NewComplaintRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	markRepo := repository.NewMarkRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannelBase, natsConn, validate, logger)
	complaintService := service.NewComplaintService(complaintRepo, validate, notificationService, triager, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploader, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, studentRepo, validate, uploader, notificationService, logger)
	resultService := service.NewResultService(markRepo, studentRepo, validate, notificationService, logger)
	noticeService := service.NewNoticeService(noticeRepo, studentRepo, validate, uploader, notificationService, logger)
	insightService := service.NewInsightService(complaintRepo, assignmentRepo, submissionRepo, markRepo, studentRepo, notificationRepo, redisClient, cfg.InsightCacheTTL, logger)

	fanOutCtx, cancelFanOut := context.WithCancel(context.Background())
	defer cancelFanOut()
	notificationService.Start(fanOutCtx)

	complaintHandler := handler.NewComplaintHandler(complaintService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	resultHandler := handler.NewResultHandler(resultService, logger)
	insightHandler := handler.NewInsightHandler(insightService, logger)
	noticeHandler := handler.NewNoticeHandler(noticeService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ComplaintHandler:    complaintHandler,
		AssignmentHandler:   assignmentHandler,
		SubmissionHandler:   submissionHandler,
		ResultHandler:       resultHandler,
		InsightHandler:      insightHandler,
		NoticeHandler:       noticeHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
