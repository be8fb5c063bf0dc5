package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"device-feedback-server/config"
	"device-feedback-server/database"
	"device-feedback-server/jobs"
	"device-feedback-server/middleware"
	"device-feedback-server/notifier"
	"device-feedback-server/repository"
	"device-feedback-server/routes"
	"device-feedback-server/services"
	ws "device-feedback-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.Load()
	cfg := config.AppConfig

	if err := database.Initialize(cfg.Database.DSN()); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	if cfg.Seed.Questions {
		if err := seedQuestions(cfg.Database.DSN()); err != nil {
			log.Printf("⚠️ Question seeding failed: %v", err)
		}
	}

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.GetDB()
	employees := repository.NewEmployeeRepo(db)
	questions := repository.NewQuestionRepo(db)
	feedback := repository.NewFeedbackRepo(db)

	var mailer services.Notifier
	if cfg.Mail.ResendAPIKey == "" {
		log.Println("⚠️ RESEND_API_KEY not set, notifications will only be logged")
		mailer = notifier.NewLogNotifier()
	} else {
		mailer = notifier.NewResendNotifier(cfg.Mail.ResendAPIKey, cfg.Mail.FromEmail, cfg.Mail.SendTimeout)
	}

	var uploader services.ImageUploader
	if url := cfg.Cloudinary.CloudinaryURL(); url != "" {
		cld, err := services.NewCloudinaryUploader(url, cfg.Cloudinary.Folder)
		if err != nil {
			log.Printf("❌ Cloudinary disabled: %v", err)
		} else {
			uploader = cld
		}
	} else {
		log.Println("⚠️ Cloudinary not configured, image uploads disabled")
	}

	workflow := services.NewFeedbackWorkflow(
		services.NewValidationPipeline(employees, repository.NewMerchantRepo(db), repository.NewDeviceRepo(db), repository.NewMerchantDeviceRepo(db)),
		services.NewPersistenceCoordinator(feedback, questions),
		services.NewNotificationDispatcher(mailer),
	)

	hub := ws.NewHub()
	go hub.Run(ctx)
	workflow.OnDone(func(res *services.Result) {
		hub.PublishFeedback(res.Feedback)
		log.Printf("📡 Feedback %d published to live feed", res.Feedback.ID)
	})

	if cfg.Audit.Enabled {
		audit := jobs.NewAssociationAuditJob(feedback, questions, cfg.Audit.Interval)
		audit.Start()
		defer audit.Stop()
	}

	limiter := middleware.NewRateLimiter()
	limiter.StartCleanup(ctx, 10*time.Minute)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.AuditLogMiddleware())

	routes.RegisterRoutes(router, routes.Deps{
		Workflow:    workflow,
		Reports:     services.NewReportService(feedback),
		Employees:   employees,
		Uploader:    uploader,
		Hub:         hub,
		Upgrader:    ws.NewUpgrader(cfg.Server.AllowedOrigins),
		RateLimiter: limiter,
		JWTSecret:   cfg.JWT.Secret,
		TokenExpiry: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Device Feedback Server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
	}
}
