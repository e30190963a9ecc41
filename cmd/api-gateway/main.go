package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/examdesk/complaints-api/api/swagger"
	"github.com/examdesk/complaints-api/internal/handler"
	"github.com/examdesk/complaints-api/internal/middleware"
	"github.com/examdesk/complaints-api/internal/models"
	"github.com/examdesk/complaints-api/internal/repository"
	"github.com/examdesk/complaints-api/internal/service"
	"github.com/examdesk/complaints-api/internal/session"
	"github.com/examdesk/complaints-api/pkg/cache"
	"github.com/examdesk/complaints-api/pkg/config"
	"github.com/examdesk/complaints-api/pkg/database"
	"github.com/examdesk/complaints-api/pkg/logger"
	"github.com/examdesk/complaints-api/pkg/mailer"
	corsmiddleware "github.com/examdesk/complaints-api/pkg/middleware/cors"
	reqidmiddleware "github.com/examdesk/complaints-api/pkg/middleware/requestid"
)

// @title Exam Complaints API
// @version 1.0.0
// @description Complaint lifecycle and access-scoping service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The profile cache is an optimization; run without it.
		logr.Sugar().Warnw("redis unavailable, profile cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var mail mailer.Mailer
	switch cfg.Mail.Provider {
	case "sendgrid":
		mail = mailer.NewSendgrid(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	default:
		mail = mailer.NewConsole(logr)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	complaintRepo := repository.NewComplaintRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	profileSvc := service.NewProfileService(profileRepo, redisClient, cfg.Profiles.CacheTTL, logr, metricsSvc)
	dispatchSvc := service.NewDispatchService(notificationRepo, profileSvc, mail, service.DispatchConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
	}, logr, metricsSvc)
	complaintSvc := service.NewComplaintService(complaintRepo, profileSvc, dispatchSvc, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	exportSvc := service.NewExportService(complaintSvc, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatchSvc.Start(ctx)
	defer dispatchSvc.Stop()

	resolver := session.NewResolver(
		cfg.Session.Secret,
		cfg.Session.AdminCookieName,
		cfg.Session.StudentCookieName,
		cfg.Session.LegacyCookieName,
	)
	carrierNames := []string{
		cfg.Session.AdminCookieName,
		cfg.Session.StudentCookieName,
		cfg.Session.LegacyCookieName,
	}

	complaintHandler := handler.NewComplaintHandler(complaintSvc, exportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Session(resolver, carrierNames))
	{
		complaints := api.Group("/complaints")
		complaints.GET("", complaintHandler.List)
		if cfg.Export.Enabled {
			complaints.GET("/export", middleware.RequireRoles(models.RoleAdmin), complaintHandler.Export)
		}
		complaints.GET("/:id", complaintHandler.Get)
		complaints.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin), complaintHandler.UpdateStatus)
		complaints.GET("/:id/history", complaintHandler.History)
		complaints.GET("/:id/responses", complaintHandler.ListResponses)
		complaints.POST("/:id/responses", middleware.RequireRoles(models.RoleAdmin), complaintHandler.AddResponse)

		notifications := api.Group("/notifications")
		notifications.GET("", notificationHandler.List)
		notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
