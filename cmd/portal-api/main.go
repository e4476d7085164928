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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-api/api/swagger"
	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/cache"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

// @title School Portal API
// @version 1.0.0
// @description Parent, student and staff portal backend
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	invalidation := service.DefaultInvalidationGraph(cacheSvc, logr)
	validate := validation.New()

	profileRepo := repository.NewProfileRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	inviteRepo := repository.NewInviteCodeRepository(db)

	var auditSvc *service.AuditService
	if cfg.Audit.Enabled {
		auditSvc = service.NewAuditService(repository.NewAuditRepository(db), logr, service.AuditConfig{
			Workers:    cfg.Audit.Workers,
			BufferSize: cfg.Audit.BufferSize,
		})
		auditSvc.Start(context.Background())
		defer auditSvc.Stop()
	}
	var auditRecorder middleware.AuditRecorder
	if auditSvc != nil {
		auditRecorder = auditSvc
	}

	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	guard := service.NewAccessGuard(profileRepo, metricsSvc, logr)
	gradeSvc := service.NewGradeService(gradeRepo, guard, cacheSvc, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, guard, cacheSvc, invalidation, validate, logr)
	scheduleSvc := service.NewScheduleService(profileRepo, lessonRepo, guard, cacheSvc, logr)
	assignmentSvc := service.NewAssignmentService(profileRepo, assignmentRepo, guard, cacheSvc, logr)
	inviteSvc := service.NewInviteService(inviteRepo, service.RandomCodeGenerator{}, invalidation, validate, metricsSvc, logr, service.InviteServiceConfig{
		CodeLength:        cfg.Invites.CodeLength,
		DefaultExpiryDays: cfg.Invites.DefaultExpiryDays,
		MaxUsageLimit:     cfg.Invites.MaxUsageLimit,
	})

	studentHandler := handler.NewStudentHandler(handler.StudentHandlerParams{
		Children:    guard,
		Grades:      gradeSvc,
		Attendance:  attendanceSvc,
		Schedule:    scheduleSvc,
		Assignments: assignmentSvc,
	})
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	inviteHandler := handler.NewInviteHandler(inviteSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/invite-codes/:code", inviteHandler.Check)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokenSvc))

	children := secured.Group("/children", middleware.RBAC(models.RoleParent))
	children.GET("", studentHandler.Children)
	children.POST("/refresh", studentHandler.RefreshChildren)

	students := secured.Group("/students/:studentId")
	students.GET("/grades", studentHandler.Grades)
	students.GET("/attendance", studentHandler.Attendance)
	students.GET("/attendance/range", studentHandler.AttendanceRange)
	students.GET("/attendance/export", studentHandler.AttendanceExport)
	students.GET("/schedule", studentHandler.Schedule)
	students.GET("/assignments", studentHandler.Assignments)

	attendance := secured.Group("/attendance")
	attendance.POST("", middleware.RequireStaff(),
		middleware.Audit(auditRecorder, models.AuditActionAttendanceRecord, "attendance", ""), attendanceHandler.Record)
	attendance.POST("/:id/excuse", middleware.RBAC(models.RoleParent),
		middleware.Audit(auditRecorder, models.AuditActionExcuseSubmit, "attendance", "id"), attendanceHandler.SubmitExcuse)
	attendance.POST("/:id/excuse/review", middleware.RequireStaff(),
		middleware.Audit(auditRecorder, models.AuditActionExcuseReview, "attendance", "id"), attendanceHandler.ReviewExcuse)

	invites := secured.Group("/invite-codes")
	invites.POST("/:code/redeem",
		middleware.Audit(auditRecorder, models.AuditActionInviteRedeem, "invite_code", "code"), inviteHandler.Redeem)
	issuers := invites.Group("", middleware.RequireInviteIssuer())
	issuers.POST("", middleware.Audit(auditRecorder, models.AuditActionInviteIssue, "invite_code", ""), inviteHandler.Issue)
	issuers.GET("", inviteHandler.List)
	issuers.DELETE("/:code", middleware.Audit(auditRecorder, models.AuditActionInviteDeactivate, "invite_code", "code"), inviteHandler.Deactivate)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
