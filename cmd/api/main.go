package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hostelworks/hms-api/api/swagger"
	"github.com/hostelworks/hms-api/internal/handler"
	"github.com/hostelworks/hms-api/internal/middleware"
	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	"github.com/hostelworks/hms-api/internal/service"
	"github.com/hostelworks/hms-api/pkg/cache"
	"github.com/hostelworks/hms-api/pkg/config"
	"github.com/hostelworks/hms-api/pkg/database"
	"github.com/hostelworks/hms-api/pkg/logger"
	"github.com/hostelworks/hms-api/pkg/mail"
	corsmiddleware "github.com/hostelworks/hms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hostelworks/hms-api/pkg/middleware/requestid"
	"github.com/hostelworks/hms-api/pkg/storage"
)

// @title Hostel Management API
// @version 1.0.0
// @description REST API for hostel room assignment and administration
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	mailer := mail.NewSMTPMailer(cfg.SMTP, logr)
	uploader := storage.NewObjectStorage(cfg.Storage, logr)

	userRepo := repository.NewUserRepository(db)
	floorRepo := repository.NewFloorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	roomChangeRepo := repository.NewRoomChangeRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, mailer, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, roomRepo, userSvc, mailer, validate, logr)
	roomChangeSvc := service.NewRoomChangeService(roomChangeRepo, assignmentRepo, roomRepo, userRepo, mailer, validate, logr)

	floorSvc := service.NewFloorService(floorRepo, cacheRepo, cfg.Cache.FloorsTTL, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, floorRepo, cacheRepo, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, uploader, cacheRepo, cfg.Cache.NoticesTTL, cfg.Uploads.MaxFiles, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, uploader, cfg.Uploads.MaxFileSizeBytes, validate, logr)
	reportSvc := service.NewReportService(roomRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	floorHandler := handler.NewFloorHandler(floorSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, metricsSvc)
	roomChangeHandler := handler.NewRoomChangeHandler(roomChangeSvc, metricsSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc, cfg.Uploads.MaxFileSizeBytes)
	complaintHandler := handler.NewComplaintHandler(complaintSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc, cfg.Uploads.MaxFileSizeBytes)
	reportHandler := handler.NewReportHandler(reportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	{
		secured.GET("/users/me", userHandler.Me)
		secured.GET("/notices", noticeHandler.List)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", userHandler.Create)
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.POST("/floor", floorHandler.Create)
		admin.GET("/floors", floorHandler.List)
		admin.POST("/room", roomHandler.Create)
		admin.POST("/room/assign", assignmentHandler.Assign)
		admin.GET("/room/assigned/:roomId", roomHandler.Assigned)
		admin.GET("/rooms/assigned", roomHandler.ListAssigned)
		admin.GET("/rooms/:id", roomHandler.Get)
		admin.GET("/rooms/:id/occupants", assignmentHandler.Occupants)

		admin.GET("/room-change-requests", roomChangeHandler.List)
		admin.PUT("/room-change-request/status", roomChangeHandler.Decide)

		admin.POST("/notices", noticeHandler.Create)
		admin.GET("/notices", noticeHandler.ListAll)
		admin.DELETE("/notices/:id", noticeHandler.Delete)

		admin.GET("/complaints", complaintHandler.ListAll)
		admin.GET("/student-documents", documentHandler.ListAll)
		admin.POST("/verify-document", documentHandler.Verify)

		admin.GET("/reports/occupancy", reportHandler.Occupancy)
	}

	student := api.Group("/student")
	student.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/room", assignmentHandler.MyRoom)
		student.POST("/room-change-request", roomChangeHandler.Submit)
		student.GET("/room-change-request", roomChangeHandler.ListMine)
		student.POST("/complaints", complaintHandler.Submit)
		student.GET("/complaints", complaintHandler.ListMine)
		student.POST("/upload-documents", documentHandler.Upload)
	}

	documents := api.Group("/student/:id/documents")
	documents.Use(middleware.JWT(authSvc), middleware.RBAC(string(models.RoleAdmin), string(models.RoleWarden), "SELF"))
	{
		documents.GET("", documentHandler.ListByStudent)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
