package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub-api/internal/handler"
	"taskhub-api/internal/repository"
	"taskhub-api/internal/service"
	"taskhub-api/internal/ws"
	"taskhub-api/pkg/config"
	"taskhub-api/pkg/database"
	"taskhub-api/pkg/jwt"
	"taskhub-api/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()
	zlog := logger.Log

	if !envFound {
		zlog.Warn(".env file not found, using process environment")
	}
	if cfg.InsecureSecret() {
		zlog.Warn("JWT_SECRET is the built-in default; set it before deploying")
	}

	// 2. Setup Database
	db, err := database.Open(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog)
	go wsHub.Run()
	defer wsHub.Close()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	permRepo := repository.NewPermissionRepo(db)
	orgRepo := repository.NewOrganizationRepo(db)
	taskRepo := repository.NewTaskRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	issuer := jwt.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	auditService := service.NewAuditService(auditRepo, zlog)
	permService := service.NewPermissionService(cfg.PermissionsDir, permRepo, roleRepo, wsHub, zlog)
	bootstrap := service.NewRoleBootstrap(roleRepo, permRepo, permService, zlog)
	authService := service.NewAuthService(userRepo, orgRepo, permRepo, bootstrap, issuer, zlog)
	roleService := service.NewRoleService(roleRepo, permRepo, auditService, wsHub, zlog)
	userService := service.NewUserService(userRepo, roleRepo, auditService, zlog)
	taskService := service.NewTaskService(taskRepo, userRepo, auditService, wsHub, zlog)

	// 5. Seed default organization, roles and admin user
	seed(context.Background(), seeder{
		users:     userRepo,
		roles:     roleRepo,
		orgs:      orgRepo,
		bootstrap: bootstrap,
		log:       zlog.Named("Seed"),
	})

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "TaskHub API v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// 7. Routes
	handler.Register(app, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Permission: handler.NewPermissionHandler(permService),
		Role:       handler.NewRoleHandler(roleService),
		User:       handler.NewUserHandler(userService),
		Task:       handler.NewTaskHandler(taskService),
		Audit:      handler.NewAuditHandler(auditService),
		Health:     handler.NewHealthHandler(db),
		Guard:      service.NewGuard(userRepo, zlog),
		Issuer:     issuer,
		Hub:        wsHub,
	})

	// 8. Graceful Shutdown
	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	zlog.Info("server exited")
}
