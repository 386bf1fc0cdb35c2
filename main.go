// Package main provides the main entry point for the Orochi admin form engine
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amirphl/orochi-admin/app/editor"
	"github.com/amirphl/orochi-admin/app/handlers"
	"github.com/amirphl/orochi-admin/app/middleware"
	"github.com/amirphl/orochi-admin/app/router"
	"github.com/amirphl/orochi-admin/app/scheduler"
	"github.com/amirphl/orochi-admin/app/services"
	businessflow "github.com/amirphl/orochi-admin/business_flow"
	"github.com/amirphl/orochi-admin/config"
	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/repository"
	"github.com/amirphl/orochi-admin/utils"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Orochi admin application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLogs := initializeLogging(cfg.Logging)
	defer closeLogs()

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// newRotatingFile returns a size-rotated log file writer
func newRotatingFile(cfg config.LoggingConfig, path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// initializeLogging points the standard logger at stdout, a rotating file, or both.
// The returned func closes the file.
func initializeLogging(cfg config.LoggingConfig) func() {
	if cfg.Output != "file" && cfg.Output != "both" {
		return func() {}
	}

	file := newRotatingFile(cfg, cfg.FilePath)
	var w io.Writer = file
	if cfg.Output == "both" {
		w = io.MultiWriter(os.Stdout, file)
	}
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lmicroseconds)

	return func() {
		_ = file.Close()
	}
}

// schedulerLogger returns the logger used by background workers
func schedulerLogger(cfg config.LoggingConfig) *log.Logger {
	if cfg.Output != "file" && cfg.Output != "both" {
		return log.New(os.Stdout, "[scheduler] ", log.LstdFlags|log.LUTC)
	}
	return log.New(newRotatingFile(cfg, cfg.FilePath+".scheduler"), "", log.LstdFlags|log.LUTC)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	gormCfg := &gorm.Config{}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(log.Default(), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&models.Admin{}, &models.QueryTemplate{}, &models.Campaign{}); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Println("Database schema migrated")
	}

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return func() {
		cancel()
		_ = client.Close()
	}
}

// initializeEditor loads the editor config file and applies env overrides
func initializeEditor(cfg config.EditorConfig) (*editor.Config, error) {
	edCfg, err := editor.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	edCfg = edCfg.WithTokens(cfg.Placeholders)
	if cfg.Command != "" {
		edCfg.Placeholders.Command = cfg.Command
	}
	if err := edCfg.Validate(); err != nil {
		return nil, err
	}
	return edCfg, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval))
	}

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(db)
	templateRepo := repository.NewQueryTemplateRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	if err := ensureBootstrapAdmin(adminRepo, cfg.Admin, cfg.Security.BcryptCost); err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	remote := services.NewRemoteDataClient(cfg.Lookup)
	optionsCache := services.NewOptionsCache(rc, remote, cfg.Cache.RedisPrefix, cfg.Lookup.OptionsTTL)
	boardCache := businessflow.NewBoardCache(rc, cfg.Cache)

	editorCfg, err := initializeEditor(cfg.Editor)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize editor: %w", err)
	}

	// Initialize flows
	adminAuthFlow := businessflow.NewAdminAuthFlow(adminRepo, tokenService, cfg.JWT.AccessTokenTTL)
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, templateRepo, boardCache, nil)
	templateFlow := businessflow.NewQueryTemplateFlow(templateRepo)
	formFlow := businessflow.NewFormFlow(templateRepo, campaignRepo, boardCache, businessflow.FormFlowOptions{
		Search:        remote,
		Options:       optionsCache,
		Debounce:      cfg.Lookup.Debounce,
		LookupTimeout: cfg.Lookup.Timeout,
		IdleTTL:       cfg.Forms.IdleTTL,
		MaxSessions:   cfg.Forms.MaxSessions,
	})
	editorFlow := businessflow.NewEditorFlow(editorCfg)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, router.Handlers{
		Auth:     handlers.NewAdminAuthHandler(adminAuthFlow),
		Campaign: handlers.NewCampaignHandler(campaignFlow),
		Template: handlers.NewTemplateHandler(templateFlow),
		Form:     handlers.NewFormHandler(formFlow),
		Editor:   handlers.NewEditorHandler(editorFlow),
	}, authMiddleware)

	// Close abandoned form sessions
	reaper := scheduler.NewFormReaper(formFlow, cfg.Forms.ReaperInterval, schedulerLogger(cfg.Logging))
	stopFuncs = append(stopFuncs, reaper.Start(context.Background()))

	application := &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureBootstrapAdmin creates the configured admin when no admin with that username exists
func ensureBootstrapAdmin(adminRepo repository.AdminRepository, cfg config.AdminConfig, bcryptCost int) error {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := adminRepo.ByUsername(ctx, cfg.BootstrapUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), bcryptCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		UUID:         uuid.New(),
		Username:     cfg.BootstrapUsername,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(ctx, &admin); err != nil {
		return err
	}

	log.Printf("Bootstrap admin %q created", cfg.BootstrapUsername)
	return nil
}
