package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthcare-admin-console/config"
	deliveryHttp "healthcare-admin-console/internal/delivery/http"
	"healthcare-admin-console/internal/delivery/http/handler"
	"healthcare-admin-console/internal/delivery/http/middleware"
	domainRepo "healthcare-admin-console/internal/domain/repository"
	"healthcare-admin-console/internal/infrastructure/cache"
	"healthcare-admin-console/internal/infrastructure/database"
	"healthcare-admin-console/internal/infrastructure/upstream"
	"healthcare-admin-console/internal/repository"
	"healthcare-admin-console/internal/service"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/jwt"
	"healthcare-admin-console/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Core holds everything below the HTTP layer. The export CLI runs on it directly.
type Core struct {
	Config         *config.Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	SessionUsecase usecase.ScreenSessionUsecase
	AuditUsecase   usecase.AuditLogUsecase
}

// App holds all dependencies for the application
type App struct {
	*Core
	Server *http.Server
}

// NewCore loads configuration from configPath and wires repositories, services and usecases
func NewCore(ctx context.Context, configPath string) (*Core, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg.App.LogLevel)
	log.Info("Configuration loaded successfully")

	config.Watch(configPath, func(next *config.Config) {
		setLogLevel(log, next.App.LogLevel)
		log.Infof("Configuration reloaded, log level %s", log.GetLevel())
	}, func(err error) {
		log.Warnf("Failed to reload configuration: %+v", err)
	})

	core := &Core{Config: cfg, Log: log}

	// Audit database is optional
	if cfg.DB.Enabled() {
		db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, log)
		if err != nil {
			return nil, err
		}
		core.DB = db
		if err := database.Migrate(db, log); err != nil {
			core.Close()
			return nil, err
		}
	} else {
		log.Warn("DB_HOST not set, audit trail disabled")
	}

	// Sessions live in Redis when configured, otherwise in process memory
	var sessionRepo domainRepo.SessionRepository
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			core.Close()
			return nil, err
		}
		core.RedisClient = redisClient
		sessionRepo = repository.NewRedisSessionRepository(redisClient, cfg.Session.TTL)
	} else {
		log.Info("REDIS_HOST not set, keeping sessions in memory")
		sessionRepo = repository.NewMemorySessionRepository(cfg.Session.TTL)
	}

	upstreamClient, err := upstream.NewClient(cfg.Upstream, log)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	// Initialize repositories
	recordRepo := repository.NewRecordRepository(upstreamClient, cfg.Upstream.FileBaseURL, log)
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	recordFilter := service.NewRecordFilter(cfg.App.Location, nil)
	spreadsheetExporter := service.NewSpreadsheetExporter(cfg.App.Location, nil)
	archiveExporter := service.NewArchiveExporter(upstreamClient, cfg.Export.FetchConcurrency, log)
	auditService := service.NewAuditService(core.DB, log, auditLogRepo)

	// Initialize usecases
	core.SessionUsecase = usecase.NewScreenSessionUsecase(log, sessionRepo, recordRepo, recordFilter, spreadsheetExporter, archiveExporter, auditService)
	core.AuditUsecase = usecase.NewAuditLogUsecase(core.DB, log, auditLogRepo)

	return core, nil
}

// New creates a new App instance with all dependencies initialized
func New(configPath string) (*App, error) {
	core, err := NewCore(context.Background(), configPath)
	if err != nil {
		return nil, err
	}
	if core.Config.JWT.Secret == "" {
		core.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	return &App{Core: core, Server: initializeServer(core)}, nil
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	setLogLevel(log, level)
	return log
}

func setLogLevel(log *logrus.Logger, level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server
func initializeServer(core *Core) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(core.Config.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize handlers
	screenHandler := handler.NewScreenHandler(core.SessionUsecase, customValidator)
	sessionHandler := handler.NewSessionHandler(core.SessionUsecase, customValidator)
	exportHandler := handler.NewExportHandler(core.SessionUsecase, customValidator)
	recordHandler := handler.NewRecordHandler(core.SessionUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(core.AuditUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(screenHandler, sessionHandler, exportHandler, recordHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", core.Config.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Exports can take a while, give them time to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (c *Core) Close() {
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
}
