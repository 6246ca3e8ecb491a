package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kerem/learnly/docs" // Import generated swagger docs
	appAuth "github.com/kerem/learnly/internal/app/auth"
	appControllers "github.com/kerem/learnly/internal/app/controllers"
	appMigrations "github.com/kerem/learnly/internal/app/migrations"
	appRepos "github.com/kerem/learnly/internal/app/repositories"
	appRoutes "github.com/kerem/learnly/internal/app/routes"
	appServices "github.com/kerem/learnly/internal/app/services"
	"github.com/kerem/learnly/internal/config"
	"github.com/kerem/learnly/internal/db"
	appMiddleware "github.com/kerem/learnly/internal/middleware"
	pkgAuth "github.com/kerem/learnly/internal/pkg/auth"
	"github.com/kerem/learnly/internal/pkg/email"
	"github.com/kerem/learnly/internal/pkg/filestorage"
	"github.com/kerem/learnly/internal/pkg/helpers"
	"github.com/kerem/learnly/internal/pkg/logger"
	"github.com/kerem/learnly/internal/pkg/transcription"
	"github.com/kerem/learnly/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService             appServices.IAuthService
	CourseEditorService     appServices.ICourseEditorService
	CourseViewService       appServices.ICourseViewService
	QuizService             appServices.IQuizService
	ScheduleService         appServices.IScheduleService
	AuthController          *appControllers.AuthController
	CourseController        *appControllers.CourseController
	QuizController          *appControllers.QuizController
	ScheduleController      *appControllers.ScheduleController
	TranscriptionController *appControllers.TranscriptionController
	AuthMiddleware          *appMiddleware.AuthMiddleware
	Repos                   *appRepos.Repositories
	JWTService              *pkgAuth.JWTService
	AuthzService            *appAuth.AuthorizationService
	EmailService            email.EmailService
	Logger                  zerolog.Logger
	FileStorage             *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	// Run migrations
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.Apply(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	// Create Default Data (after migrations)
	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but don't necessarily fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	dbPool := database.Pool

	deps.Repos = appRepos.NewRepositories(dbPool)

	// Initialize File Storage. The base URL must match the static file
	// serving endpoint registered in SetupRouter.
	var err error
	baseURL := "http://localhost:" + cfg.Server.Port
	fileStorageBaseURL := baseURL + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.CourseRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		UseTLS:    cfg.Email.UseTLS,
		BaseURL:   baseURL,
	}, lgr)

	transcriptionProvider := transcription.NewHTTPProvider(transcription.Config{
		BaseURL: cfg.Transcription.BaseURL,
		APIKey:  cfg.Transcription.APIKey,
		Timeout: helpers.ParseDuration(cfg.Transcription.Timeout, 120*time.Second),
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		deps.EmailService,
	)

	// The editor service validates against the pool-bound store and writes
	// through transaction-bound copies handed out by the factory.
	editorStore := appRepos.NewCourseEditorStore(dbPool)
	storeFactory := func(tx pgx.Tx) appServices.EditorStore {
		return editorStore.WithTx(tx)
	}
	deps.CourseEditorService = appServices.NewCourseEditorService(
		database,
		editorStore,
		storeFactory,
		deps.FileStorage,
	)

	deps.CourseViewService = appServices.NewCourseViewService(
		editorStore,
		deps.Repos.AnswerRepository,
		deps.Repos.ScheduleRepository,
	)

	deps.QuizService = appServices.NewQuizService(
		deps.Repos.QuizRepository,
		deps.Repos.AnswerRepository,
		deps.Repos.CourseRepository,
		deps.Repos.ScheduleRepository,
	)

	deps.ScheduleService = appServices.NewScheduleService(
		deps.Repos.ScheduleRepository,
		deps.Repos.CourseRepository,
		deps.EmailService,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.CourseController = appControllers.NewCourseController(
		deps.CourseEditorService,
		deps.CourseViewService,
		deps.AuthzService,
		deps.FileStorage,
	)
	deps.QuizController = appControllers.NewQuizController(deps.QuizService)
	deps.ScheduleController = appControllers.NewScheduleController(deps.ScheduleService)
	deps.TranscriptionController = appControllers.NewTranscriptionController(transcriptionProvider)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CourseController,
		deps.QuizController,
		deps.ScheduleController,
		deps.TranscriptionController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

// StartReminderScheduler runs the reminder sweep on a fixed interval and
// returns the cron instance so the caller can stop it on shutdown.
func StartReminderScheduler(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*cron.Cron, error) {
	interval := helpers.ParseDuration(cfg.Scheduler.ReminderSweepInterval, time.Minute)

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if err := deps.ScheduleService.SendDueReminders(ctx); err != nil {
			lgr.Error().Err(err).Msg("Reminder sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	c.Start()
	lgr.Info().Dur("interval", interval).Msg("Reminder scheduler started")
	return c, nil
}
