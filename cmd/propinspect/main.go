package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/propinspect/internal/config"
	"github.com/xxxsen/propinspect/internal/db"
	"github.com/xxxsen/propinspect/internal/filestore"
	"github.com/xxxsen/propinspect/internal/handler"
	"github.com/xxxsen/propinspect/internal/job"
	"github.com/xxxsen/propinspect/internal/middleware"
	"github.com/xxxsen/propinspect/internal/repo"
	"github.com/xxxsen/propinspect/internal/schedule"
	"github.com/xxxsen/propinspect/internal/service"
)

const jobTimeout = 5 * time.Minute

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "propinspect",
		Short: "property inspection backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer database.Close()
			return runServer(cfg, database)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer database.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	for _, c := range []*cobra.Command{runCmd, migrateCmd} {
		c.Flags().StringVar(&configPath, "config", "", "path to config.json")
		rootCmd.AddCommand(c)
	}

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func bootstrap(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(context.Background(), database); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, database, nil
}

func runServer(cfg *config.Config, database *sql.DB) error {
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.String("addr", addr),
		zap.String("file_store", cfg.FileStore.Type),
		zap.Bool("public_base_url_set", cfg.Share.PublicBaseURL != ""),
	)

	userRepo := repo.NewUserRepo(database)
	inspectionRepo := repo.NewInspectionRepo(database)
	itemRepo := repo.NewItemRepo(database)
	photoRepo := repo.NewPhotoRepo(database)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	jwtSecret := []byte(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtSecret, time.Hour*time.Duration(cfg.JWTTTLHours))
	inspectionService := service.NewInspectionService(inspectionRepo, itemRepo)
	shareService := service.NewShareService(inspectionRepo, itemRepo, photoRepo, cfg.Share.PublicBaseURL)
	photoService := service.NewPhotoService(inspectionRepo, itemRepo, photoRepo, shareService, store, cfg.UploadMaxBytes)

	deps := handler.RouterDeps{
		Auth:               handler.NewAuthHandler(authService),
		Inspections:        handler.NewInspectionHandler(inspectionService),
		Shares:             handler.NewShareHandler(shareService),
		Photos:             handler.NewPhotoHandler(photoService, cfg.UploadMaxBytes),
		JWTSecret:          jwtSecret,
		PublicRateLimitRPM: cfg.Share.RateLimitPerMinute,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler(jobTimeout)
	if cfg.Share.MaxAgeDays > 0 {
		if err := scheduler.AddJob(job.NewShareExpiryJob(inspectionRepo, cfg.Share.MaxAgeDays), cfg.Share.ExpiryCron); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
