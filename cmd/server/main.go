package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hac-portal/internal/config"
	"hac-portal/internal/domain"
	apphttp "hac-portal/internal/http"
	"hac-portal/internal/repository/sqlite"
	"hac-portal/internal/service"
	"hac-portal/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	entryRepo := sqlite.NewTimeEntryRepository(db)
	adjustmentRepo := sqlite.NewAdjustmentRepository(db)
	inventoryRepo := sqlite.NewInventoryRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := entryRepo.Init(ctx); err != nil {
		logger.Fatalf("init time entry repository: %v", err)
	}
	if err := adjustmentRepo.Init(ctx); err != nil {
		logger.Fatalf("init adjustment repository: %v", err)
	}
	if err := inventoryRepo.Init(ctx); err != nil {
		logger.Fatalf("init inventory repository: %v", err)
	}

	userService := service.NewUserService(userRepo)
	trackingService := service.NewTrackingService(entryRepo, adjustmentRepo)
	inventoryService := service.NewInventoryService(inventoryRepo)

	seeds := make([]service.UserSeed, len(cfg.Users))
	for i, u := range cfg.Users {
		seeds[i] = service.UserSeed{
			Username:           u.Username,
			Password:           u.Password,
			PasswordHash:       u.PasswordHash,
			DailyHours:         u.DailyHours,
			Role:               domain.Role(u.Role),
			CanBackfill:        u.CanBackfill,
			CanManageInventory: u.CanManageInventory,
		}
	}
	if len(seeds) == 0 {
		logger.Warn("no users configured; nobody will be able to log in")
	}
	if err := userService.Seed(ctx, seeds); err != nil {
		logger.Fatalf("seed users: %v", err)
	}
	if err := inventoryService.Seed(ctx); err != nil {
		logger.Fatalf("seed inventory: %v", err)
	}

	archive, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		trackingService,
		inventoryService,
		archive,
		cfg.Storage.Bucket,
		cfg.Storage.KeyPrefix,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildStorage returns nil when no archive bucket is configured; the
// portal runs fine without object storage.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no archive bucket configured; export archival disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving exports to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
