package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/participa-df/ouvidoria-service/internal/api/http"
	"github.com/participa-df/ouvidoria-service/internal/api/http/handlers"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/config"
	"github.com/participa-df/ouvidoria-service/internal/events"
	"github.com/participa-df/ouvidoria-service/internal/observability"
	"github.com/participa-df/ouvidoria-service/internal/persistence"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	"github.com/participa-df/ouvidoria-service/internal/service"
	"github.com/participa-df/ouvidoria-service/internal/storage"
	"github.com/participa-df/ouvidoria-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	fileStore, err := storage.NewDiskStore(cfg.Upload)
	if err != nil {
		logger.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	protocolRepo := repository.NewProtocolRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notifier := service.NewNotifier(cfg.Notify, logger)
	worker.RegisterNotificationWorker(dispatcher, notifier, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	subjectService := service.NewSubjectService(subjectRepo, redis.Client, cfg.Redis.CacheTTL(), logger)
	complaintService := service.NewComplaintService(*cfg, service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		SubjectRepo:   subjectRepo,
		ProtocolRepo:  protocolRepo,
		FileStore:     fileStore,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	conversationService := service.NewConversationService(complaintRepo, messageRepo, dispatcher)
	notificationService := service.NewNotificationService(userRepo, messageRepo, complaintRepo)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxSizeBytes) + 1<<20,
	})
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, notificationService),
		Subjects:       handlers.NewSubjectsHandler(subjectService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Protocols:      handlers.NewProtocolsHandler(complaintService),
		Messages:       handlers.NewMessagesHandler(conversationService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		UploadDir:      cfg.Upload.Dir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
