package bootstrap

import (
	"context"
	"log"

	"paper-grading-be/internal/config"
	"paper-grading-be/internal/controller"
	"paper-grading-be/internal/mapper"
	"paper-grading-be/internal/pkg/extract"
	"paper-grading-be/internal/pkg/logger"
	"paper-grading-be/internal/pkg/serverutils"
	"paper-grading-be/internal/repository/memory"
	redisrepo "paper-grading-be/internal/repository/redis"
	"paper-grading-be/internal/service"
	"paper-grading-be/pkg/authapi"
	"paper-grading-be/pkg/bitable"

	pktNats "paper-grading-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	SubmissionController controller.ISubmissionController
	UploadController     controller.IUploadController
	AuthController       controller.IAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuthService     service.IAuthService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Remote clients
	bitableClient := bitable.NewClient(
		cfg.Bitable.BaseURL,
		cfg.Bitable.AppID,
		cfg.Bitable.AppSecret,
		cfg.Bitable.AppToken,
		cfg.Bitable.TableID,
	)
	authClient := authapi.NewClient(cfg.AuthAPI.BaseURL)

	// Repositories
	attemptRepo := memory.NewAttemptRepository()
	sessionCache := redisrepo.NewSessionCacheRepository(rdb)

	// Mappers
	submissionMapper := mapper.NewSubmissionMapper()
	uploadMapper := mapper.NewUploadMapper(submissionMapper)

	// 3. Services
	submissionService := service.NewSubmissionService(bitableClient, submissionMapper, sysLogger)
	authService := service.NewAuthService(authClient, sessionCache, sysLogger)

	publisherService := service.NewPublisherService(cfg.Topics.SubmissionCreated, pubSub)
	uploadService := service.NewUploadService(
		attemptRepo,
		submissionService,
		bitableClient,
		extract.NewPlainTextExtractor(),
		publisherService,
		natsPub,
		sysLogger,
	)
	// The poll worker logs to its own file so the main log stays readable.
	wkLogger := logger.NewIsolatedLogger("logs/refresh.log")
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.SubmissionCreated,
		uploadService,
		wkLogger,
	)

	guard := serverutils.SessionMiddleware(authService)

	// 4. Controllers
	return &Container{
		SubmissionController: controller.NewSubmissionController(submissionService, submissionMapper, guard),
		UploadController:     controller.NewUploadController(uploadService, uploadMapper, guard),
		AuthController:       controller.NewAuthController(authService),

		ConsumerService: consumerService,
		AuthService:     authService,
	}
}
