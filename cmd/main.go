package main

import (
	"context"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kiranbanna12/xrozen-chat/config"
	"github.com/Kiranbanna12/xrozen-chat/internal/api"
	"github.com/Kiranbanna12/xrozen-chat/internal/consumer"
	"github.com/Kiranbanna12/xrozen-chat/internal/handler"
	"github.com/Kiranbanna12/xrozen-chat/internal/realtime"
	"github.com/Kiranbanna12/xrozen-chat/internal/repository"
	"github.com/Kiranbanna12/xrozen-chat/internal/service"
	"github.com/Kiranbanna12/xrozen-chat/internal/storage"
	"github.com/Kiranbanna12/xrozen-chat/middleware/jwt"
	applog "github.com/Kiranbanna12/xrozen-chat/middleware/log"
	"github.com/Kiranbanna12/xrozen-chat/pkg/mq"
	"github.com/Kiranbanna12/xrozen-chat/pkg/workerpool"
	"github.com/Kiranbanna12/xrozen-chat/utils/ratelimit"
	"github.com/Kiranbanna12/xrozen-chat/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := applog.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		logger.Fatal("failed to initialize postgres", zap.Error(err))
	}

	redisClient, err := storage.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to initialize redis", zap.Error(err))
	}
	defer redisClient.Close()

	idGen, err := snowflake.NewGenerator(1)
	if err != nil {
		logger.Fatal("failed to initialize id generator", zap.Error(err))
	}

	pool := workerpool.New(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, logger.Logger)
	pool.Start()
	defer pool.Stop()

	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)
	limiter := ratelimit.NewRedisLimiter(redisClient, logger.Logger, true)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	requestRepo := repository.NewJoinRequestRepository(db)
	shareRepo := repository.NewShareRepository(db)
	lastReadRepo := repository.NewLastReadRepository(db)

	// Realtime hub doubles as the notifier for the service layer.
	hub := realtime.NewHub(redisClient, logger.Logger)
	go hub.Run()
	defer hub.Stop()

	// Kafka producer; the system degrades to realtime-only fan-out when
	// the brokers are unreachable.
	var producer service.EventProducer
	kafkaProducer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Logger)
	if err != nil {
		logger.Warn("kafka unavailable, event journal disabled", zap.Error(err))
	} else {
		producer = kafkaProducer
		defer kafkaProducer.Close()
	}

	// Services
	authService := service.NewAuthService(userRepo, tokens)
	messageService := service.NewMessageService(messageRepo, projectRepo, idGen, hub, producer, pool, logger.Logger)
	membershipService := service.NewMembershipService(memberRepo, requestRepo, shareRepo, projectRepo, hub, logger.Logger)
	projectService := service.NewProjectService(projectRepo, membershipService)
	unreadService := service.NewUnreadService(messageRepo, memberRepo, lastReadRepo)

	// Consumer ingests system-message commands from other product surfaces.
	if kafkaProducer != nil {
		chatConsumer := consumer.NewChatConsumer(messageService, logger.Logger)
		if err := consumer.StartConsumer(context.Background(), cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, chatConsumer, logger.Logger); err != nil {
			logger.Warn("failed to start kafka consumer", zap.Error(err))
		}
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	messageHandler := handler.NewMessageHandler(messageService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	shareHandler := handler.NewShareHandler(membershipService, tokens)
	unreadHandler := handler.NewUnreadHandler(unreadService)
	wsHandler := handler.NewWSHandler(hub, membershipService)

	gin.SetMode(cfg.Server.Mode)
	r := api.NewRouter(tokens, limiter, &cfg.RateLimit,
		authHandler, projectHandler, messageHandler, membershipHandler,
		shareHandler, unreadHandler, wsHandler)

	logger.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
