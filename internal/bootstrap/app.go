package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"studyai/internal/ai"
	appsvc "studyai/internal/app"
	"studyai/internal/cache"
	"studyai/internal/config"
	"studyai/internal/logging"
	databaseClient "studyai/internal/platform/database"
	rabbitmqClient "studyai/internal/platform/rabbitmq"
	redisClient "studyai/internal/platform/redis"
	"studyai/internal/repository"
	"studyai/internal/storage"
	"studyai/internal/worker"
)

// App owns every long-lived resource. Redis, MQConn and ExtractWorker are
// nil when the matching dependency is not configured.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB            *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	ExtractWorker *worker.MaterialExtractWorker

	Chat   *appsvc.ChatService
	Quiz   *appsvc.QuizService
	Recite *appsvc.ReciteService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}
	return Build(ctx, cfg, logger)
}

// Build connects the dependencies named in cfg and wires the services.
// Anything opened before a failure is closed again.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logging.OrNop(logger),
		StartedAt: time.Now(),
	}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	db, err := databaseClient.New(ctx, databaseClient.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.DatabaseDSN(),
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	a.DB = db
	if err := repository.Migrate(db); err != nil {
		return err
	}

	files, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}

	var quizStore appsvc.QuizAttemptStore
	if cfg.Redis.Addr != "" {
		redisCli, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		a.Redis = redisCli
		quizStore = cache.NewQuizStore(redisCli, time.Duration(cfg.Redis.QuizTTLSeconds)*time.Second)
	} else {
		a.Logger.Info("redis not configured, quiz scoring disabled")
	}

	var dispatcher appsvc.ExtractionDispatcher
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ExtractQueue)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		dispatcher = rabbitmqClient.NewExtractionPublisher(mqConn, cfg.RabbitMQ.ExtractQueue)
	} else {
		a.Logger.Info("rabbitmq not configured, extracting material text inline")
	}

	a.Chat = appsvc.NewChatService(
		repository.NewSessionRepository(db),
		repository.NewMaterialRepository(db),
		files,
		dispatcher,
		cfg.MaxUploadBytes(),
		a.Logger.Named("chat"),
	)

	if a.MQConn != nil {
		a.ExtractWorker = worker.NewMaterialExtractWorker(a.MQConn, a.Chat, cfg.RabbitMQ.ExtractQueue, a.Logger.Named("worker"))
		if err := a.ExtractWorker.Start(ctx); err != nil {
			return fmt.Errorf("start extraction worker failed: %w", err)
		}
	}

	llm := ai.NewOllamaClient(ai.OllamaConfig{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		VisionModel: cfg.LLM.VisionModel,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	})
	a.Quiz = appsvc.NewQuizService(llm, a.Chat, quizStore, a.Logger.Named("quiz"))
	a.Recite = appsvc.NewReciteService(llm, cfg.LLM.EnableVideoAnalysis, a.Logger.Named("recite"))

	a.Logger.Info("bootstrap complete",
		zap.String("database", cfg.Database.Driver),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("video_analysis", cfg.LLM.EnableVideoAnalysis))
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.ExtractWorker != nil {
		a.ExtractWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	_ = a.Logger.Sync()
	return closeErr
}
