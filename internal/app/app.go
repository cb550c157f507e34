package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talkincode/productapi/config"
	"github.com/talkincode/productapi/internal/events"
	"github.com/talkincode/productapi/internal/repository"
)

var errStoreNotConnected = errors.New("storage not connected")

type Application struct {
	appConfig   *config.AppConfig
	mongoClient *mongo.Client
	productRepo repository.ProductRepository
	publisher   events.Publisher
	sched       *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ RepositoryProvider = (*Application)(nil)
	_ ConfigProvider     = (*Application)(nil)
	_ PublisherProvider  = (*Application)(nil)
	_ SchedulerProvider  = (*Application)(nil)
	_ AppContext         = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig, publisher: events.NopPublisher{}}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) ProductRepo() repository.ProductRepository {
	return a.productRepo
}

func (a *Application) Publisher() events.Publisher {
	return a.publisher
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// OverrideRepo replaces the application's product repository (used in tests).
func (a *Application) OverrideRepo(repo repository.ProductRepository) {
	a.productRepo = repo
}

// OverridePublisher replaces the application's event publisher (used in tests).
func (a *Application) OverridePublisher(pub events.Publisher) {
	a.publisher = pub
}

func (a *Application) Ping(ctx context.Context) error {
	if a.mongoClient == nil {
		return errStoreNotConnected
	}
	return a.mongoClient.Ping(ctx, readpref.Primary())
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	zap.ReplaceGlobals(newLogger(cfg.Logger))

	// The process cannot serve anything without storage
	a.mongoClient, err = repository.Connect(context.Background(), cfg.Database.URI, cfg.Database.ConnectTimeout)
	if err != nil {
		zap.L().Fatal("MongoDB connection failed", zap.Error(err))
	}
	dbName := cfg.Database.DatabaseName()
	zap.L().Info("MongoDB connection successful", zap.String("database", dbName))

	mongoRepo := repository.NewMongoProductRepository(a.mongoClient.Database(dbName))
	if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
		zap.L().Error("ensure product indexes failed", zap.Error(err))
	}
	a.productRepo = mongoRepo

	if cfg.Events.AmqpURL != "" {
		pub, err := events.NewAmqpPublisher(cfg.Events.AmqpURL, cfg.Events.Exchange)
		if err != nil {
			zap.L().Error("product events disabled", zap.Error(err))
		} else {
			a.publisher = pub
		}
	}

	if cfg.Database.SeedDemo {
		go a.checkProducts()
	}

	a.initJob()
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	var zapConfig zap.Config
	if cfg.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	if !cfg.FileEnable {
		logger, err := zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
		return logger
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
		Compress:   false,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lumberJackLogger),
			zapConfig.Level,
		),
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			zapConfig.Level,
		),
	)
	return zap.New(core, zap.AddCaller())
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zap.L().Warn("close event publisher", zap.Error(err))
		}
	}

	if a.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			zap.L().Warn("disconnect mongodb", zap.Error(err))
		}
	}

	_ = zap.L().Sync()
}
