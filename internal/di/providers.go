package di

import (
	"context"
	"fmt"
	"time"

	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/internal/handler/api"
	"WalkSim/internal/handler/ws"
	internalrepo "WalkSim/internal/repository"
	"WalkSim/internal/services/ml"
	"WalkSim/internal/services/simulation"
	"WalkSim/internal/usecase"
	"WalkSim/pkg/cache"
	pkgch "WalkSim/pkg/clickhouse"
	"WalkSim/pkg/config"
	xhttp "WalkSim/pkg/http"
	pkgkafka "WalkSim/pkg/kafka"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/metrics"
	"WalkSim/pkg/queue"
	"WalkSim/pkg/server"
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.New()
}

// ProvideClickHouseClient connects and makes sure the schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		pkgch.WithPingRetries(5, 2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func ProvideBarStore(ch *pkgch.Client, l *applogger.Logger) *internalrepo.CHBarStore {
	s := internalrepo.NewCHBarStore(ch.DB(), ch.Database())
	s.SetLogger(l)
	return s
}

func ProvideResultStore(ch *pkgch.Client) *internalrepo.CHResultStore {
	return internalrepo.NewCHResultStore(ch.DB(), ch.Database())
}

func ProvidePredictionStore(ch *pkgch.Client) *internalrepo.CHPredictionStore {
	return internalrepo.NewCHPredictionStore(ch.DB(), ch.Database())
}

// ProvideRedisCache connects to Redis when enabled and returns nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideCache layers an in-process cache over Redis, or uses memory alone.
func ProvideCache(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(2048))
	}
	return cache.NewLayeredCache(rc, time.Minute, cache.WithMemoryMaxSize(512))
}

// ProvideKafkaProducer creates a producer only for the kafka backend.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != usecase.BackendKafka {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithKeyOrdering(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topic)
}

// ProvideBarProvider reads ClickHouse first, falls back to Yahoo and caches
// the merged history.
func ProvideBarProvider(cfg *config.Config, store *internalrepo.CHBarStore, c cache.Service, l *applogger.Logger) domrepo.BarProvider {
	client := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Market.Timeout),
		xhttp.WithUserAgent("walksim/1.0"),
		xhttp.WithRetries(2, 500*time.Millisecond),
	)
	yahoo := internalrepo.NewYahooProvider(client, cfg.Market.BaseURL)
	yahoo.SetLogger(l)
	fallback := internalrepo.NewFallbackProvider(store, yahoo)
	fallback.SetLogger(l)
	if cfg.Market.CacheTTL <= 0 {
		return fallback
	}
	cached := internalrepo.NewCachedProvider(fallback, c, cfg.Market.CacheTTL)
	cached.SetLogger(l)
	return cached
}

func ProvideGateway(cfg *config.Config, results *internalrepo.CHResultStore, predictions *internalrepo.CHPredictionStore, pub domrepo.Publisher, m domrepo.Metrics) *usecase.Gateway {
	return usecase.NewGateway(cfg.Backend.Type, results, predictions, pub, m)
}

// ProvideTrainer builds the classifier factory and trainer from the model section.
func ProvideTrainer(cfg *config.Config, l *applogger.Logger) (*ml.Trainer, error) {
	gb := ml.DefaultGBDTConfig()
	if cfg.Model.Estimators > 0 {
		gb.Estimators = cfg.Model.Estimators
	}
	if cfg.Model.LearningRate > 0 {
		gb.LearningRate = cfg.Model.LearningRate
	}
	if cfg.Model.MaxDepth > 0 {
		gb.MaxDepth = cfg.Model.MaxDepth
	}
	if cfg.Model.Subsample > 0 {
		gb.Subsample = cfg.Model.Subsample
	}
	if cfg.Model.ColSample > 0 {
		gb.ColSample = cfg.Model.ColSample
	}
	gb.Seed = cfg.Model.Seed

	factory, err := ml.NewClassifierFactory(ml.FactoryConfig{
		Kind:   cfg.Model.Kind,
		GBDT:   gb,
		LogReg: ml.DefaultLogRegConfig(),
	})
	if err != nil {
		return nil, err
	}
	t := ml.NewTrainer(factory, ml.TrainerConfig{
		TestFraction: cfg.Model.TestFraction,
		Split:        ml.SplitPolicy(cfg.Model.Split),
		Seed:         cfg.Model.Seed,
	})
	t.SetLogger(l)
	return t, nil
}

func ProvideEngine(t *ml.Trainer, l *applogger.Logger) *simulation.Engine {
	e := simulation.NewEngine(t)
	e.SetLogger(l)
	return e
}

func ProvidePortfolio(cfg *config.Config, bars domrepo.BarProvider, e *simulation.Engine, gw *usecase.Gateway, m domrepo.Metrics, l *applogger.Logger) *usecase.Portfolio {
	p := usecase.NewPortfolio(bars, e, gw, m, usecase.PortfolioConfig{
		Symbols:  cfg.Simulation.Symbols,
		Lookback: cfg.Market.Lookback,
		Workers:  cfg.Simulation.Workers,
	})
	p.SetLogger(l)
	return p
}

func ProvideRegistry() *ml.Registry { return ml.NewRegistry() }

// ProvideRetrainer uses the cache as the retrain lock so replicas sharing
// Redis do not retrain the same symbol at once.
func ProvideRetrainer(cfg *config.Config, bars domrepo.BarProvider, t *ml.Trainer, reg *ml.Registry, c cache.Service, m domrepo.Metrics, l *applogger.Logger) *usecase.Retrainer {
	r := usecase.NewRetrainer(bars, t, reg, c, m, usecase.RetrainConfig{
		Symbols:  cfg.Retrain.Symbols,
		Lookback: cfg.Retrain.Lookback,
		Workers:  cfg.Retrain.Workers,
		Interval: cfg.Retrain.Interval,
		LockTTL:  cfg.Retrain.LockTTL,
	})
	r.SetLogger(l)
	return r
}

func ProvideHub(l *applogger.Logger) *ws.Hub {
	h := ws.NewHub(30 * time.Second)
	h.SetLogger(l)
	return h
}

func ProvidePredictor(bars domrepo.BarProvider, reg *ml.Registry, gw *usecase.Gateway, hub *ws.Hub, m domrepo.Metrics, l *applogger.Logger) *usecase.Predictor {
	p := usecase.NewPredictor(bars, reg, gw, hub, m)
	p.SetLogger(l)
	return p
}

func ProvideReconciler(predictions *internalrepo.CHPredictionStore, bars domrepo.BarProvider, l *applogger.Logger) *usecase.MovementReconciler {
	r := usecase.NewMovementReconciler(predictions, bars)
	r.SetLogger(l)
	return r
}

// ProvideQueue creates the retrain queue when enabled; it needs Redis.
func ProvideQueue(cfg *config.Config, rc *cache.RedisCache, r *usecase.Retrainer, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Retrain.Queue.Enabled || rc == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, queue.QueueConfig{
		Workers:    cfg.Retrain.Queue.Workers,
		RetryLimit: cfg.Retrain.Queue.RetryLimit,
		RetryDelay: cfg.Retrain.Queue.RetryDelay,
	}, rc.Client(), queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
	q.RegisterJob(usecase.NewRetrainJob(r))
	return q
}

// ProvideKafkaConsumer creates the results consumer when enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l)
	return consumer, nil
}

func ProvideResultsConsumer(cfg *config.Config, results *internalrepo.CHResultStore, predictions *internalrepo.CHPredictionStore, m domrepo.Metrics) *usecase.ResultsConsumer {
	return usecase.NewResultsConsumer(cfg.Kafka.Topic, results, predictions, m)
}

// ProvideHandlers assembles every route group served by the API.
func ProvideHandlers(
	l *applogger.Logger,
	portfolio *usecase.Portfolio,
	predictor *usecase.Predictor,
	predictions *internalrepo.CHPredictionStore,
	reconciler *usecase.MovementReconciler,
	reg *ml.Registry,
	retrainer *usecase.Retrainer,
	q *queue.RedisQueue,
	hub *ws.Hub,
	ch *pkgch.Client,
	rc *cache.RedisCache,
) []xhttp.Handler {
	var pub queue.Publisher
	if q != nil {
		pub = q
	}
	checks := map[string]api.HealthCheck{"clickhouse": ch.Health}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error { return rc.Client().Ping(ctx).Err() }
	}
	return []xhttp.Handler{
		api.NewSimulationHandler(l, portfolio),
		api.NewPredictionHandler(l, predictor, predictions, reconciler),
		api.NewModelHandler(l, reg, retrainer, pub),
		api.NewHealthHandler(checks),
		hub,
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handlers []xhttp.Handler,
	ch *pkgch.Client,
	c cache.Service,
	pub domrepo.Publisher,
	consumer *pkgkafka.Consumer,
	rh *usecase.ResultsConsumer,
	q *queue.RedisQueue,
	retrainer *usecase.Retrainer,
	hub *ws.Hub,
) *server.App {
	opts := []server.Option{
		server.WithCloser("websocket", hub),
		server.WithCloser("cache", c),
		server.WithCloser("clickhouse", ch),
	}
	if cfg.Retrain.Enabled {
		opts = append(opts, server.WithRetrainer(retrainer))
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, rh))
	}
	if q != nil {
		opts = append(opts, server.WithQueue(q))
	}
	if pub != nil {
		opts = append(opts, server.WithCloser("kafka producer", pub))
	}
	return server.New(cfg, l, handlers, opts...)
}
