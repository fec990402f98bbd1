package di

import (
	"context"
	"fmt"
	"time"

	"MyPay/internal/domain/repository"
	"MyPay/internal/domain/service"
	"MyPay/internal/handler/api"
	"MyPay/internal/handler/web"
	internalrepo "MyPay/internal/repository"
	"MyPay/internal/service/ratelimit"
	"MyPay/internal/services/exchange"
	"MyPay/internal/services/salary"
	"MyPay/internal/usecase"
	"MyPay/pkg/cache"
	pkgch "MyPay/pkg/clickhouse"
	"MyPay/pkg/config"
	xhttp "MyPay/pkg/http"
	pkgkafka "MyPay/pkg/kafka"
	applogger "MyPay/pkg/logger"
	"MyPay/pkg/metrics"
	"MyPay/pkg/server"
)

// ProvideLogger creates the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideCache creates the cache used by the rate fetcher, and by the export
// records when it is backed by Redis.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if cfg.Cache.Type == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("redis cache connected",
		applogger.String("host", cfg.Redis.Host),
		applogger.Int("port", cfg.Redis.Port),
		applogger.String("type", cfg.Cache.Type),
	)

	if cfg.Cache.Type == "layered" {
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
	}
	return rc, nil
}

// ProvideRateProvider creates the cached USD→INR fetcher.
func ProvideRateProvider(cfg *config.Config, c cache.Service, m repository.Metrics, l *applogger.Logger) service.RateProvider {
	return exchange.NewFetcher(c, m,
		exchange.WithURL(cfg.Exchange.URL),
		exchange.WithPair(cfg.Exchange.Base, cfg.Exchange.Quote),
		exchange.WithFallback(cfg.Exchange.FallbackRate),
		exchange.WithTTL(cfg.Exchange.CacheTTL),
		exchange.WithClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout))),
		exchange.WithLogger(l),
	)
}

// ProvideModelLoader selects the local artifact or the remote scorer.
func ProvideModelLoader(cfg *config.Config, m repository.Metrics, l *applogger.Logger) service.ModelLoader {
	if cfg.Model.Kind == "http" {
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Model.Timeout))
		return salary.NewRemoteLoader(cfg.Model.ServiceURL, client, m, l)
	}
	return salary.NewFileLoader(cfg.Model.Path, m, l)
}

// ProvideRecordStore keeps export records in the cache for export.ttl. With
// the memory cache, records get their own instance sized by
// export.max_records so rate entries and records never evict each other.
func ProvideRecordStore(cfg *config.Config, c cache.Service) repository.RecordStore {
	if cfg.Cache.Type == "memory" {
		c = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Export.MaxRecords))
	}
	return internalrepo.NewCacheRecordStore(c, cfg.Export.TTL)
}

// ProvideClickHouseClient connects to ClickHouse when the journal or the
// ingester needs it; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if cfg.Journal.Backend != usecase.JournalClickHouse && !cfg.Journal.Ingest {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, internalrepo.PredictionSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	l.Info("clickhouse connected and schema ready", applogger.String("database", cfg.ClickHouse.Database))
	return client, nil
}

// ProvideHistoryStore returns nil when ClickHouse is not configured.
func ProvideHistoryStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.HistoryStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseHistory(ch, cfg.ClickHouse.Database, l)
}

// ProvideKafkaProducer creates a producer when the journal publishes to Kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Journal.Backend != usecase.JournalKafka {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher wraps the producer; nil without a producer.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideJournal creates the recorder for the configured backend.
func ProvideJournal(cfg *config.Config, pub repository.Publisher, history repository.HistoryStore, m repository.Metrics) *usecase.JournalRecorder {
	return usecase.NewJournalRecorder(pub, history, m, cfg.Journal.Backend)
}

// ProvidePipeline creates the prediction pipeline used by the web and API handlers.
func ProvidePipeline(
	loader service.ModelLoader,
	rates service.RateProvider,
	records repository.RecordStore,
	m repository.Metrics,
	journal *usecase.JournalRecorder,
	l *applogger.Logger,
) *usecase.PredictionPipeline {
	return usecase.NewPredictionPipeline(loader, rates, records, m,
		usecase.WithJournal(journal),
		usecase.WithPipelineLogger(l),
	)
}

// ProvideStandalonePipeline creates a pipeline without a journal for one-shot runs.
func ProvideStandalonePipeline(
	loader service.ModelLoader,
	rates service.RateProvider,
	records repository.RecordStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PredictionPipeline {
	return usecase.NewPredictionPipeline(loader, rates, records, m, usecase.WithPipelineLogger(l))
}

// ProvideKafkaConsumer creates a consumer when journal ingestion is enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Journal.Ingest {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaJournalHandler stores journal records consumed from Kafka.
func ProvideKafkaJournalHandler(cfg *config.Config, history repository.HistoryStore, m repository.Metrics) *usecase.KafkaJournalHandler {
	if !cfg.Journal.Ingest || history == nil {
		return nil
	}
	return usecase.NewKafkaJournalHandler(cfg.Kafka.Topic, history, m)
}

// ProvideRateLimiter creates the per-client limiter for prediction routes.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideRenderer parses the embedded page templates.
func ProvideRenderer() (*web.Renderer, error) {
	r, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return r, nil
}

// ProvideHandlers collects every route group.
func ProvideHandlers(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.PredictionPipeline,
	rates service.RateProvider,
	history repository.HistoryStore,
	limiter *ratelimit.Limiter,
) []xhttp.Handler {
	limit := limiter.Middleware()
	return []xhttp.Handler{
		web.NewHandler(l, pipeline, limit),
		api.NewPredictorEchoHandler(l, pipeline, history, limit),
		api.NewRateStreamHandler(l, rates, cfg.Exchange.PushInterval),
	}
}

// ProvideHTTPServer creates the echo server and its /healthz checks.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	handlers []xhttp.Handler,
	renderer *web.Renderer,
	c cache.Service,
	loader service.ModelLoader,
	history repository.HistoryStore,
) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l),
		xhttp.WithRenderer(renderer),
		xhttp.WithHealthCheck("model", func(ctx context.Context) error {
			_, err := loader.Load(ctx)
			return err
		}),
	}
	if p, ok := c.(cache.Pinger); ok {
		opts = append(opts, xhttp.WithHealthCheck("cache", p.Ping))
	}
	if history != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", history.Health))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaJournalHandler,
	journal *usecase.JournalRecorder,
	ch *pkgch.Client,
	c cache.Service,
) *server.App {
	opts := []server.Option{
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithCloser("journal", journal),
	}
	if consumer != nil && kh != nil {
		opts = append(opts, server.WithConsumer(consumer, kh))
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch))
	}
	opts = append(opts, server.WithCloser("cache", c))
	return server.New(l, srv, opts...)
}
