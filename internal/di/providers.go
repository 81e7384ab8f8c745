package di

import (
	"context"
	"fmt"
	"time"

	"FxSignals/internal/domain/repository"
	"FxSignals/internal/domain/service"
	"FxSignals/internal/handler/api"
	internalrepo "FxSignals/internal/repository"
	icache "FxSignals/internal/service/cache"
	"FxSignals/internal/service/prediction"
	"FxSignals/internal/service/ratelimit"
	"FxSignals/internal/usecase"
	pkgcache "FxSignals/pkg/cache"
	pkgch "FxSignals/pkg/clickhouse"
	"FxSignals/pkg/config"
	xhttp "FxSignals/pkg/http"
	pkgkafka "FxSignals/pkg/kafka"
	applogger "FxSignals/pkg/logger"
	"FxSignals/pkg/metrics"
	"FxSignals/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvidePredictionService creates the outbound prediction client.
func ProvidePredictionService(cfg *config.Config) service.PredictionService {
	return prediction.New(cfg)
}

// ProvideHistoryStore picks the Redis or in-memory history backend.
func ProvideHistoryStore(cfg *config.Config) (repository.HistoryStore, error) {
	switch cfg.History.Backend {
	case "redis":
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Redis.Host),
			pkgcache.WithRedisPort(cfg.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
			pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis history: %w", err)
		}
		return internalrepo.NewRedisHistory(rc, cfg.History.Limit, cfg.History.TTL), nil
	default:
		return internalrepo.NewMemoryHistory(icache.NewTTLCache(), cfg.History.Limit, cfg.History.TTL), nil
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher wraps the producer. It returns a nil interface when Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEvents(producer)
}

// ProvideClickHouseClient connects to ClickHouse, or returns nil when the archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(true),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRunArchive creates the archive table and returns the archive, or nil without ClickHouse.
func ProvideRunArchive(client *pkgch.Client, cfg *config.Config) (repository.RunArchive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewClickHouseArchive(client.DB(), cfg.ClickHouse.Database, cfg.ClickHouse.Table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, archive.SchemaStatements()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideLimiter creates the submission rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHTTPHandler creates the echo route handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	ctrl *usecase.Controller,
	pub *usecase.Publisher,
	rec *usecase.Recorder,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return api.NewSignalsEchoHandler(l, ctrl, pub, rec, limiter, api.Options{
		WaitTimeout:  cfg.Prediction.Timeout + 2*time.Second,
		AllowOrigins: cfg.Server.AllowOrigins,
	})
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowOrigins),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	rec *usecase.Recorder,
	pub *usecase.Publisher,
	history repository.HistoryStore,
	events repository.EventPublisher,
	archive repository.RunArchive,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, l, srv, rec, pub, history, events, archive, chClient)
}
