package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"voto/internal/audit"
	jwttoken "voto/internal/jwt_token"
	"voto/internal/platform/config"
	"voto/internal/platform/httpserver"
	"voto/internal/platform/kafka"
	"voto/internal/platform/logger"
	"voto/internal/platform/metrics"
	"voto/internal/ratelimit"
	"voto/internal/registry/handler"
	"voto/internal/registry/service"
	"voto/internal/storage/backend"
	httptransport "voto/internal/transport/http"
)

const auditQueueSize = 1024

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/registry.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	store, err := backend.Open(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer store.Close()

	sink, closeSink, err := auditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	publisher := audit.NewAsyncPublisher(auditQueueSize)

	svc := service.New(store.Store,
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(m),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	var handlerOpts []handler.Option
	if !cfg.RateLimit.Disabled {
		limiter, err := authLimiter(cfg.RateLimit, store)
		if err != nil {
			return err
		}
		handlerOpts = append(handlerOpts, handler.WithAuthLimit(ratelimit.Middleware(limiter, log)))
	} else {
		log.Info("rate limiting disabled")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Registry: handler.New(svc, tokens, cfg.Auth.TokenTTL, log, handlerOpts...),
		Tokens:   jwttoken.NewJWTServiceAdapter(tokens),
		Logger:   log,
		Metrics:  promhttp.Handler(),
		Health:   store.Health,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})
	srv := httpserver.New(cfg.Addr, router)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := publisher.Worker(sink, log).Run(workerCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting voto", "addr", cfg.Addr, "store", cfg.Store, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// in-flight requests are done, so the queue only shrinks from here
		cancelWorker()
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if dropped := publisher.Dropped(); dropped > 0 {
		log.Warn("audit events dropped", "count", dropped)
	}
	return err
}

// authLimiter shares attempt windows through Redis when the store already
// runs there, so every process sees the same budget.
func authLimiter(cfg config.RateLimitConfig, store *backend.Backend) (*ratelimit.Limiter, error) {
	var windows ratelimit.Store = ratelimit.NewInMemoryStore()
	if store.Redis != nil {
		windows = ratelimit.NewRedisStore(store.Redis)
	}
	return ratelimit.NewLimiter(windows, cfg.AuthAttempts, cfg.AuthWindow)
}

// auditSink picks where the audit worker forwards events: the Kafka topic
// when brokers are configured, the structured log otherwise.
func auditSink(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogPublisher(log), func() {}, nil
	}

	client, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic, "brokers", cfg.Kafka.Brokers)
	return audit.NewKafkaPublisher(client, cfg.Kafka.AuditTopic), closeKafka(client), nil
}

func closeKafka(client *kgo.Client) func() {
	return func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Flush(flushCtx)
		client.Close()
	}
}
