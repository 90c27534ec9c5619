package app

import (
	"context"
	"os"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"

	"github.com/bnema/ferry/internal/adapters/in/consumer"
	"github.com/bnema/ferry/internal/adapters/in/http/webhook"
	"github.com/bnema/ferry/internal/adapters/out/content"
	"github.com/bnema/ferry/internal/adapters/out/ftp"
	"github.com/bnema/ferry/internal/adapters/out/queue"
	"github.com/bnema/ferry/internal/adapters/out/ratelimit"
	"github.com/bnema/ferry/internal/adapters/out/sqlite"
	"github.com/bnema/ferry/internal/adapters/out/sword"
	"github.com/bnema/ferry/internal/adapters/out/telemetry"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/internal/usecase/dispatch"
	"github.com/bnema/ferry/internal/usecase/packaging"
	"github.com/bnema/ferry/internal/usecase/registry"
	"github.com/bnema/ferry/pkg/version"
)

const shutdownTimeout = 10 * time.Second

// core holds the services shared by the server and the local CLI.
type core struct {
	store     *sqlite.Store
	registry  *registry.Service
	assembler *packaging.Service
	limiter   out.RateLimiter
	metrics   *telemetry.Metrics

	shutdownTelemetry func(context.Context) error
	log               zerowrap.Logger
}

// services holds everything Run starts.
type services struct {
	*core
	queue    *queue.InMemory
	dispatch *dispatch.Service
	pool     *consumer.Pool
	server   *webhook.Server
}

// createServices wires the full server: core services, queue, dispatcher,
// worker pool and webhook.
func createServices(ctx context.Context, v *viper.Viper, cfg Config, log zerowrap.Logger) (*services, error) {
	c, err := createCore(ctx, v, cfg, log)
	if err != nil {
		return nil, err
	}

	q := queue.NewInMemory(queue.Config{
		Buffer:            cfg.Queue.Buffer,
		InitialRedelivery: cfg.Queue.Redelivery.Initial,
		MaxRedelivery:     cfg.Queue.Redelivery.Max,
		Jitter:            cfg.Queue.Redelivery.Jitter,
		VisibilityTimeout: cfg.Queue.VisibilityTimeout,
		PublishTimeout:    cfg.Queue.PublishTimeout,
	}, log)
	q.SetMetrics(c.metrics)

	dispatcher := c.newDispatcher(q, cfg)

	pool := consumer.New(q.Deliveries(), dispatcher, consumer.Config{Workers: cfg.Dispatch.Workers}, log)

	handler := webhook.NewHandler(q, c.registry, dispatcher, q, log)
	server := webhook.NewServer(webhook.ServerConfig{
		Addr:            cfg.Server.Listen,
		Token:           cfg.Server.Token,
		JWTSecret:       cfg.Server.JWTSecret,
		JWTIssuer:       cfg.Server.JWTIssuer,
		AllowedNetworks: cfg.Server.AllowedNetworks,
		TrustedProxies:  cfg.Server.TrustedProxies,
		BodyLimit:       cfg.Server.BodyLimit,
	}, handler, log)

	if cfg.Server.Token == "" && cfg.Server.JWTSecret == "" {
		log.Warn().
			Str(zerowrap.FieldLayer, "app").
			Msg("webhook token not configured, event ingestion is unauthenticated")
	}

	return &services{
		core:     c,
		queue:    q,
		dispatch: dispatcher,
		pool:     pool,
		server:   server,
	}, nil
}

// createCore opens the store and builds the registry, the assembler and
// the optional telemetry, rate limiting and S3 content source.
func createCore(ctx context.Context, v *viper.Viper, cfg Config, log zerowrap.Logger) (*core, error) {
	c := &core{log: log, shutdownTelemetry: func(context.Context) error { return nil }}

	provider, shutdown, err := telemetry.NewProvider(ctx, cfg.Telemetry, "ferry", version.Version())
	if err != nil {
		return nil, log.WrapErr(err, "failed to initialize telemetry")
	}
	c.shutdownTelemetry = shutdown

	if c.metrics, err = telemetry.NewMetrics(meterProvider(provider)); err != nil {
		c.close()
		return nil, log.WrapErr(err, "failed to create metrics")
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0o750); err != nil {
		c.close()
		return nil, log.WrapErr(err, "failed to create data directory")
	}

	if c.store, err = sqlite.Open(ctx, cfg.Store.Path, log); err != nil {
		c.close()
		return nil, log.WrapErr(err, "failed to open entity store")
	}

	src, err := createContentSource(ctx, cfg, log)
	if err != nil {
		c.close()
		return nil, err
	}

	if c.registry, err = registry.FromViper(v, registry.Bindings{
		domain.ProtocolSWORD: sword.New(log, sword.WithUserAgent(version.UserAgent())),
		domain.ProtocolFTP:   ftp.New(log),
	}); err != nil {
		c.close()
		return nil, log.WrapErr(err, "failed to load repositories")
	}

	c.assembler = packaging.NewService(src, cfg.Dispatch.SpoolDir, log)

	if limiter, ok := ratelimit.New(ratelimit.Config{
		Default:      ratelimit.Limit{PerSecond: cfg.Dispatch.RatePerSecond, Burst: cfg.Dispatch.RateBurst},
		Repositories: cfg.Dispatch.RateLimits,
	}, log); ok {
		c.limiter = limiter
	}

	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Str("store", cfg.Store.Path).
		Int(zerowrap.FieldCount, len(c.registry.Keys())).
		Msg("repositories loaded")

	return c, nil
}

func createContentSource(ctx context.Context, cfg Config, log zerowrap.Logger) (out.ContentSource, error) {
	fs, err := content.NewFilesystem(cfg.Content.Root, log)
	if err != nil {
		return nil, log.WrapErr(err, "failed to create filesystem content source")
	}
	router := content.NewRouter(fs)

	if cfg.Content.S3.Enabled {
		s3src, err := content.NewS3FromConfig(ctx, content.S3Config{
			Region:    cfg.Content.S3.Region,
			Endpoint:  cfg.Content.S3.Endpoint,
			PathStyle: cfg.Content.S3.PathStyle,
		}, log)
		if err != nil {
			return nil, log.WrapErr(err, "failed to create S3 content source")
		}
		router.Register("s3", s3src)
	}
	return router, nil
}

// newDispatcher builds the dispatch orchestrator publishing through publisher.
func (c *core) newDispatcher(publisher out.MessagePublisher, cfg Config) *dispatch.Service {
	svc := dispatch.NewService(c.store, c.registry, c.assembler, publisher, dispatch.Config{
		MaxAttempts:    cfg.Dispatch.MaxAttempts,
		AttemptTimeout: cfg.Dispatch.AttemptTimeout,
	}, c.log)
	if c.limiter != nil {
		svc.SetRateLimiter(c.limiter)
	}
	svc.SetMetrics(c.metrics)
	return svc
}

// republishPending re-enqueues deposits left in an intermediate status by
// a previous run. The queue keeps messages in memory only.
func (s *services) republishPending(ctx context.Context) {
	ids, err := s.store.PendingDeposits(ctx)
	if err != nil {
		s.log.Error().
			Str(zerowrap.FieldLayer, "app").
			Err(err).
			Msg("failed to list pending deposits")
		return
	}

	published := 0
	for _, id := range ids {
		if err := s.queue.Publish(ctx, domain.EntityDeposit, id); err != nil {
			s.log.Warn().
				Str(zerowrap.FieldLayer, "app").
				Str(zerowrap.FieldEntityID, id).
				Err(err).
				Msg("failed to republish pending deposit")
			if ctx.Err() != nil {
				return
			}
			continue
		}
		published++
	}

	if len(ids) > 0 {
		s.log.Info().
			Str(zerowrap.FieldLayer, "app").
			Int(zerowrap.FieldCount, published).
			Msg("pending deposits republished")
	}
}

func (c *core) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.log.Warn().Err(err).Msg("failed to close entity store")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := c.shutdownTelemetry(ctx); err != nil {
		c.log.Warn().Err(err).Msg("failed to flush telemetry")
	}
}

// meterProvider returns nil when metrics export is off, so instruments
// fall back to the global provider.
func meterProvider(p *telemetry.Provider) metric.MeterProvider {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider
}
