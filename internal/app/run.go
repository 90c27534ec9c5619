package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/ferry/internal/adapters/out/ratelimit"
	"github.com/bnema/ferry/internal/adapters/out/telemetry"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/duration"
)

// DefaultListen is the webhook address used when server.listen is unset.
const DefaultListen = ":8470"

// Config holds the application configuration.
type Config struct {
	Server struct {
		Listen          string   `mapstructure:"listen"`
		DataDir         string   `mapstructure:"data_dir"`
		Token           string   `mapstructure:"token"`
		JWTSecret       string   `mapstructure:"jwt_secret"`
		JWTIssuer       string   `mapstructure:"jwt_issuer"`
		AllowedNetworks []string `mapstructure:"allowed_networks"`
		TrustedProxies  []string `mapstructure:"trusted_proxies"`
		BodyLimit       string   `mapstructure:"body_limit"`
	} `mapstructure:"server"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   struct {
			Enabled    bool   `mapstructure:"enabled"`
			Path       string `mapstructure:"path"`
			MaxSize    int    `mapstructure:"max_size"`
			MaxBackups int    `mapstructure:"max_backups"`
			MaxAge     int    `mapstructure:"max_age"`
		} `mapstructure:"file"`
	} `mapstructure:"logging"`

	Store struct {
		Path string `mapstructure:"path"` // defaults to {data_dir}/ferry.db
	} `mapstructure:"store"`

	Content struct {
		Root string `mapstructure:"root"`
		S3   struct {
			Enabled   bool   `mapstructure:"enabled"`
			Region    string `mapstructure:"region"`
			Endpoint  string `mapstructure:"endpoint"`
			PathStyle bool   `mapstructure:"path_style"`
		} `mapstructure:"s3"`
	} `mapstructure:"content"`

	Dispatch struct {
		Workers        int           `mapstructure:"workers"`
		MaxAttempts    int           `mapstructure:"max_attempts"`
		AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
		SpoolDir       string        `mapstructure:"spool_dir"`
		RatePerSecond  float64       `mapstructure:"rate_per_second"` // 0 disables throttling
		RateBurst      int           `mapstructure:"rate_burst"`

		// Per-repository overrides of the two settings above.
		RateLimits map[string]ratelimit.Limit `mapstructure:"rate_limits"`
	} `mapstructure:"dispatch"`

	Queue struct {
		Buffer     int `mapstructure:"buffer"`
		Redelivery struct {
			Initial time.Duration `mapstructure:"initial"`
			Max     time.Duration `mapstructure:"max"`
			Jitter  float64       `mapstructure:"jitter"`
		} `mapstructure:"redelivery"`
		VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
		PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
	} `mapstructure:"queue"`

	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// Run starts the webhook and the worker pool and blocks until SIGINT or
// SIGTERM, or until one of them fails.
func Run(ctx context.Context, configPath string) error {
	v, cfg, err := initConfig(configPath)
	if err != nil {
		return err
	}

	log, cleanup, err := initLogger(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ctx = zerowrap.WithCtx(ctx, log)
	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Str(zerowrap.FieldComponent, "ferry").
		Msg("starting ferry")

	svc, err := createServices(ctx, v, cfg, log)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.queue.Start(); err != nil {
		return log.WrapErr(err, "failed to start queue")
	}
	defer svc.queue.Stop()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.pool.Run(gctx)
	})
	g.Go(func() error {
		return svc.server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().
			Str(zerowrap.FieldLayer, "app").
			Str(zerowrap.FieldComponent, "ferry").
			Msg("shutting down")
		return svc.server.Shutdown(context.Background())
	})
	g.Go(func() error {
		svc.republishPending(gctx)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return log.WrapErr(err, "ferry stopped with error")
	}

	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Str(zerowrap.FieldComponent, "ferry").
		Msg("ferry shutdown complete")
	return nil
}

// initConfig loads configuration from file and environment.
func initConfig(configPath string) (*viper.Viper, Config, error) {
	v := viper.New()
	if err := loadConfig(v, configPath); err != nil {
		return nil, Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, Config{}, err
	}
	return v, cfg, nil
}

func decodeConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		duration.DecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}

	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = DefaultDataDir()
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.Server.DataDir, "ferry.db")
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = DefaultListen
	}
	return cfg, nil
}

// initLogger initializes the zerowrap logger.
func initLogger(cfg Config) (zerowrap.Logger, func(), error) {
	logConfig := zerowrap.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}

	if cfg.Logging.File.Enabled {
		logPath := cfg.Logging.File.Path
		if logPath == "" {
			logPath = filepath.Join(cfg.Server.DataDir, "logs", "ferry.log")
		}

		log, cleanup, err := zerowrap.NewWithFile(logConfig, zerowrap.FileConfig{
			Enabled:    true,
			Path:       logPath,
			MaxSize:    cfg.Logging.File.MaxSize,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAge:     cfg.Logging.File.MaxAge,
			Compress:   true,
		})
		if err != nil {
			return zerowrap.Default(), nil, fmt.Errorf("failed to create logger with file: %w", err)
		}
		return log, cleanup, nil
	}

	return zerowrap.New(logConfig), nil, nil
}

func loadConfig(v *viper.Viper, configPath string) error {
	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("server.data_dir", DefaultDataDir())
	v.SetDefault("server.token", "")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_issuer", "")
	v.SetDefault("server.allowed_networks", []string{})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.body_limit", "64K")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age", 28)
	v.SetDefault("store.path", "") // defaults to {data_dir}/ferry.db when empty
	v.SetDefault("content.root", ".")
	v.SetDefault("content.s3.enabled", false)
	v.SetDefault("content.s3.region", "")
	v.SetDefault("content.s3.endpoint", "")
	v.SetDefault("content.s3.path_style", false)
	v.SetDefault("dispatch.workers", 4)
	v.SetDefault("dispatch.max_attempts", 3)
	v.SetDefault("dispatch.attempt_timeout", "5m")
	v.SetDefault("dispatch.spool_dir", "")
	v.SetDefault("dispatch.rate_per_second", 0)
	v.SetDefault("dispatch.rate_burst", 1)
	v.SetDefault("queue.buffer", 100)
	v.SetDefault("queue.redelivery.initial", "1s")
	v.SetDefault("queue.redelivery.max", "1m")
	v.SetDefault("queue.redelivery.jitter", 0.2)
	v.SetDefault("queue.visibility_timeout", "10m")
	v.SetDefault("queue.publish_timeout", "5s")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.auth_token", "")
	v.SetDefault("telemetry.traces", true)
	v.SetDefault("telemetry.metrics", true)
	v.SetDefault("telemetry.trace_sample_rate", 1.0)
	v.SetDefault("telemetry.export_interval", "30s")

	ConfigureViper(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("FERRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return nil
}
