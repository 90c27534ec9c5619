package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bnema/ferry/internal/adapters/in/http/middleware"
)

// ServerConfig configures the webhook listener.
type ServerConfig struct {
	Addr            string
	Token           string
	JWTSecret       string
	JWTIssuer       string
	AllowedNetworks []string
	TrustedProxies  []string
	BodyLimit       string
}

// Server wraps the echo instance.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerowrap.Logger
}

// NewServer builds the echo instance with the middleware chain and mounts h.
func NewServer(cfg ServerConfig, h *Handler, log zerowrap.Logger) *Server {
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = "64K"
	}
	trusted := middleware.ParseNetworks(cfg.TrustedProxies)
	allowed := middleware.ParseNetworks(cfg.AllowedNetworks)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.PanicRecovery(log))
	e.Use(echomw.RequestID())
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "ferry.webhook")
	}))
	e.Use(middleware.RequestLogger(log, trusted))
	e.Use(middleware.SecurityHeaders)
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	h.RegisterRoutes(e,
		middleware.NetworkAllowlist(allowed, trusted, log),
		middleware.BearerToken(middleware.Auth{
			Token:     cfg.Token,
			JWTSecret: cfg.JWTSecret,
			JWTIssuer: cfg.JWTIssuer,
		}, log),
	)

	return &Server{echo: e, addr: cfg.Addr, log: log}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "http").
		Str("addr", s.addr).
		Msg("webhook listening")

	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
