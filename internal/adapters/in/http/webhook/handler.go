// Package webhook implements the inbound HTTP adapter: it turns
// entity-changed notifications into queue messages and exposes read-only
// state.
package webhook

import (
	"net/http"
	"strings"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"

	"github.com/bnema/ferry/internal/adapters/dto"
	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/validation"
)

// DispatchStats exposes dispatcher gauges.
type DispatchStats interface {
	InFlight() int
	PendingSubmissions() int
}

// QueueStats exposes queue depth.
type QueueStats interface {
	Ready() int
	Unacked() int
}

// Handler serves the webhook API.
type Handler struct {
	publisher out.MessagePublisher
	registry  in.RepositoryRegistry
	dispatch  DispatchStats
	queue     QueueStats
	log       zerowrap.Logger
}

// NewHandler creates the webhook handler. dispatch and queue may be nil.
func NewHandler(
	publisher out.MessagePublisher,
	registry in.RepositoryRegistry,
	dispatch DispatchStats,
	queue QueueStats,
	log zerowrap.Logger,
) *Handler {
	return &Handler{
		publisher: publisher,
		registry:  registry,
		dispatch:  dispatch,
		queue:     queue,
		log:       log,
	}
}

// RegisterRoutes mounts the API. Event ingestion goes through guard
// (authentication, allowlist); reads and health stay open.
func (h *Handler) RegisterRoutes(e *echo.Echo, guard ...echo.MiddlewareFunc) {
	e.POST("/v1/events", h.handleEvent, guard...)
	e.GET("/v1/repositories", h.handleRepositories)
	e.GET("/healthz", h.handleHealth)
}

func (h *Handler) handleEvent(c echo.Context) error {
	ctx := zerowrap.CtxWithFields(c.Request().Context(), map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "http",
		zerowrap.FieldHandler: "events",
	})
	log := zerowrap.FromCtx(ctx)

	var req dto.EventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON body"})
	}

	kind := domain.EntityKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if kind != domain.EntityDeposit && kind != domain.EntitySubmission {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "kind must be deposit or submission"})
	}
	if err := validation.ValidateEntityID(req.ID); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.publisher.Publish(ctx, kind, req.ID); err != nil {
		log.Error().Err(err).
			Str(zerowrap.FieldEvent, string(kind)).
			Str(zerowrap.FieldEntityID, req.ID).
			Msg("failed to enqueue event")
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "queue unavailable"})
	}

	log.Info().
		Str(zerowrap.FieldEvent, string(kind)).
		Str(zerowrap.FieldEntityID, req.ID).
		Msg("event queued")

	return c.JSON(http.StatusAccepted, dto.EventResponse{Status: "queued", Kind: string(kind), ID: req.ID})
}

func (h *Handler) handleRepositories(c echo.Context) error {
	keys := h.registry.Keys()
	resp := dto.RepositoriesResponse{Repositories: make([]dto.RepositoryResponse, 0, len(keys))}

	for _, key := range keys {
		repo, err := h.registry.Get(key)
		if err != nil {
			continue
		}
		opts := repo.Assembler.Options
		checksums := make([]string, 0, len(opts.Checksums))
		for _, alg := range opts.Checksums {
			checksums = append(checksums, string(alg))
		}
		resp.Repositories = append(resp.Repositories, dto.RepositoryResponse{
			Key:         repo.Key,
			Protocol:    string(repo.Transport.Protocol),
			Endpoint:    repo.Transport.Endpoint,
			Archive:     string(opts.Archive),
			Compression: string(opts.Compression),
			Checksums:   checksums,
			Spec:        repo.Assembler.Spec,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleHealth(c echo.Context) error {
	resp := dto.HealthResponse{Status: "ok"}
	if h.dispatch != nil {
		resp.InFlight = h.dispatch.InFlight()
		resp.PendingSubmissions = h.dispatch.PendingSubmissions()
	}
	if h.queue != nil {
		resp.QueueReady = h.queue.Ready()
		resp.QueueUnacked = h.queue.Unacked()
	}
	return c.JSON(http.StatusOK, resp)
}
