package webhook

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ferry/internal/adapters/dto"
	"github.com/bnema/ferry/internal/boundaries/in"
	inmocks "github.com/bnema/ferry/internal/boundaries/in/mocks"
	outmocks "github.com/bnema/ferry/internal/boundaries/out/mocks"
	"github.com/bnema/ferry/internal/domain"
)

type fakeStats struct{}

func (fakeStats) InFlight() int           { return 2 }
func (fakeStats) PendingSubmissions() int { return 1 }
func (fakeStats) Ready() int              { return 5 }
func (fakeStats) Unacked() int            { return 3 }

func newTestServer(t *testing.T, cfg ServerConfig) (*Server, *outmocks.MockMessagePublisher, *inmocks.MockRepositoryRegistry) {
	t.Helper()
	publisher := outmocks.NewMockMessagePublisher(t)
	registry := inmocks.NewMockRepositoryRegistry(t)
	h := NewHandler(publisher, registry, fakeStats{}, fakeStats{}, zerowrap.Default())
	return NewServer(cfg, h, zerowrap.Default()), publisher, registry
}

func postEvent(srv *Server, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleEvent_Queued(t *testing.T) {
	srv, publisher, _ := newTestServer(t, ServerConfig{})
	publisher.EXPECT().Publish(mock.Anything, domain.EntityDeposit, "dep-1").Return(nil).Once()

	rec := postEvent(srv, `{"kind":"Deposit","id":"dep-1"}`, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp dto.EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.EventResponse{Status: "queued", Kind: "deposit", ID: "dep-1"}, resp)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHandleEvent_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"kind":`},
		{"unknown kind", `{"kind":"collection","id":"c-1"}`},
		{"missing id", `{"kind":"submission"}`},
		{"traversal id", `{"kind":"submission","id":"../etc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The mock fails the test on any unexpected Publish.
			srv, _, _ := newTestServer(t, ServerConfig{})

			rec := postEvent(srv, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleEvent_QueueUnavailable(t *testing.T) {
	srv, publisher, _ := newTestServer(t, ServerConfig{})
	publisher.EXPECT().Publish(mock.Anything, domain.EntitySubmission, "sub-1").Return(errors.New("queue full")).Once()

	rec := postEvent(srv, `{"kind":"submission","id":"sub-1"}`, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleEvent_Guarded(t *testing.T) {
	srv, publisher, _ := newTestServer(t, ServerConfig{Token: "s3cret"})

	rec := postEvent(srv, `{"kind":"deposit","id":"dep-1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	publisher.EXPECT().Publish(mock.Anything, domain.EntityDeposit, "dep-1").Return(nil).Once()
	rec = postEvent(srv, `{"kind":"deposit","id":"dep-1"}`, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleEvent_GuardedByJWT(t *testing.T) {
	srv, publisher, _ := newTestServer(t, ServerConfig{JWTSecret: "hmac-secret", JWTIssuer: "pass-core"})

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "pass-core",
		"sub": "harvester",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("hmac-secret"))
	require.NoError(t, err)

	rec := postEvent(srv, `{"kind":"deposit","id":"dep-1"}`, map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	publisher.EXPECT().Publish(mock.Anything, domain.EntityDeposit, "dep-1").Return(nil).Once()
	rec = postEvent(srv, `{"kind":"deposit","id":"dep-1"}`, map[string]string{"Authorization": "Bearer " + signed})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleEvent_BodyLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, ServerConfig{BodyLimit: "1K"})

	rec := postEvent(srv, `{"kind":"deposit","id":"`+strings.Repeat("a", 2048)+`"}`, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleRepositories(t *testing.T) {
	srv, _, registry := newTestServer(t, ServerConfig{})

	registry.EXPECT().Keys().Return([]string{"RepoA", "RepoB"})
	registry.EXPECT().Get("RepoA").Return(&in.Repository{RepositoryConfig: domain.RepositoryConfig{
		Key:       "RepoA",
		Transport: domain.TransportConfig{Protocol: domain.ProtocolSWORD, Endpoint: "https://repo.example.org/sword"},
		Assembler: domain.AssemblerConfig{Options: domain.AssemblerOptions{Archive: domain.ArchiveZIP, Compression: domain.CompressionNone}},
	}}, nil)
	registry.EXPECT().Get("RepoB").Return(&in.Repository{RepositoryConfig: domain.RepositoryConfig{
		Key:       "RepoB",
		Transport: domain.TransportConfig{Protocol: domain.ProtocolFTP, Endpoint: "ftp://ftp.example.org"},
		Assembler: domain.AssemblerConfig{Options: domain.AssemblerOptions{
			Archive:     domain.ArchiveTAR,
			Compression: domain.CompressionGZIP,
			Checksums:   []domain.ChecksumAlgorithm{domain.ChecksumSHA256},
		}},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/repositories", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RepositoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Repositories, 2)
	assert.Equal(t, "RepoA", resp.Repositories[0].Key)
	assert.Equal(t, "sword", resp.Repositories[0].Protocol)
	assert.Equal(t, "zip", resp.Repositories[0].Archive)
	assert.Equal(t, "RepoB", resp.Repositories[1].Key)
	assert.Equal(t, "ftp", resp.Repositories[1].Protocol)
	assert.Equal(t, "gzip", resp.Repositories[1].Compression)
	assert.Equal(t, []string{"sha256"}, resp.Repositories[1].Checksums)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, ServerConfig{Token: "s3cret", AllowedNetworks: []string{"10.0.0.0/8"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.HealthResponse{
		Status:             "ok",
		InFlight:           2,
		PendingSubmissions: 1,
		QueueReady:         5,
		QueueUnacked:       3,
	}, resp)
}
