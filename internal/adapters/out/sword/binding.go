// Package sword implements the SWORD v2 style HTTP deposit binding.
package sword

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bnema/zerowrap"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

// DefaultTimeout applies when a repository configures no transport timeout.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

var _ out.ProtocolBinding = (*Binding)(nil)

// Binding deposits packages with a single POST to a SWORD collection.
type Binding struct {
	client    *http.Client
	userAgent string
	log       zerowrap.Logger
}

// Option configures the Binding.
type Option func(*Binding)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Binding) {
		b.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(b *Binding) {
		b.userAgent = ua
	}
}

// New creates a SWORD binding.
func New(log zerowrap.Logger, opts ...Option) *Binding {
	b := &Binding{
		userAgent: "ferry",
		log:       log,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		b.client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return b
}

// Protocol returns domain.ProtocolSWORD.
func (b *Binding) Protocol() domain.Protocol {
	return domain.ProtocolSWORD
}

// Submit posts the package to the collection URL and parses the deposit receipt.
func (b *Binding) Submit(ctx context.Context, pkg *domain.PackageStream, cfg domain.TransportConfig) (*domain.Receipt, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "sword",
		zerowrap.FieldMethod:  http.MethodPost,
		"endpoint":            cfg.Endpoint,
		"package":             pkg.Name,
	})
	log := zerowrap.FromCtx(ctx)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if cfg.ServiceDocument != "" {
		if err := b.checkServiceDocument(ctx, cfg); err != nil {
			return nil, err
		}
	}

	body, err := pkg.Take()
	if err != nil {
		return nil, fmt.Errorf("failed to take package body: %w", err)
	}
	tracked := &trackingReader{r: body}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, tracked)
	if err != nil {
		return nil, b.transportErr(domain.TransportRemoteRejected, cfg, 0, "", fmt.Errorf("invalid collection URL: %w", err))
	}
	if pkg.Length >= 0 {
		req.ContentLength = pkg.Length
	}
	b.setDepositHeaders(req, pkg, cfg)

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		kind := classifyRequestError(ctx, err, tracked.Done())
		log.Warn().Err(err).Str("kind", string(kind)).Bool("body_sent", tracked.Done()).Msg("deposit request failed")
		return nil, b.transportErr(kind, cfg, 0, "", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	case http.StatusUnauthorized, http.StatusForbidden:
		excerpt := readExcerpt(resp.Body)
		return nil, b.transportErr(domain.TransportAuthFailure, cfg, resp.StatusCode, excerpt, nil)
	default:
		excerpt := readExcerpt(resp.Body)
		return nil, b.transportErr(domain.TransportRemoteRejected, cfg, resp.StatusCode, excerpt, nil)
	}

	receipt := &domain.Receipt{
		Protocol:   domain.ProtocolSWORD,
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
	}

	entry, err := parseReceipt(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		// Still accepted; only the receipt links are lost.
		log.Warn().Err(err).Msg("failed to parse deposit receipt")
	} else if entry != nil {
		receipt.Identifier = entry.ID
		if receipt.Location == "" {
			receipt.Location = entry.location()
		}
	}

	log.Info().
		Int("status_code", resp.StatusCode).
		Str("location", receipt.Location).
		Int64(zerowrap.FieldSize, tracked.Sent()).
		Dur(zerowrap.FieldDuration, time.Since(start)).
		Msg("package deposited")

	return receipt, nil
}

func (b *Binding) setDepositHeaders(req *http.Request, pkg *domain.PackageStream, cfg domain.TransportConfig) {
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	req.Header.Set("User-Agent", b.userAgent)
	req.Header.Set("Content-Type", pkg.MediaType)
	req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": pkg.Name}))
	req.Header.Set("In-Progress", "false")

	if pkg.Spec != "" {
		req.Header.Set("Packaging", pkg.Spec)
	}
	if sum, ok := pkg.Digests[domain.ChecksumMD5]; ok {
		if raw, err := hex.DecodeString(sum); err == nil {
			req.Header.Set("Content-MD5", base64.StdEncoding.EncodeToString(raw))
		}
	}

	slug := pkg.Slug
	if slug == "" {
		slug = strings.SplitN(pkg.Name, ".", 2)[0]
	}
	req.Header.Set("Slug", slug)

	if cfg.OnBehalfOf != "" {
		req.Header.Set("On-Behalf-Of", cfg.OnBehalfOf)
	}
	if realm, ok := cfg.RealmFor(cfg.Endpoint); ok {
		req.SetBasicAuth(realm.Username, realm.Password)
	}
}

// checkServiceDocument fetches the service document to validate
// credentials before any package byte is sent.
func (b *Binding) checkServiceDocument(ctx context.Context, cfg domain.TransportConfig) error {
	log := zerowrap.FromCtx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ServiceDocument, nil)
	if err != nil {
		return b.transportErr(domain.TransportRemoteRejected, cfg, 0, "", fmt.Errorf("invalid service document URL: %w", err))
	}
	req.Header.Set("User-Agent", b.userAgent)
	if cfg.OnBehalfOf != "" {
		req.Header.Set("On-Behalf-Of", cfg.OnBehalfOf)
	}
	if realm, ok := cfg.RealmFor(cfg.ServiceDocument); ok {
		req.SetBasicAuth(realm.Username, realm.Password)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		// Nothing was deposited yet, so the outcome is never unknown.
		return b.transportErr(classifyRequestError(ctx, err, false), cfg, 0, "", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return b.transportErr(domain.TransportAuthFailure, cfg, resp.StatusCode, readExcerpt(resp.Body), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return b.transportErr(domain.TransportRemoteRejected, cfg, resp.StatusCode, readExcerpt(resp.Body),
			fmt.Errorf("service document request failed"))
	}

	collections, err := parseServiceDocument(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse service document")
		return nil
	}
	log.Debug().Int(zerowrap.FieldCount, len(collections)).Msg("service document checked")
	return nil
}

func (b *Binding) transportErr(kind domain.TransportErrorKind, cfg domain.TransportConfig, status int, body string, err error) *domain.TransportError {
	return &domain.TransportError{
		Kind:       kind,
		Protocol:   domain.ProtocolSWORD,
		Endpoint:   cfg.Endpoint,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

func readExcerpt(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(data))
}

// trackingReader records whether the request body was read to the end. The
// transport reads it on its own goroutine, so the counters are atomic.
type trackingReader struct {
	r    io.Reader
	n    atomic.Int64
	done atomic.Bool
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.n.Add(int64(n))
	if err == io.EOF {
		t.done.Store(true)
	}
	return n, err
}

// Done reports whether the whole body was handed to the transport.
func (t *trackingReader) Done() bool {
	return t.done.Load()
}

// Sent returns the number of body bytes handed to the transport so far.
func (t *trackingReader) Sent() int64 {
	return t.n.Load()
}
