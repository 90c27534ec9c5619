// Package ftp implements the FTP upload binding.
package ftp

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/jlaffaye/ftp"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

const (
	// DefaultTimeout applies when a repository configures no transport timeout.
	DefaultTimeout = 10 * time.Minute
	defaultPort    = "21"
	partSuffix     = ".part"
)

var (
	_ out.ProtocolBinding = (*Binding)(nil)
	_ out.Verifier        = (*Binding)(nil)
)

// Binding uploads a package as a single file, staged under a temporary
// name and renamed once complete.
type Binding struct {
	dial        dialFunc
	dialTimeout time.Duration
	log         zerowrap.Logger
}

// Option configures the Binding.
type Option func(*Binding)

// WithDialTimeout bounds connection establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(b *Binding) {
		b.dialTimeout = d
	}
}

func withDialer(d dialFunc) Option {
	return func(b *Binding) {
		b.dial = d
	}
}

// New creates an FTP binding.
func New(log zerowrap.Logger, opts ...Option) *Binding {
	b := &Binding{
		dial:        dialServer,
		dialTimeout: 30 * time.Second,
		log:         log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Protocol returns domain.ProtocolFTP.
func (b *Binding) Protocol() domain.Protocol {
	return domain.ProtocolFTP
}

// Submit uploads pkg to the configured remote directory.
func (b *Binding) Submit(ctx context.Context, pkg *domain.PackageStream, cfg domain.TransportConfig) (*domain.Receipt, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "ftp",
		"endpoint":            cfg.Endpoint,
		"package":             pkg.Name,
	})
	log := zerowrap.FromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(cfg))
	defer cancel()

	c, u, err := b.connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer quit(c)

	if err := changeDir(c, cfg.RemoteDir, cfg.CreateDirs); err != nil {
		return nil, b.transportErr(classify(ctx, err), cfg, err)
	}

	body, err := pkg.Take()
	if err != nil {
		return nil, fmt.Errorf("failed to take package body: %w", err)
	}

	start := time.Now()
	part := pkg.Name + partSuffix
	reader := &ctxReader{ctx: ctx, r: body}
	if err := c.Stor(part, reader); err != nil {
		if derr := c.Delete(part); derr != nil {
			log.Debug().Err(derr).Str(zerowrap.FieldPath, part).Msg("failed to remove partial upload")
		}
		log.Warn().Err(err).Int64(zerowrap.FieldSize, reader.n).Msg("upload failed")
		return nil, b.transportErr(classify(ctx, err), cfg, err)
	}

	if err := c.Rename(part, pkg.Name); err != nil {
		kind := classifyCommit(ctx, err)
		if kind != domain.TransportUnknownOutcome {
			_ = c.Delete(part)
		}
		log.Warn().Err(err).Str("kind", string(kind)).Msg("rename of uploaded package failed")
		return nil, b.transportErr(kind, cfg, err)
	}

	receipt := b.receipt(u, cfg, pkg.Name)
	log.Info().
		Str("location", receipt.Location).
		Int64(zerowrap.FieldSize, reader.n).
		Dur(zerowrap.FieldDuration, time.Since(start)).
		Msg("package uploaded")

	return receipt, nil
}

// Verify reports whether the final file name exists in the remote
// directory. The rename is the commit point, so a present name means the
// whole package arrived.
func (b *Binding) Verify(ctx context.Context, name string, cfg domain.TransportConfig) (domain.VerifyResult, *domain.Receipt, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "adapter",
		zerowrap.FieldAdapter: "ftp",
		"endpoint":            cfg.Endpoint,
		"package":             name,
	})
	log := zerowrap.FromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeoutFor(cfg))
	defer cancel()

	c, u, err := b.connect(ctx, cfg)
	if err != nil {
		return domain.VerifyUnknown, nil, err
	}
	defer quit(c)

	if cfg.RemoteDir != "" {
		if err := c.ChangeDir(cfg.RemoteDir); err != nil {
			if replyCode(err) == ftp.StatusFileUnavailable {
				return domain.VerifyAbsent, nil, nil
			}
			return domain.VerifyUnknown, nil, b.transportErr(classify(ctx, err), cfg, err)
		}
	}

	found, err := exists(c, name)
	if err != nil {
		return domain.VerifyUnknown, nil, b.transportErr(classify(ctx, err), cfg, err)
	}
	if !found {
		log.Debug().Msg("package not found on server")
		return domain.VerifyAbsent, nil, nil
	}

	log.Info().Msg("package found on server")
	return domain.VerifyPresent, b.receipt(u, cfg, name), nil
}

// connect dials and logs in. Missing credentials fall back to anonymous.
func (b *Binding) connect(ctx context.Context, cfg domain.TransportConfig) (conn, *url.URL, error) {
	u, addr, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, nil, b.transportErr(domain.TransportRemoteRejected, cfg, err)
	}

	c, err := b.dial(ctx, addr, b.dialTimeout)
	if err != nil {
		return nil, nil, b.transportErr(classify(ctx, err), cfg, err)
	}

	user, pass := "anonymous", "anonymous"
	if realm, ok := cfg.RealmFor(cfg.Endpoint); ok {
		user, pass = realm.Username, realm.Password
	}
	if err := c.Login(user, pass); err != nil {
		quit(c)
		kind := classify(ctx, err)
		if code := replyCode(err); code >= 500 {
			kind = domain.TransportAuthFailure
		}
		return nil, nil, b.transportErr(kind, cfg, err)
	}

	if err := c.Type(ftp.TransferTypeBinary); err != nil {
		quit(c)
		return nil, nil, b.transportErr(classify(ctx, err), cfg, err)
	}

	return c, u, nil
}

func (b *Binding) receipt(u *url.URL, cfg domain.TransportConfig, name string) *domain.Receipt {
	loc := url.URL{
		Scheme: "ftp",
		Host:   u.Host,
		Path:   path.Join("/", cfg.RemoteDir, name),
	}
	return &domain.Receipt{
		Protocol:   domain.ProtocolFTP,
		Location:   loc.String(),
		Identifier: name,
	}
}

func (b *Binding) transportErr(kind domain.TransportErrorKind, cfg domain.TransportConfig, err error) *domain.TransportError {
	return &domain.TransportError{
		Kind:       kind,
		Protocol:   domain.ProtocolFTP,
		Endpoint:   cfg.Endpoint,
		StatusCode: replyCode(err),
		Err:        err,
	}
}

func timeoutFor(cfg domain.TransportConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout
}

func quit(c conn) {
	_ = c.Quit()
}

// parseEndpoint accepts ftp://host[:port] and returns the dial address.
func parseEndpoint(endpoint string) (*url.URL, string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("invalid FTP endpoint: %w", err)
	}
	if u.Scheme != "ftp" {
		return nil, "", fmt.Errorf("invalid FTP endpoint %q: scheme must be ftp", endpoint)
	}
	if u.Hostname() == "" {
		return nil, "", fmt.Errorf("invalid FTP endpoint %q: missing host", endpoint)
	}

	port := u.Port()
	if port == "" {
		port = defaultPort
	}
	return u, net.JoinHostPort(u.Hostname(), port), nil
}

// changeDir enters dir, creating missing components when create is set.
func changeDir(c conn, dir string, create bool) error {
	if dir == "" {
		return nil
	}

	err := c.ChangeDir(dir)
	if err == nil || !create {
		return err
	}

	if strings.HasPrefix(dir, "/") {
		if err := c.ChangeDir("/"); err != nil {
			return err
		}
	}
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if part == "" || part == "." {
			continue
		}
		if err := c.ChangeDir(part); err == nil {
			continue
		}
		if err := c.MakeDir(part); err != nil {
			return err
		}
		if err := c.ChangeDir(part); err != nil {
			return err
		}
	}
	return nil
}

// exists checks name in the current directory with SIZE, falling back to
// a listing on servers that do not implement it.
func exists(c conn, name string) (bool, error) {
	_, err := c.FileSize(name)
	if err == nil {
		return true, nil
	}

	code := replyCode(err)
	if code == ftp.StatusFileUnavailable {
		return false, nil
	}
	if code < 500 {
		return false, err
	}

	entries, err := c.List("")
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Name == name && e.Type == ftp.EntryTypeFile {
			return true, nil
		}
	}
	return false, nil
}
