// Package packaging implements the package assembly use case: it streams the
// custodial files of a submission into a deposit-ready package.
package packaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/opencontainers/go-digest"

	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/validation"
)

// Service implements the PackageAssembler interface.
type Service struct {
	content  out.ContentSource
	spoolDir string
	now      func() time.Time
	log      zerowrap.Logger
}

// NewService creates a package assembler. Packages are spooled under
// spoolDir, or the system temp directory when empty.
func NewService(content out.ContentSource, spoolDir string, log zerowrap.Logger) *Service {
	return &Service{
		content:  content,
		spoolDir: spoolDir,
		now:      time.Now,
		log:      log,
	}
}

// Assemble builds the package of sub according to cfg. The returned stream
// must be closed by the caller; on error no partial package is left behind.
func (s *Service) Assemble(ctx context.Context, sub *domain.Submission, cfg domain.AssemblerConfig) (*domain.PackageStream, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:    "usecase",
		zerowrap.FieldUseCase:  "Assemble",
		zerowrap.FieldEntityID: sub.ID,
	})
	log := zerowrap.FromCtx(ctx)

	cfg.Options = cfg.Options.WithDefaults()
	opts := cfg.Options

	if err := opts.Validate(); err != nil {
		return nil, domain.NewPackagingError(domain.PackagingCauseUnsupportedOptions, err)
	}
	if opts.Archive == domain.ArchiveNone && len(sub.Files) != 1 {
		return nil, domain.NewPackagingError(domain.PackagingCauseUnsupportedOptions,
			fmt.Errorf("%w: archive format none requires exactly one file, got %d", domain.ErrUnsupportedOptions, len(sub.Files)))
	}

	entries, err := entryNames(sub.Files, opts)
	if err != nil {
		return nil, domain.NewPackagingError(domain.PackagingCauseMetadata, err)
	}

	// Serialize metadata before any output exists.
	var metadata []byte
	if opts.Archive != domain.ArchiveNone {
		metadata, err = serializeMetadata(sub, cfg)
		if err != nil {
			return nil, domain.NewPackagingError(domain.PackagingCauseMetadata, err)
		}
	}

	spool, err := os.CreateTemp(s.spoolDir, "ferry-pkg-*")
	if err != nil {
		return nil, domain.NewPackagingError(domain.PackagingCauseIO, log.WrapErr(err, "failed to create spool file"))
	}
	discard := func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}

	pkgSums, err := NewChecksummer([]domain.ChecksumAlgorithm{domain.ChecksumMD5, domain.ChecksumSHA256})
	if err != nil {
		discard()
		return nil, domain.NewPackagingError(domain.PackagingCauseIO, err)
	}
	sink := &limitWriter{w: io.MultiWriter(spool, pkgSums), limit: opts.MaxPackageSize}

	aw, err := NewArchiveWriter(sink, opts.Archive, opts.Compression)
	if err != nil {
		discard()
		return nil, domain.NewPackagingError(domain.PackagingCauseUnsupportedOptions, err)
	}
	aw.SetSpoolDir(s.spoolDir)

	manifest := NewManifest(opts.Checksums)
	modTime := sub.SubmittedAt
	if modTime.IsZero() {
		modTime = s.now()
	}

	fail := func(cause domain.PackagingCause, err error) (*domain.PackageStream, error) {
		_ = aw.Close()
		discard()
		if errors.Is(err, domain.ErrPackageTooLarge) {
			cause = domain.PackagingCauseUnsupportedOptions
		}
		log.Warn().Err(err).Str("cause", string(cause)).Msg("package assembly failed")
		return nil, domain.NewPackagingError(cause, err)
	}

	for i, f := range sub.Files {
		if err := ctx.Err(); err != nil {
			return fail(domain.PackagingCauseIO, err)
		}

		size, sums, err := s.copyFile(ctx, aw, f, entries[i], modTime, opts.Checksums)
		if err != nil {
			return fail(domain.PackagingCauseIO, fmt.Errorf("file %s: %w", f.Name, err))
		}
		if len(opts.Checksums) > 0 {
			manifest.Add(domain.ManifestEntry{Path: entries[i], Size: size, Digests: sums})
		}
	}

	if opts.Archive != domain.ArchiveNone {
		if _, err := aw.WriteEntry(opts.MetadataEntry, int64(len(metadata)), modTime, bytes.NewReader(metadata)); err != nil {
			return fail(domain.PackagingCauseIO, fmt.Errorf("metadata entry: %w", err))
		}

		if len(opts.Checksums) > 0 {
			text, err := manifest.MarshalText()
			if err != nil {
				return fail(domain.PackagingCauseMetadata, err)
			}
			if _, err := aw.WriteEntry(opts.ManifestEntry, int64(len(text)), modTime, bytes.NewReader(text)); err != nil {
				return fail(domain.PackagingCauseIO, fmt.Errorf("manifest entry: %w", err))
			}
		}
	}

	if err := aw.Close(); err != nil {
		return fail(domain.PackagingCauseIO, err)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return fail(domain.PackagingCauseIO, err)
	}

	name := domain.PackageName(sub, opts)
	mediaType := domain.PackageMediaType(opts)
	if opts.Archive == domain.ArchiveNone && opts.Compression == domain.CompressionNone && sub.Files[0].ContentType != "" {
		mediaType = sub.Files[0].ContentType
	}

	spoolPath := spool.Name()
	pkg := domain.NewPackageStream(name, mediaType, sink.n, spool, func() error {
		return os.Remove(spoolPath)
	})
	pkg.Spec = cfg.Spec
	pkg.Digests = pkgSums.Sums()
	pkg.Manifest = manifest.Entries()

	log.Info().
		Str("package", name).
		Int64(zerowrap.FieldSize, pkg.Length).
		Int(zerowrap.FieldCount, len(sub.Files)).
		Str("sha256", digest.NewDigestFromEncoded(digest.SHA256, pkg.Digests[domain.ChecksumSHA256]).String()).
		Msg("package assembled")

	return pkg, nil
}

// copyFile streams one custodial file into the archive while computing its digests.
func (s *Service) copyFile(
	ctx context.Context,
	aw *ArchiveWriter,
	f domain.SubmissionFile,
	entry string,
	modTime time.Time,
	algs []domain.ChecksumAlgorithm,
) (int64, map[domain.ChecksumAlgorithm]string, error) {
	rc, size, err := s.content.Open(ctx, f.Location)
	if err != nil {
		return 0, nil, err
	}
	defer rc.Close()

	sums, err := NewChecksummer(algs)
	if err != nil {
		return 0, nil, err
	}

	r := io.TeeReader(&ctxReader{ctx: ctx, r: rc}, sums)
	if _, err := aw.WriteEntry(entry, size, modTime, r); err != nil {
		return 0, nil, err
	}
	return sums.Size(), sums.Sums(), nil
}

// entryNames validates and prefixes every custodial file name.
func entryNames(files []domain.SubmissionFile, opts domain.AssemblerOptions) ([]string, error) {
	reserved := map[string]bool{}
	if opts.Archive != domain.ArchiveNone {
		reserved[opts.MetadataEntry] = true
		if len(opts.Checksums) > 0 {
			reserved[opts.ManifestEntry] = true
		}
	}

	seen := make(map[string]bool, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		clean, err := validation.ValidateEntryName(f.Name)
		if err != nil {
			return nil, fmt.Errorf("file %q: %w", f.Name, err)
		}
		name := clean
		if opts.PayloadPrefix != "" {
			name = path.Join(opts.PayloadPrefix, clean)
		}
		if seen[name] || reserved[name] {
			return nil, fmt.Errorf("duplicate entry name %q", name)
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

// ctxReader stops a copy as soon as ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// limitWriter counts written bytes and refuses to grow past limit (0 = unlimited).
type limitWriter struct {
	w     io.Writer
	limit int64
	n     int64
}

func (l *limitWriter) Write(p []byte) (int, error) {
	if l.limit > 0 && l.n+int64(len(p)) > l.limit {
		return 0, fmt.Errorf("%w: limit %d bytes", domain.ErrPackageTooLarge, l.limit)
	}
	n, err := l.w.Write(p)
	l.n += int64(n)
	return n, err
}
