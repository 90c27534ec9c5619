package domain

import (
	"io"
	"path"
	"strings"
	"sync"
)

// ManifestEntry describes one custodial file recorded in a package manifest.
type ManifestEntry struct {
	Path    string
	Size    int64
	Digests map[ChecksumAlgorithm]string
}

// PackageStream is an assembled, deposit-ready package. It is consumed at
// most once by a protocol binding and must always be closed.
type PackageStream struct {
	Name      string
	MediaType string
	Spec      string
	// Slug is a stable idempotency hint (the deposit id) that bindings may
	// send to the repository. Set by the dispatcher.
	Slug string
	// Length is the package size in bytes, or -1 when unknown.
	Length int64
	// Digests are computed over the whole package (used for transport
	// integrity headers such as Content-MD5).
	Digests  map[ChecksumAlgorithm]string
	Manifest []ManifestEntry

	mu      sync.Mutex
	body    io.ReadCloser
	taken   bool
	closed  bool
	release func() error
}

// NewPackageStream wraps body. release, if non-nil, runs once on Close
// after body is closed (e.g. to remove a spool file).
func NewPackageStream(name, mediaType string, length int64, body io.ReadCloser, release func() error) *PackageStream {
	return &PackageStream{
		Name:      name,
		MediaType: mediaType,
		Length:    length,
		Digests:   make(map[ChecksumAlgorithm]string),
		body:      body,
		release:   release,
	}
}

// Take hands the package body to its single consumer.
func (p *PackageStream) Take() (io.Reader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.taken || p.closed {
		return nil, ErrPackageConsumed
	}
	p.taken = true
	return p.body, nil
}

// Close releases the package. It is safe to call more than once.
func (p *PackageStream) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.body != nil {
		err = p.body.Close()
	}
	if p.release != nil {
		if rerr := p.release(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// Receipt is the protocol-specific confirmation of a successful transmission.
type Receipt struct {
	Protocol   Protocol
	Location   string
	Identifier string
	StatusCode int
}

// VerifyResult is the outcome of checking whether an earlier transmission
// with an unknown outcome reached the repository.
type VerifyResult string

const (
	VerifyPresent VerifyResult = "present"
	VerifyAbsent  VerifyResult = "absent"
	VerifyUnknown VerifyResult = "unknown"
)

// PackageExtension returns the file extension for the given options.
func PackageExtension(opts AssemblerOptions) string {
	var ext string
	switch opts.Archive {
	case ArchiveZIP:
		ext = ".zip"
	case ArchiveTAR:
		ext = ".tar"
	}

	switch opts.Compression {
	case CompressionGZIP:
		ext += ".gz"
	case CompressionZSTD:
		ext += ".zst"
	case CompressionXZ:
		ext += ".xz"
	}
	return ext
}

// PackageName returns the deterministic package file name of sub. Bindings
// use it as the remote name, so a retry targets the same artifact. A raw
// (archive none) package keeps the base name of its single file.
func PackageName(sub *Submission, opts AssemblerOptions) string {
	if opts.Archive == ArchiveNone && len(sub.Files) == 1 {
		return path.Base(strings.ReplaceAll(sub.Files[0].Name, "\\", "/")) + PackageExtension(opts)
	}
	return sub.ID + PackageExtension(opts)
}

// PackageMediaType returns the media type declared for the package body.
func PackageMediaType(opts AssemblerOptions) string {
	switch opts.Compression {
	case CompressionGZIP:
		return "application/gzip"
	case CompressionZSTD:
		return "application/zstd"
	case CompressionXZ:
		return "application/x-xz"
	}

	switch opts.Archive {
	case ArchiveZIP:
		return "application/zip"
	case ArchiveTAR:
		return "application/x-tar"
	}
	return "application/octet-stream"
}
