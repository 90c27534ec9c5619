package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Protocol identifies a protocol binding.
type Protocol string

const (
	ProtocolSWORD Protocol = "sword"
	ProtocolFTP   Protocol = "ftp"
)

// ArchiveFormat is the package container.
type ArchiveFormat string

const (
	ArchiveNone ArchiveFormat = "none"
	ArchiveZIP  ArchiveFormat = "zip"
	ArchiveTAR  ArchiveFormat = "tar"
)

// Compression is the stream compression applied around the container.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGZIP Compression = "gzip"
	CompressionZSTD Compression = "zstd"
	CompressionXZ   Compression = "xz"
)

// ChecksumAlgorithm names a per-file digest algorithm.
type ChecksumAlgorithm string

const (
	ChecksumMD5    ChecksumAlgorithm = "md5"
	ChecksumSHA1   ChecksumAlgorithm = "sha1"
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
	ChecksumBLAKE3 ChecksumAlgorithm = "blake3"
)

// ChecksumAlgorithms returns the supported algorithms in manifest order.
func ChecksumAlgorithms() []ChecksumAlgorithm {
	return []ChecksumAlgorithm{ChecksumMD5, ChecksumSHA1, ChecksumSHA256, ChecksumSHA512, ChecksumBLAKE3}
}

// Valid reports whether a is a supported algorithm.
func (a ChecksumAlgorithm) Valid() bool {
	for _, known := range ChecksumAlgorithms() {
		if a == known {
			return true
		}
	}
	return false
}

// MetadataFormat selects how submission metadata is serialized into the package.
type MetadataFormat string

const (
	MetadataJSON     MetadataFormat = "json"
	MetadataYAML     MetadataFormat = "yaml"
	MetadataTemplate MetadataFormat = "template"
)

// AssemblerOptions controls how a package is built.
type AssemblerOptions struct {
	Archive     ArchiveFormat
	Compression Compression
	Checksums   []ChecksumAlgorithm

	MetadataFormat   MetadataFormat
	MetadataTemplate string
	MetadataEntry    string
	ManifestEntry    string
	// PayloadPrefix is prepended to custodial file entries (e.g. "data/").
	PayloadPrefix  string
	MaxPackageSize int64
}

// Default entry names written next to the payload.
const (
	DefaultManifestEntry = "manifest.txt"
	DefaultJSONEntry     = "metadata.json"
	DefaultYAMLEntry     = "metadata.yaml"
	DefaultTemplateEntry = "metadata.xml"
)

// WithDefaults fills unset options.
func (o AssemblerOptions) WithDefaults() AssemblerOptions {
	if o.Archive == "" {
		o.Archive = ArchiveZIP
	}
	if o.Compression == "" {
		o.Compression = CompressionNone
	}
	if o.MetadataFormat == "" {
		o.MetadataFormat = MetadataJSON
	}
	if o.ManifestEntry == "" {
		o.ManifestEntry = DefaultManifestEntry
	}
	if o.MetadataEntry == "" {
		switch o.MetadataFormat {
		case MetadataYAML:
			o.MetadataEntry = DefaultYAMLEntry
		case MetadataTemplate:
			o.MetadataEntry = DefaultTemplateEntry
		default:
			o.MetadataEntry = DefaultJSONEntry
		}
	}
	return o
}

// ValidateContainer checks the archive/compression compatibility matrix.
func ValidateContainer(archive ArchiveFormat, compression Compression) error {
	switch archive {
	case ArchiveNone, ArchiveTAR:
		switch compression {
		case CompressionNone, CompressionGZIP, CompressionZSTD, CompressionXZ:
		default:
			return fmt.Errorf("%w: unknown compression %q", ErrUnsupportedOptions, compression)
		}
	case ArchiveZIP:
		if compression != CompressionNone {
			return fmt.Errorf("%w: zip archives cannot be wrapped in %s compression", ErrUnsupportedOptions, compression)
		}
	default:
		return fmt.Errorf("%w: unknown archive format %q", ErrUnsupportedOptions, archive)
	}
	return nil
}

// Validate checks the container pair and the remaining option values.
// It never touches any output.
func (o AssemblerOptions) Validate() error {
	if err := ValidateContainer(o.Archive, o.Compression); err != nil {
		return err
	}

	for _, alg := range o.Checksums {
		if !alg.Valid() {
			return fmt.Errorf("%w: unknown checksum algorithm %q", ErrUnsupportedOptions, alg)
		}
	}

	switch o.MetadataFormat {
	case MetadataJSON, MetadataYAML:
	case MetadataTemplate:
		if strings.TrimSpace(o.MetadataTemplate) == "" {
			return fmt.Errorf("%w: template metadata format requires a template", ErrUnsupportedOptions)
		}
	default:
		return fmt.Errorf("%w: unknown metadata format %q", ErrUnsupportedOptions, o.MetadataFormat)
	}

	return nil
}

// AssemblerConfig declares the package specification and build options.
type AssemblerConfig struct {
	// Spec is the package specification identifier consumed downstream
	// (e.g. a SWORD packaging URI).
	Spec    string
	Options AssemblerOptions
}

// AuthRealm is a credential set scoped to a host and optional realm.
type AuthRealm struct {
	Host     string
	Realm    string
	Username string
	Password string
}

// TransportConfig describes where and how a package is transmitted.
type TransportConfig struct {
	Protocol Protocol
	// Endpoint is the primary endpoint: the SWORD collection URL or the
	// FTP server URL (ftp://host:port).
	Endpoint string
	// ServiceDocument is an optional SWORD service document URL.
	ServiceDocument string
	// RemoteDir is the FTP target directory.
	RemoteDir  string
	CreateDirs bool
	Realms     []AuthRealm
	Headers    map[string]string
	OnBehalfOf string
	Timeout    time.Duration
}

// RealmFor returns the credentials configured for the host of rawURL.
func (t TransportConfig) RealmFor(rawURL string) (AuthRealm, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return AuthRealm{}, false
	}

	host := u.Hostname()
	for _, r := range t.Realms {
		if strings.EqualFold(r.Host, host) || strings.EqualFold(r.Host, u.Host) {
			return r, true
		}
	}
	return AuthRealm{}, false
}

// RepositoryConfig is the immutable configuration of one target repository.
type RepositoryConfig struct {
	Key       string
	Transport TransportConfig
	Assembler AssemblerConfig
}
