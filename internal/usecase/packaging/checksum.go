package packaging

import (
	"crypto/md5"  // #nosec G501 - md5 is a manifest/transport checksum, not a security primitive
	"crypto/sha1" // #nosec G505 - same as above
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"

	"github.com/bnema/ferry/internal/domain"
)

// Checksummer computes several digests over one byte stream.
type Checksummer struct {
	algs   []domain.ChecksumAlgorithm
	hashes []hash.Hash
	writer io.Writer
	size   int64
}

// NewChecksummer creates a Checksummer for algs. Duplicates are ignored.
func NewChecksummer(algs []domain.ChecksumAlgorithm) (*Checksummer, error) {
	c := &Checksummer{}
	writers := make([]io.Writer, 0, len(algs))

	for _, alg := range orderAlgorithms(algs) {
		h, err := newHash(alg)
		if err != nil {
			return nil, err
		}
		c.algs = append(c.algs, alg)
		c.hashes = append(c.hashes, h)
		writers = append(writers, h)
	}

	c.writer = io.MultiWriter(writers...)
	return c, nil
}

func (c *Checksummer) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.size += int64(n)
	return n, err
}

// Size returns the number of bytes written so far.
func (c *Checksummer) Size() int64 {
	return c.size
}

// Sums returns the hex digest per algorithm.
func (c *Checksummer) Sums() map[domain.ChecksumAlgorithm]string {
	sums := make(map[domain.ChecksumAlgorithm]string, len(c.algs))
	for i, alg := range c.algs {
		sums[alg] = hex.EncodeToString(c.hashes[i].Sum(nil))
	}
	return sums
}

func newHash(alg domain.ChecksumAlgorithm) (hash.Hash, error) {
	switch alg {
	case domain.ChecksumMD5:
		return md5.New(), nil
	case domain.ChecksumSHA1:
		return sha1.New(), nil
	case domain.ChecksumSHA256:
		return digest.SHA256.Hash(), nil
	case domain.ChecksumSHA512:
		return digest.SHA512.Hash(), nil
	case domain.ChecksumBLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown checksum algorithm %q", domain.ErrUnsupportedOptions, alg)
	}
}

// orderAlgorithms returns algs deduplicated in the canonical manifest order.
func orderAlgorithms(algs []domain.ChecksumAlgorithm) []domain.ChecksumAlgorithm {
	wanted := make(map[domain.ChecksumAlgorithm]bool, len(algs))
	for _, a := range algs {
		wanted[a] = true
	}

	ordered := make([]domain.ChecksumAlgorithm, 0, len(wanted))
	for _, a := range domain.ChecksumAlgorithms() {
		if wanted[a] {
			ordered = append(ordered, a)
			delete(wanted, a)
		}
	}
	// Unknown algorithms keep a stable position so newHash can reject them.
	rest := make([]string, 0, len(wanted))
	for a := range wanted {
		rest = append(rest, string(a))
	}
	sort.Strings(rest)
	for _, a := range rest {
		ordered = append(ordered, domain.ChecksumAlgorithm(a))
	}
	return ordered
}

// Manifest lists every custodial file of a package with its size and digests.
type Manifest struct {
	algs    []domain.ChecksumAlgorithm
	entries []domain.ManifestEntry
}

// NewManifest creates an empty manifest for algs.
func NewManifest(algs []domain.ChecksumAlgorithm) *Manifest {
	return &Manifest{algs: orderAlgorithms(algs)}
}

// Add records one file.
func (m *Manifest) Add(entry domain.ManifestEntry) {
	m.entries = append(m.entries, entry)
}

// Entries returns the recorded files sorted by path.
func (m *Manifest) Entries() []domain.ManifestEntry {
	entries := make([]domain.ManifestEntry, len(m.entries))
	copy(entries, m.entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// MarshalText renders one line per file, sorted by path:
//
//	path<TAB>size<TAB>alg:hex[ alg:hex...]
func (m *Manifest) MarshalText() ([]byte, error) {
	var b strings.Builder
	for _, e := range m.Entries() {
		if strings.ContainsAny(e.Path, "\t\n") {
			return nil, fmt.Errorf("manifest path %q contains a tab or newline", e.Path)
		}

		digests := make([]string, 0, len(m.algs))
		for _, alg := range m.algs {
			sum, ok := e.Digests[alg]
			if !ok {
				return nil, fmt.Errorf("manifest entry %s has no %s digest", e.Path, alg)
			}
			digests = append(digests, digest.NewDigestFromEncoded(digest.Algorithm(alg), sum).String())
		}

		b.WriteString(e.Path)
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(e.Size, 10))
		b.WriteByte('\t')
		b.WriteString(strings.Join(digests, " "))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}
