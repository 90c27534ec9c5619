package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() AssemblerOptions {
	return AssemblerOptions{
		Archive:        ArchiveZIP,
		Compression:    CompressionNone,
		MetadataFormat: MetadataJSON,
	}
}

func TestAssemblerOptions_Validate_CompatibilityMatrix(t *testing.T) {
	tests := []struct {
		archive     ArchiveFormat
		compression Compression
		valid       bool
	}{
		{ArchiveNone, CompressionNone, true},
		{ArchiveNone, CompressionGZIP, true},
		{ArchiveTAR, CompressionNone, true},
		{ArchiveTAR, CompressionGZIP, true},
		{ArchiveTAR, CompressionZSTD, true},
		{ArchiveTAR, CompressionXZ, true},
		{ArchiveZIP, CompressionNone, true},
		{ArchiveZIP, CompressionGZIP, false},
		{ArchiveZIP, CompressionZSTD, false},
		{ArchiveFormat("rar"), CompressionNone, false},
		{ArchiveTAR, Compression("bzip2"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.archive)+"+"+string(tt.compression), func(t *testing.T) {
			opts := validOptions()
			opts.Archive = tt.archive
			opts.Compression = tt.compression

			err := opts.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedOptions))
			}
		})
	}
}

func TestAssemblerOptions_Validate_ChecksumsAndMetadata(t *testing.T) {
	opts := validOptions()
	opts.Checksums = []ChecksumAlgorithm{ChecksumSHA256, "crc32"}
	assert.ErrorIs(t, opts.Validate(), ErrUnsupportedOptions)

	opts = validOptions()
	opts.MetadataFormat = MetadataTemplate
	assert.ErrorIs(t, opts.Validate(), ErrUnsupportedOptions)

	opts.MetadataTemplate = "<dc>{{ .title }}</dc>"
	assert.NoError(t, opts.Validate())
}

func TestTransportConfig_RealmFor(t *testing.T) {
	cfg := TransportConfig{
		Realms: []AuthRealm{
			{Host: "repo.example.org", Username: "alice", Password: "s3cret"},
			{Host: "ftp.example.org:2121", Username: "bob"},
		},
	}

	realm, ok := cfg.RealmFor("https://repo.example.org/sword/collection")
	require.True(t, ok)
	assert.Equal(t, "alice", realm.Username)

	realm, ok = cfg.RealmFor("ftp://ftp.example.org:2121")
	require.True(t, ok)
	assert.Equal(t, "bob", realm.Username)

	_, ok = cfg.RealmFor("https://other.example.org/")
	assert.False(t, ok)
}

func TestPackageNameAndMediaType(t *testing.T) {
	sub := &Submission{ID: "sub-1", Files: []SubmissionFile{{Name: "docs/article.pdf"}}}

	assert.Equal(t, "sub-1.zip", PackageName(sub, AssemblerOptions{Archive: ArchiveZIP, Compression: CompressionNone}))
	assert.Equal(t, "sub-1.tar.gz", PackageName(sub, AssemblerOptions{Archive: ArchiveTAR, Compression: CompressionGZIP}))
	assert.Equal(t, "sub-1.tar.zst", PackageName(sub, AssemblerOptions{Archive: ArchiveTAR, Compression: CompressionZSTD}))
	assert.Equal(t, "article.pdf", PackageName(sub, AssemblerOptions{Archive: ArchiveNone, Compression: CompressionNone}))
	assert.Equal(t, "article.pdf.xz", PackageName(sub, AssemblerOptions{Archive: ArchiveNone, Compression: CompressionXZ}))

	assert.Equal(t, "application/zip", PackageMediaType(AssemblerOptions{Archive: ArchiveZIP}))
	assert.Equal(t, "application/gzip", PackageMediaType(AssemblerOptions{Archive: ArchiveTAR, Compression: CompressionGZIP}))
	assert.Equal(t, "application/x-tar", PackageMediaType(AssemblerOptions{Archive: ArchiveTAR, Compression: CompressionNone}))
}

func TestAssemblerOptions_WithDefaults(t *testing.T) {
	opts := AssemblerOptions{}.WithDefaults()

	assert.Equal(t, ArchiveZIP, opts.Archive)
	assert.Equal(t, CompressionNone, opts.Compression)
	assert.Equal(t, MetadataJSON, opts.MetadataFormat)
	assert.Equal(t, DefaultJSONEntry, opts.MetadataEntry)
	assert.Equal(t, DefaultManifestEntry, opts.ManifestEntry)
	assert.NoError(t, opts.Validate())

	yamlOpts := AssemblerOptions{MetadataFormat: MetadataYAML, MetadataEntry: ""}.WithDefaults()
	assert.Equal(t, DefaultYAMLEntry, yamlOpts.MetadataEntry)

	custom := AssemblerOptions{Archive: ArchiveTAR, MetadataEntry: "dc.xml"}.WithDefaults()
	assert.Equal(t, ArchiveTAR, custom.Archive)
	assert.Equal(t, "dc.xml", custom.MetadataEntry)
}
