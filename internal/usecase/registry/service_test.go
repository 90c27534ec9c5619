package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ferry/internal/boundaries/out/mocks"
	"github.com/bnema/ferry/internal/domain"
)

const testConfig = `
repositories:
  RepoA:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection/pmc
      service_document: https://sword.example.org/servicedocument
      on_behalf_of: depositor
      timeout: 2m
      realms:
        - host: sword.example.org
          username: ${FERRY_TEST_USER}
          password: ${FERRY_TEST_PASS}
      headers:
        X-Packaging-Profile: strict
    assembler:
      spec: http://purl.org/net/sword/package/SimpleZip
      archive: zip
      compression: none
  RepoB:
    transport:
      protocol: ftp
      endpoint: ftp://ftp.example.org:21
      remote_dir: /incoming/ferry
      create_dirs: true
    assembler:
      archive: tar
      compression: gzip
      checksums: [sha256]
      payload_prefix: data
      max_package_size: 2GB
      metadata:
        format: yaml
`

func testBindings(t *testing.T) Bindings {
	return Bindings{
		domain.ProtocolSWORD: mocks.NewMockProtocolBinding(t),
		domain.ProtocolFTP:   mocks.NewMockProtocolBinding(t),
	}
}

func loadYAML(t *testing.T, cfg string, bindings Bindings) (*Service, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ferry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return FromViper(v, bindings)
}

func TestFromViper_LoadsRepositories(t *testing.T) {
	t.Setenv("FERRY_TEST_USER", "alice")
	t.Setenv("FERRY_TEST_PASS", "s3cret")
	bindings := testBindings(t)

	reg, err := loadYAML(t, testConfig, bindings)
	require.NoError(t, err)

	assert.Equal(t, []string{"RepoA", "RepoB"}, reg.Keys())

	a, err := reg.Get("RepoA")
	require.NoError(t, err)
	assert.Same(t, bindings[domain.ProtocolSWORD], a.Binding)
	assert.Equal(t, domain.ProtocolSWORD, a.Transport.Protocol)
	assert.Equal(t, domain.ArchiveZIP, a.Assembler.Options.Archive)
	assert.Equal(t, domain.CompressionNone, a.Assembler.Options.Compression)
	assert.Empty(t, a.Assembler.Options.Checksums)
	assert.Equal(t, "http://purl.org/net/sword/package/SimpleZip", a.Assembler.Spec)
	assert.Equal(t, 2*time.Minute, a.Transport.Timeout)
	assert.Equal(t, "depositor", a.Transport.OnBehalfOf)
	assert.Equal(t, "strict", a.Transport.Headers["x-packaging-profile"])

	realm, ok := a.Transport.RealmFor(a.Transport.Endpoint)
	require.True(t, ok)
	assert.Equal(t, "alice", realm.Username)
	assert.Equal(t, "s3cret", realm.Password)

	b, err := reg.Get("repob")
	require.NoError(t, err)
	assert.Equal(t, "RepoB", b.Key)
	assert.Same(t, bindings[domain.ProtocolFTP], b.Binding)
	assert.Equal(t, domain.ArchiveTAR, b.Assembler.Options.Archive)
	assert.Equal(t, domain.CompressionGZIP, b.Assembler.Options.Compression)
	assert.Equal(t, []domain.ChecksumAlgorithm{domain.ChecksumSHA256}, b.Assembler.Options.Checksums)
	assert.Equal(t, domain.MetadataYAML, b.Assembler.Options.MetadataFormat)
	assert.Equal(t, domain.DefaultYAMLEntry, b.Assembler.Options.MetadataEntry)
	assert.Equal(t, int64(2<<30), b.Assembler.Options.MaxPackageSize)
	assert.Equal(t, "/incoming/ferry", b.Transport.RemoteDir)
	assert.True(t, b.Transport.CreateDirs)

	_, err = reg.Get("RepoC")
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestFromViper_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"assembler", `
repositories:
  RepoB:
    transport:
      protocol: ftp
      endpoint: ftp://ftp.example.org:21
    assembler:
      archve: tar
      compresion: gzip
`},
		{"transport", `
repositories:
  RepoA:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection
      endpiont: https://sword.example.org/other
`},
		{"document", `
repositories:
  RepoA:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection
    assembly:
      archive: zip
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := loadYAML(t, tt.cfg, testBindings(t))
			assert.Nil(t, reg)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestFromViper_CaseCollisionInFile(t *testing.T) {
	cfg := `
repositories:
  RepoA:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection
  repoa:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection
`
	_, err := loadYAML(t, cfg, testBindings(t))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestFromViper_WithoutConfigFileFoldsKeys(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
repositories:
  RepoA:
    transport:
      protocol: sword
      endpoint: https://sword.example.org/collection
`)))

	reg, err := FromViper(v, testBindings(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"repoa"}, reg.Keys())

	_, err = reg.Get("RepoA")
	assert.NoError(t, err)
}

func TestFromViper_NoRepositories(t *testing.T) {
	reg, err := loadYAML(t, "server:\n  listen: \":8470\"\n", testBindings(t))
	require.NoError(t, err)
	assert.Empty(t, reg.Keys())

	_, err = reg.Get("anything")
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}

func TestLoad_InvalidEntryAbortsWholeLoad(t *testing.T) {
	docs := map[string]Document{
		"good": {
			Transport: TransportDocument{Protocol: "sword", Endpoint: "https://repo.example.org/col"},
		},
		"zipgz": {
			Transport: TransportDocument{Protocol: "sword", Endpoint: "https://repo.example.org/col"},
			Assembler: AssemblerDocument{Archive: "zip", Compression: "gzip"},
		},
		"gopher": {
			Transport: TransportDocument{Protocol: "gopher", Endpoint: "gopher://x"},
		},
	}

	reg, err := Load(docs, testBindings(t))

	assert.Nil(t, reg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.ErrorIs(t, err, domain.ErrUnsupportedOptions)
	assert.ErrorIs(t, err, domain.ErrUnknownProtocol)
	assert.Contains(t, err.Error(), `"zipgz"`)
	assert.Contains(t, err.Error(), `"gopher"`)
}

func TestLoad_Validation(t *testing.T) {
	sword := func(mut func(*Document)) map[string]Document {
		doc := Document{Transport: TransportDocument{Protocol: "sword", Endpoint: "https://repo.example.org/col"}}
		mut(&doc)
		return map[string]Document{"repo": doc}
	}

	tests := []struct {
		name string
		docs map[string]Document
	}{
		{"missing endpoint", sword(func(d *Document) { d.Transport.Endpoint = "" })},
		{"relative endpoint", sword(func(d *Document) { d.Transport.Endpoint = "/collection" })},
		{"ftp scheme for sword", sword(func(d *Document) { d.Transport.Endpoint = "ftp://repo.example.org" })},
		{"bad service document", sword(func(d *Document) { d.Transport.ServiceDocument = "nohost" })},
		{"negative timeout", sword(func(d *Document) { d.Transport.Timeout = -time.Second })},
		{"realm without host", sword(func(d *Document) { d.Transport.Realms = []RealmDocument{{Username: "u"}} })},
		{"unknown checksum", sword(func(d *Document) { d.Assembler.Checksums = []string{"crc32"} })},
		{"template without body", sword(func(d *Document) { d.Assembler.Metadata.Format = "template" })},
		{"traversing prefix", sword(func(d *Document) { d.Assembler.PayloadPrefix = "../data" })},
		{"bad key", map[string]Document{"bad key": {Transport: TransportDocument{Protocol: "sword", Endpoint: "https://x.org/c"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.docs, testBindings(t))
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingBinding(t *testing.T) {
	docs := map[string]Document{
		"ftp-only": {Transport: TransportDocument{Protocol: "ftp", Endpoint: "ftp://ftp.example.org"}},
	}

	_, err := Load(docs, Bindings{domain.ProtocolSWORD: mocks.NewMockProtocolBinding(t)})
	assert.ErrorIs(t, err, domain.ErrUnknownProtocol)
}

func TestLoad_CaseCollision(t *testing.T) {
	doc := Document{Transport: TransportDocument{Protocol: "sword", Endpoint: "https://x.org/c"}}

	_, err := Load(map[string]Document{"Repo": doc, "repo": doc}, testBindings(t))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoad_TemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dc.xml.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`<dc>{{ xml .Metadata.title }}</dc>`), 0o600))

	docs := map[string]Document{
		"dc": {
			Transport: TransportDocument{Protocol: "sword", Endpoint: "https://x.org/c"},
			Assembler: AssemblerDocument{Metadata: MetadataDocument{Format: "template", TemplateFile: path}},
		},
	}

	reg, err := Load(docs, testBindings(t))
	require.NoError(t, err)

	repo, err := reg.Get("dc")
	require.NoError(t, err)
	assert.Equal(t, `<dc>{{ xml .Metadata.title }}</dc>`, repo.Assembler.Options.MetadataTemplate)
	assert.Equal(t, domain.DefaultTemplateEntry, repo.Assembler.Options.MetadataEntry)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode(map[string]any{
		"repo": map[string]any{
			"transport": map[string]any{"protocol": "sword", "endpoint": "https://x.org/c", "endpiont": "typo"},
		},
	})
	assert.Error(t, err)

	docs, err := Decode(map[string]any{
		"repo": map[string]any{
			"transport": map[string]any{"protocol": "sword", "endpoint": "https://x.org/c", "timeout": "90s"},
			"assembler": map[string]any{"checksums": "md5,sha256", "max_package_size": "10MB"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, docs["repo"].Transport.Timeout)
	assert.Equal(t, []string{"md5", "sha256"}, docs["repo"].Assembler.Checksums)
	assert.EqualValues(t, 10<<20, docs["repo"].Assembler.MaxPackageSize)
}
