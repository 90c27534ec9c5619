package registry

import (
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/bnema/ferry/pkg/bytesize"
	"github.com/bnema/ferry/pkg/duration"
)

// Document is the configuration entry of one repository as found under
// repositories.<key>.
type Document struct {
	Transport TransportDocument `mapstructure:"transport"`
	Assembler AssemblerDocument `mapstructure:"assembler"`
}

// TransportDocument configures the protocol binding of a repository.
type TransportDocument struct {
	Protocol        string            `mapstructure:"protocol"`
	Endpoint        string            `mapstructure:"endpoint"`
	ServiceDocument string            `mapstructure:"service_document"`
	RemoteDir       string            `mapstructure:"remote_dir"`
	CreateDirs      bool              `mapstructure:"create_dirs"`
	Realms          []RealmDocument   `mapstructure:"realms"`
	Headers         map[string]string `mapstructure:"headers"`
	OnBehalfOf      string            `mapstructure:"on_behalf_of"`
	Timeout         time.Duration     `mapstructure:"timeout"`
}

// RealmDocument holds credentials for one host. Username and password may
// reference environment variables as ${NAME}.
type RealmDocument struct {
	Host     string `mapstructure:"host"`
	Realm    string `mapstructure:"realm"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AssemblerDocument configures how packages for a repository are built.
type AssemblerDocument struct {
	Spec           string           `mapstructure:"spec"`
	Archive        string           `mapstructure:"archive"`
	Compression    string           `mapstructure:"compression"`
	Checksums      []string         `mapstructure:"checksums"`
	Metadata       MetadataDocument `mapstructure:"metadata"`
	ManifestEntry  string           `mapstructure:"manifest_entry"`
	PayloadPrefix  string           `mapstructure:"payload_prefix"`
	MaxPackageSize bytesize.Size    `mapstructure:"max_package_size"`
}

// MetadataDocument selects the metadata serializer.
type MetadataDocument struct {
	Format       string `mapstructure:"format"`
	Template     string `mapstructure:"template"`
	TemplateFile string `mapstructure:"template_file"`
	Entry        string `mapstructure:"entry"`
}

// DecodeHook is the mapstructure hook used to decode repository documents.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		duration.DecodeHook(),
		bytesize.DecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// Decode converts a raw repositories map (as produced by a YAML or JSON
// decoder) into documents.
func Decode(raw map[string]any) (map[string]Document, error) {
	docs := make(map[string]Document, len(raw))
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       DecodeHook(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &docs,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return docs, nil
}
