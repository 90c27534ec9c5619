// Package registry implements the repository configuration registry: the
// immutable set of target repositories with their bound protocol bindings.
package registry

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bnema/ferry/internal/boundaries/in"
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
	"github.com/bnema/ferry/pkg/validation"
)

// Bindings maps each supported protocol to its binding.
type Bindings map[domain.Protocol]out.ProtocolBinding

// Service implements the RepositoryRegistry interface. It is never mutated
// after construction.
type Service struct {
	repos map[string]*in.Repository
	keys  []string
}

// FromViper loads the registry from the "repositories" section of v. Unknown
// fields abort the load. Viper folds keys to lower case, so repository names
// are restored from the YAML or JSON config file when one was read.
func FromViper(v *viper.Viper, bindings Bindings) (*Service, error) {
	sub := v.Sub("repositories")
	if sub == nil {
		return Load(nil, bindings)
	}

	docs, err := Decode(sub.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("%w: repositories: %w", domain.ErrInvalidConfig, err)
	}

	names, err := repositoryNames(v.ConfigFileUsed())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return Load(restoreKeyCase(docs, names), bindings)
}

// repositoryNames maps each folded repository key to the name written in
// the config file. Formats other than YAML and JSON yield no names.
func repositoryNames(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		section := root.Content[i+1]
		if normalizeKey(root.Content[i].Value) != "repositories" || section.Kind != yaml.MappingNode {
			continue
		}

		names := make(map[string]string, len(section.Content)/2)
		for j := 0; j+1 < len(section.Content); j += 2 {
			name := section.Content[j].Value
			if prev, dup := names[normalizeKey(name)]; dup && prev != name {
				return nil, fmt.Errorf("repository %q: key differs from %q only by case", name, prev)
			}
			names[normalizeKey(name)] = name
		}
		return names, nil
	}
	return nil, nil
}

func restoreKeyCase(docs map[string]Document, names map[string]string) map[string]Document {
	if len(names) == 0 {
		return docs
	}
	out := make(map[string]Document, len(docs))
	for key, doc := range docs {
		if name, ok := names[key]; ok {
			key = name
		}
		out[key] = doc
	}
	return out
}

// Load validates every document and builds the registry. Any invalid entry
// aborts the whole load; all problems are reported together.
func Load(docs map[string]Document, bindings Bindings) (*Service, error) {
	s := &Service{repos: make(map[string]*in.Repository, len(docs))}

	var errs []error
	for key, doc := range docs {
		repo, err := buildRepository(key, doc, bindings)
		if err != nil {
			errs = append(errs, fmt.Errorf("repository %q: %w", key, err))
			continue
		}
		if _, dup := s.repos[normalizeKey(key)]; dup {
			errs = append(errs, fmt.Errorf("repository %q: key differs from another only by case", key))
			continue
		}
		s.repos[normalizeKey(key)] = repo
		s.keys = append(s.keys, repo.Key)
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}

	sort.Strings(s.keys)
	return s, nil
}

// Get returns the repository registered under key. Keys are case-insensitive.
func (s *Service) Get(key string) (*in.Repository, error) {
	repo, ok := s.repos[normalizeKey(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, key)
	}
	return repo, nil
}

// Keys returns every registered key in sorted order.
func (s *Service) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

func buildRepository(key string, doc Document, bindings Bindings) (*in.Repository, error) {
	if err := validation.ValidateRepositoryKey(key); err != nil {
		return nil, err
	}

	transport, err := buildTransport(doc.Transport)
	if err != nil {
		return nil, err
	}

	binding, ok := bindings[transport.Protocol]
	if !ok || binding == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProtocol, doc.Transport.Protocol)
	}

	assembler, err := buildAssembler(doc.Assembler)
	if err != nil {
		return nil, err
	}

	return &in.Repository{
		RepositoryConfig: domain.RepositoryConfig{
			Key:       key,
			Transport: transport,
			Assembler: assembler,
		},
		Binding: binding,
	}, nil
}

func buildTransport(doc TransportDocument) (domain.TransportConfig, error) {
	cfg := domain.TransportConfig{
		Protocol:        domain.Protocol(strings.ToLower(strings.TrimSpace(doc.Protocol))),
		Endpoint:        strings.TrimSpace(doc.Endpoint),
		ServiceDocument: strings.TrimSpace(doc.ServiceDocument),
		RemoteDir:       doc.RemoteDir,
		CreateDirs:      doc.CreateDirs,
		Headers:         doc.Headers,
		OnBehalfOf:      doc.OnBehalfOf,
		Timeout:         doc.Timeout,
	}

	var schemes []string
	switch cfg.Protocol {
	case domain.ProtocolSWORD:
		schemes = []string{"http", "https"}
	case domain.ProtocolFTP:
		schemes = []string{"ftp"}
	default:
		return cfg, fmt.Errorf("%w: %q", domain.ErrUnknownProtocol, doc.Protocol)
	}

	if err := checkURL("endpoint", cfg.Endpoint, schemes); err != nil {
		return cfg, err
	}
	if cfg.ServiceDocument != "" {
		if err := checkURL("service_document", cfg.ServiceDocument, schemes); err != nil {
			return cfg, err
		}
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("timeout must not be negative")
	}

	for i, r := range doc.Realms {
		if strings.TrimSpace(r.Host) == "" {
			return cfg, fmt.Errorf("realm %d: host is required", i)
		}
		cfg.Realms = append(cfg.Realms, domain.AuthRealm{
			Host:     strings.TrimSpace(r.Host),
			Realm:    r.Realm,
			Username: os.ExpandEnv(r.Username),
			Password: os.ExpandEnv(r.Password),
		})
	}

	return cfg, nil
}

func checkURL(field, raw string, schemes []string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q has no host", field, raw)
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) {
			return nil
		}
	}
	return fmt.Errorf("%s %q: scheme must be one of %s", field, raw, strings.Join(schemes, ", "))
}

func buildAssembler(doc AssemblerDocument) (domain.AssemblerConfig, error) {
	tmpl := doc.Metadata.Template
	if doc.Metadata.TemplateFile != "" {
		if tmpl != "" {
			return domain.AssemblerConfig{}, fmt.Errorf("metadata template and template_file are mutually exclusive")
		}
		data, err := os.ReadFile(doc.Metadata.TemplateFile)
		if err != nil {
			return domain.AssemblerConfig{}, fmt.Errorf("metadata template_file: %w", err)
		}
		tmpl = string(data)
	}

	opts := domain.AssemblerOptions{
		Archive:          domain.ArchiveFormat(strings.ToLower(doc.Archive)),
		Compression:      domain.Compression(strings.ToLower(doc.Compression)),
		MetadataFormat:   domain.MetadataFormat(strings.ToLower(doc.Metadata.Format)),
		MetadataTemplate: tmpl,
		MetadataEntry:    doc.Metadata.Entry,
		ManifestEntry:    doc.ManifestEntry,
		PayloadPrefix:    doc.PayloadPrefix,
		MaxPackageSize:   int64(doc.MaxPackageSize),
	}
	for _, c := range doc.Checksums {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || c == "none" {
			continue
		}
		opts.Checksums = append(opts.Checksums, domain.ChecksumAlgorithm(c))
	}

	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return domain.AssemblerConfig{}, err
	}
	if opts.PayloadPrefix != "" {
		if _, err := validation.ValidateEntryName(opts.PayloadPrefix); err != nil {
			return domain.AssemblerConfig{}, fmt.Errorf("payload_prefix: %w", err)
		}
	}

	return domain.AssemblerConfig{Spec: doc.Spec, Options: opts}, nil
}
