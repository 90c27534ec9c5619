package in

import (
	"github.com/bnema/ferry/internal/boundaries/out"
	"github.com/bnema/ferry/internal/domain"
)

// Repository pairs a repository's configuration with the protocol binding
// resolved for it at load time.
type Repository struct {
	domain.RepositoryConfig
	Binding out.ProtocolBinding
}

// RepositoryRegistry defines the contract for resolving repository configuration.
type RepositoryRegistry interface {
	// Get returns domain.ErrRepositoryNotFound for unknown keys.
	Get(key string) (*Repository, error)
	// Keys returns every repository key, sorted.
	Keys() []string
}
