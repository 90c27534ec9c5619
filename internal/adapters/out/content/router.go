package content

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/ferry/internal/boundaries/out"
)

var _ out.ContentSource = (*Router)(nil)

// Router dispatches locations to a source by URI scheme. Bare paths and
// file:// go to the filesystem source.
type Router struct {
	sources map[string]out.ContentSource
}

// NewRouter creates a router with fs serving file locations. fs may be nil.
func NewRouter(fs out.ContentSource) *Router {
	r := &Router{sources: make(map[string]out.ContentSource)}
	if fs != nil {
		r.sources["file"] = fs
	}
	return r
}

// Register serves scheme with src.
func (r *Router) Register(scheme string, src out.ContentSource) {
	r.sources[strings.ToLower(scheme)] = src
}

// Open resolves location through the source registered for its scheme.
func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	scheme := "file"
	if i := strings.Index(location, "://"); i > 0 {
		scheme = strings.ToLower(location[:i])
	}

	src, ok := r.sources[scheme]
	if !ok {
		return nil, 0, fmt.Errorf("no content source for scheme %q (location %s)", scheme, location)
	}
	return src.Open(ctx, location)
}
