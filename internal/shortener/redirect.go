package shortener

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/frwrd/internal/cache"
)

// Resolver maps a short code to its long URL.
type Resolver interface {
	Resolve(ctx context.Context, code Code) (string, error)
}

// CachedResolver reads through the cache into the relational store.
type CachedResolver struct {
	repo  Repository
	cache *cache.ReadThrough
}

// NewCachedResolver creates a resolver backed by repo.
func NewCachedResolver(repo Repository, readThrough *cache.ReadThrough) *CachedResolver {
	return &CachedResolver{repo: repo, cache: readThrough}
}

func (r *CachedResolver) Resolve(ctx context.Context, code Code) (string, error) {
	originalURL, err := r.cache.Resolve(ctx, URLKey(code), func(ctx context.Context) (string, error) {
		mapping, err := r.repo.GetByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}

		if err != nil {
			return "", fmt.Errorf("lookup by code: %w", err)
		}

		return mapping.OriginalURL, nil
	})
	if err != nil {
		return "", err
	}

	if originalURL == "" {
		return "", ErrNotFound
	}

	return originalURL, nil
}

// FastResolver serves redirects straight from the fast store.
type FastResolver struct {
	store FastStore
}

// NewFastResolver creates a resolver backed by the fast store only.
func NewFastResolver(store FastStore) *FastResolver {
	return &FastResolver{store: store}
}

func (r *FastResolver) Resolve(ctx context.Context, code Code) (string, error) {
	return r.store.Lookup(ctx, code)
}

// Redirector validates raw short codes before resolving them.
type Redirector struct {
	resolver Resolver
}

// NewRedirector creates a redirector over resolver.
func NewRedirector(resolver Resolver) *Redirector {
	return &Redirector{resolver: resolver}
}

// Redirect returns the long URL for rawCode, which may carry a leading "/".
// Returns ErrInvalidCode or ErrNotFound for bad or unknown codes.
func (r *Redirector) Redirect(ctx context.Context, rawCode string) (Code, string, error) {
	code, err := ParseCode(rawCode)
	if err != nil {
		return "", "", err
	}

	originalURL, err := r.resolver.Resolve(ctx, code)
	if err != nil {
		return code, "", err
	}

	return code, originalURL, nil
}

var (
	_ Resolver = (*CachedResolver)(nil)
	_ Resolver = (*FastResolver)(nil)
)
