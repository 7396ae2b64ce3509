package cache

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

// Fetch loads a value from the system of record.
type Fetch func(ctx context.Context) (string, error)

// FetchID loads a row id from the system of record.
type FetchID func(ctx context.Context) (int64, error)

// ReadThrough consults a Store before falling back to a Fetch and remembers
// what the fetch returned. Errors and empty values are never cached, so a
// key that keeps missing keeps hitting the system of record.
type ReadThrough struct {
	store  Store
	logger *zap.Logger
}

// NewReadThrough creates a read-through cache over store.
func NewReadThrough(store Store, logger *zap.Logger) *ReadThrough {
	return &ReadThrough{store: store, logger: logger}
}

// Resolve returns the value cached under key, or the result of fetch.
// A failing cache read is treated as a miss.
func (r *ReadThrough) Resolve(ctx context.Context, key string, fetch Fetch) (string, error) {
	value, err := r.store.Get(ctx, key)

	switch {
	case err == nil && value != "":
		return value, nil
	case err != nil && !errors.Is(err, ErrMiss):
		r.logger.Warn("cache read failed, falling back to store",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	value, err = fetch(ctx)
	if err != nil {
		return "", err
	}

	if value == "" {
		return "", nil
	}

	r.Remember(ctx, key, value)

	return value, nil
}

// ResolveID is Resolve for integer row ids. Zero ids are not cached, and a
// cached value that is not a positive id is treated as a miss and replaced.
func (r *ReadThrough) ResolveID(ctx context.Context, key string, fetch FetchID) (int64, error) {
	value, err := r.store.Get(ctx, key)

	switch {
	case err == nil:
		id, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr == nil && id > 0 {
			return id, nil
		}

		r.logger.Warn("discarding corrupt cached id", zap.String("key", key), zap.String("value", value))
	case !errors.Is(err, ErrMiss):
		r.logger.Warn("cache read failed, falling back to store",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	id, err := fetch(ctx)
	if err != nil || id == 0 {
		return 0, err
	}

	r.Remember(ctx, key, strconv.FormatInt(id, 10))

	return id, nil
}

// Remember writes key unconditionally. Failures are logged, not returned:
// the system of record stays authoritative.
func (r *ReadThrough) Remember(ctx context.Context, key, value string) {
	if err := r.store.Set(ctx, key, value); err != nil {
		r.logger.Error("cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
