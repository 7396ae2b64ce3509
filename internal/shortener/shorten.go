package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/serroba/frwrd/internal/cache"
	"go.uber.org/zap"
)

// FastStore is the optional key-value mirror redirects can be served from
// without touching the relational store.
type FastStore interface {
	Put(ctx context.Context, code Code, originalURL string) error
	Lookup(ctx context.Context, code Code) (string, error)
}

// Result is the outcome of a shorten call.
type Result struct {
	Code     Code
	ShortURL string
	Created  bool
	Mapping  *ShortURL
}

// Service issues short codes for long URLs, reusing an existing mapping
// when the long URL has been shortened before.
type Service struct {
	repo          Repository
	cache         *cache.ReadThrough
	fast          FastStore
	generateCode  CodeGenerator
	baseURL       string
	defaultUserID int64
	logger        *zap.Logger
}

// NewService creates a shorten service. fast may be nil.
func NewService(
	repo Repository,
	readThrough *cache.ReadThrough,
	fast FastStore,
	generateCode CodeGenerator,
	baseURL string,
	defaultUserID int64,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:          repo,
		cache:         readThrough,
		fast:          fast,
		generateCode:  generateCode,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		defaultUserID: defaultUserID,
		logger:        logger,
	}
}

// Shorten returns the short URL for originalURL. userID 0 means the
// configured default user.
func (s *Service) Shorten(ctx context.Context, originalURL string, userID int64) (*Result, error) {
	originalURL, err := ValidateURL(originalURL)
	if err != nil {
		return nil, err
	}

	existing, err := s.existingCode(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	if existing != "" {
		if err := s.mirror(ctx, existing, originalURL); err != nil {
			return nil, err
		}

		return &Result{Code: existing, ShortURL: s.ShortURL(existing)}, nil
	}

	if userID == 0 {
		userID = s.defaultUserID
	}

	mapping := &ShortURL{
		Code:        Code(s.generateCode()),
		OriginalURL: originalURL,
		UserID:      userID,
	}

	err = s.repo.Save(ctx, mapping)

	switch {
	case errors.Is(err, ErrDuplicateURL):
		// Lost the race to a concurrent shorten of the same URL.
		winner, err := s.repo.GetByOriginalURL(ctx, originalURL)
		if err != nil {
			return nil, fmt.Errorf("re-read after duplicate url: %w", err)
		}

		s.remember(ctx, winner)

		if err := s.mirror(ctx, winner.Code, winner.OriginalURL); err != nil {
			return nil, err
		}

		return &Result{Code: winner.Code, ShortURL: s.ShortURL(winner.Code), Mapping: winner}, nil
	case err != nil:
		return nil, fmt.Errorf("save mapping: %w", err)
	}

	s.remember(ctx, mapping)

	if err := s.mirror(ctx, mapping.Code, mapping.OriginalURL); err != nil {
		return nil, err
	}

	return &Result{
		Code:     mapping.Code,
		ShortURL: s.ShortURL(mapping.Code),
		Created:  true,
		Mapping:  mapping,
	}, nil
}

// ShortURL is the externally visible URL for code.
func (s *Service) ShortURL(code Code) string {
	return s.baseURL + "/" + string(code)
}

func (s *Service) existingCode(ctx context.Context, originalURL string) (Code, error) {
	code, err := s.cache.Resolve(ctx, LongURLKey(originalURL), func(ctx context.Context) (string, error) {
		mapping, err := s.repo.GetByOriginalURL(ctx, originalURL)
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}

		if err != nil {
			return "", fmt.Errorf("lookup by url: %w", err)
		}

		s.cache.Remember(ctx, URLKey(mapping.Code), mapping.OriginalURL)

		return string(mapping.Code), nil
	})

	return Code(code), err
}

// mirror writes the mapping to the fast store on every shorten, including
// reused mappings, so a failed earlier write is repaired by the next call.
// Redirects read only the fast store when it is configured, so a failed
// write fails the shorten.
func (s *Service) mirror(ctx context.Context, code Code, originalURL string) error {
	if s.fast == nil {
		return nil
	}

	if err := s.fast.Put(ctx, code, originalURL); err != nil {
		s.logger.Error("failed to write fast store", zap.String("code", string(code)), zap.Error(err))

		return fmt.Errorf("write fast store: %w", err)
	}

	return nil
}

func (s *Service) remember(ctx context.Context, mapping *ShortURL) {
	s.cache.Remember(ctx, URLKey(mapping.Code), mapping.OriginalURL)
	s.cache.Remember(ctx, LongURLKey(mapping.OriginalURL), string(mapping.Code))
}
