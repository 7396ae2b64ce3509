package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/serroba/frwrd/internal/shortener"
)

// DefaultDimensionID is the seeded "unknown" row in each dimension table.
const DefaultDimensionID int64 = 1

// MemoryStore is an in-memory implementation of the shortener repositories.
// It mirrors the relational schema, including the uniqueness constraints
// and the seeded "unknown" dimension rows.
type MemoryStore struct {
	mu         sync.RWMutex
	urls       []shortener.ShortURL
	byCode     map[shortener.Code]int
	byURL      map[string]int
	dimensions map[shortener.Dimension]map[string]int64
	clicks     []shortener.ClickEvent
	now        func() time.Time
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		byCode:     make(map[shortener.Code]int),
		byURL:      make(map[string]int),
		dimensions: make(map[shortener.Dimension]map[string]int64),
		now:        time.Now,
	}

	for _, dim := range shortener.Dimensions() {
		m.dimensions[dim] = map[string]int64{"unknown": DefaultDimensionID}
	}

	return m
}

func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byCode[shortURL.Code]; ok {
		return shortener.ErrCodeConflict
	}

	if _, ok := m.byURL[shortURL.OriginalURL]; ok {
		return shortener.ErrDuplicateURL
	}

	shortURL.ID = int64(len(m.urls) + 1)
	shortURL.CreatedAt = m.now()

	m.urls = append(m.urls, *shortURL)
	m.byCode[shortURL.Code] = len(m.urls) - 1
	m.byURL[shortURL.OriginalURL] = len(m.urls) - 1

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url := m.urls[idx]

	return &url, nil
}

func (m *MemoryStore) GetByOriginalURL(_ context.Context, originalURL string) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byURL[originalURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url := m.urls[idx]

	return &url, nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.urls)), nil
}

// Latest returns newest first. Insertion order breaks created_at ties.
func (m *MemoryStore) Latest(_ context.Context, limit int) ([]shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := slices.Clone(m.urls)
	slices.Reverse(latest)
	slices.SortStableFunc(latest, func(a, b shortener.ShortURL) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if limit < len(latest) {
		latest = latest[:max(limit, 0)]
	}

	return latest, nil
}

func (m *MemoryStore) URLIDByCode(_ context.Context, code shortener.Code) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byCode[code]
	if !ok {
		return 0, shortener.ErrNotFound
	}

	return m.urls[idx].ID, nil
}

func (m *MemoryStore) GetOrInsertDimension(_ context.Context, dim shortener.Dimension, value string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.dimensions[dim]
	if !ok {
		return 0, fmt.Errorf("unknown dimension %s.%s", dim.Table, dim.Column)
	}

	if id, ok := rows[value]; ok {
		return id, nil
	}

	var next int64
	for _, id := range rows {
		next = max(next, id)
	}

	next++
	rows[value] = next

	return next, nil
}

func (m *MemoryStore) InsertClick(_ context.Context, click shortener.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if click.ClickedAt.IsZero() {
		click.ClickedAt = m.now()
	}

	m.clicks = append(m.clicks, click)

	return nil
}

// Session runs fn against the store itself.
func (m *MemoryStore) Session(_ context.Context, fn func(shortener.ClickRepository) error) error {
	return fn(m)
}

// Clicks returns a copy of every recorded click.
func (m *MemoryStore) Clicks() []shortener.ClickEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.clicks)
}

// DimensionValues returns value -> id for dim.
func (m *MemoryStore) DimensionValues(dim shortener.Dimension) map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make(map[string]int64, len(m.dimensions[dim]))
	for k, v := range m.dimensions[dim] {
		values[k] = v
	}

	return values
}

// SetClock overrides the clock used for created_at and clicked_at.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}

// Compile-time checks.
var (
	_ shortener.Repository      = (*MemoryStore)(nil)
	_ shortener.StatsRepository = (*MemoryStore)(nil)
	_ shortener.ClickRepository = (*MemoryStore)(nil)
	_ shortener.ClickSessions   = (*MemoryStore)(nil)
)
