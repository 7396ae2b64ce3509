// Package clicks records redirect traversals against the dimension tables.
package clicks

import (
	"context"
	"fmt"
	"time"

	"github.com/serroba/frwrd/internal/cache"
	"github.com/serroba/frwrd/internal/hostname"
	"github.com/serroba/frwrd/internal/shortener"
	"go.uber.org/zap"
)

// Config is read once at startup and never changes.
type Config struct {
	TrackClicks        bool
	ResolveHostname    bool
	DefaultIPAddressID int64
	DefaultHostnameID  int64
}

// HostnameResolver maps an IP to a name, returning a sentinel on failure.
type HostnameResolver interface {
	Resolve(ctx context.Context, ip string) string
}

// Logger appends click rows. Every id lookup goes through the read-through
// cache, so a warm cache leaves a single INSERT per click.
type Logger struct {
	cfg       Config
	sessions  shortener.ClickSessions
	cache     *cache.ReadThrough
	hostnames HostnameResolver
	now       func() time.Time
	logger    *zap.Logger
}

// NewLogger creates a click logger. hostnames may be nil when
// cfg.ResolveHostname is false.
func NewLogger(
	cfg Config,
	sessions shortener.ClickSessions,
	readThrough *cache.ReadThrough,
	hostnames HostnameResolver,
	logger *zap.Logger,
) *Logger {
	return &Logger{
		cfg:       cfg,
		sessions:  sessions,
		cache:     readThrough,
		hostnames: hostnames,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock returns a copy of l stamping clicks with now.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	clone := *l
	clone.now = now

	return &clone
}

// Enabled reports whether clicks are recorded at all.
func (l *Logger) Enabled() bool {
	return l.cfg.TrackClicks
}

// Log records one click on code. It is a no-op when tracking is disabled.
// An unknown code fails with shortener.ErrNotFound before anything is written.
func (l *Logger) Log(ctx context.Context, code shortener.Code, ip, host string) error {
	if !l.cfg.TrackClicks {
		return nil
	}

	// Resolve before taking a connection so slow DNS never holds one.
	if l.cfg.ResolveHostname && l.hostnames != nil && (host == "" || hostname.IsIPLiteral(host)) {
		host = l.hostnames.Resolve(ctx, ip)
	}

	return l.sessions.Session(ctx, func(repo shortener.ClickRepository) error {
		urlID, err := l.cache.ResolveID(ctx, shortener.URLIDKey(code), func(ctx context.Context) (int64, error) {
			return repo.URLIDByCode(ctx, code)
		})
		if err != nil {
			return fmt.Errorf("resolve url id for %s: %w", code, err)
		}

		ipID, err := l.dimensionID(ctx, repo, shortener.DimensionIPAddress, ip, l.cfg.DefaultIPAddressID)
		if err != nil {
			return err
		}

		hostID, err := l.dimensionID(ctx, repo, shortener.DimensionHostname, host, l.cfg.DefaultHostnameID)
		if err != nil {
			return err
		}

		click := shortener.ClickEvent{
			URLID:       urlID,
			IPAddressID: ipID,
			HostnameID:  hostID,
			ClickedAt:   l.now(),
		}

		if err := repo.InsertClick(ctx, click); err != nil {
			return fmt.Errorf("insert click for %s: %w", code, err)
		}

		l.logger.Debug("click recorded",
			zap.String("code", string(code)),
			zap.Int64("ip_address_id", ipID),
			zap.Int64("hostname_id", hostID),
		)

		return nil
	})
}

func (l *Logger) dimensionID(
	ctx context.Context,
	repo shortener.ClickRepository,
	dim shortener.Dimension,
	value string,
	fallback int64,
) (int64, error) {
	if value == "" {
		return fallback, nil
	}

	id, err := l.cache.ResolveID(ctx, shortener.DimensionKey(dim, value), func(ctx context.Context) (int64, error) {
		return repo.GetOrInsertDimension(ctx, dim, value)
	})
	if err != nil {
		return 0, fmt.Errorf("resolve %s id: %w", dim.Table, err)
	}

	return id, nil
}
