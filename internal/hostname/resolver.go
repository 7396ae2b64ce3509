// Package hostname resolves client addresses to names for click analytics.
package hostname

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unknown is returned whenever a name cannot be resolved.
const Unknown = "unknown"

// DefaultTimeout bounds a single reverse lookup.
const DefaultTimeout = 3 * time.Second

// LookupFunc performs a reverse lookup. net.DefaultResolver.LookupAddr fits.
type LookupFunc func(ctx context.Context, addr string) ([]string, error)

// Resolver performs bounded reverse DNS lookups.
type Resolver struct {
	lookup  LookupFunc
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver creates a resolver using the system resolver.
func NewResolver(timeout time.Duration, logger *zap.Logger) *Resolver {
	return NewResolverWithLookup(net.DefaultResolver.LookupAddr, timeout, logger)
}

// NewResolverWithLookup creates a resolver with a custom lookup.
func NewResolverWithLookup(lookup LookupFunc, timeout time.Duration, logger *zap.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Resolver{lookup: lookup, timeout: timeout, logger: logger}
}

// Resolve returns the first PTR name for ip, or Unknown. It never fails.
func (r *Resolver) Resolve(ctx context.Context, ip string) string {
	if _, err := netip.ParseAddr(ip); err != nil {
		return Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.lookup(ctx, ip)
	if err != nil {
		r.logger.Debug("reverse lookup failed", zap.String("ip", ip), zap.Error(err))

		return Unknown
	}

	for _, name := range names {
		if name = strings.TrimSuffix(name, "."); name != "" {
			return name
		}
	}

	return Unknown
}

// IsIPLiteral reports whether s is an IPv4 or IPv6 address, with or
// without a port, as found in a Host header.
func IsIPLiteral(s string) bool {
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}

	_, err := netip.ParseAddrPort(s)

	return err == nil
}
