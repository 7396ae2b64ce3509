package middleware

import (
	"net"
	"net/netip"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/frwrd/internal/handlers"
)

// RequestMeta is a middleware that adds client IP, host, user-agent and
// referrer to the request context.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			Host:      boundedHost(ctx.Host()),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// clientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the peer address. Header values that are not IPs are ignored.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := parseIP(first); ok {
			return ip
		}
	}

	if ip, ok := parseIP(ctx.Header("X-Real-IP")); ok {
		return ip
	}

	remote := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}

	if ip, ok := parseIP(remote); ok {
		return ip
	}

	return ""
}

// maxHostLength is the longest DNS name plus a port.
const maxHostLength = 253 + len(":65535")

// boundedHost drops Host headers no real name could produce.
func boundedHost(host string) string {
	if len(host) > maxHostLength {
		return ""
	}

	return host
}

// parseIP normalizes s to a plain address. Zones are dropped so the stored
// value is bounded.
func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}

	return addr.Unmap().WithZone("").String(), true
}
