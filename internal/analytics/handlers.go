package analytics

import (
	"context"
	"errors"

	"github.com/serroba/frwrd/internal/messaging"
	"github.com/serroba/frwrd/internal/shortener"
	"go.uber.org/zap"
)

// ClickLogger is satisfied by *clicks.Logger.
type ClickLogger interface {
	Log(ctx context.Context, code shortener.Code, ip, host string) error
}

// RecordInline logs the click in the request path. It has the shape of a
// publish func so the redirect handler does not care which mode is active.
func RecordInline(clicks ClickLogger) messaging.Publish[URLAccessedEvent] {
	return func(ctx context.Context, event *URLAccessedEvent) error {
		return clicks.Log(ctx, shortener.Code(event.Code), event.ClientIP, event.Host)
	}
}

// HandleURLAccessed logs clicks delivered through the stream. Clicks on
// unknown codes or with values the store refuses are dropped instead of
// redelivered forever.
func HandleURLAccessed(clicks ClickLogger) messaging.Handler[URLAccessedEvent] {
	return func(ctx context.Context, event *URLAccessedEvent) error {
		err := clicks.Log(ctx, shortener.Code(event.Code), event.ClientIP, event.Host)
		if errors.Is(err, shortener.ErrNotFound) || errors.Is(err, shortener.ErrRejected) {
			return messaging.Permanent(err)
		}

		return err
	}
}

// HandleURLCreated writes an audit log line per new mapping.
func HandleURLCreated(logger *zap.Logger) messaging.Handler[URLCreatedEvent] {
	return func(_ context.Context, event *URLCreatedEvent) error {
		logger.Info("url created",
			zap.String("code", event.Code),
			zap.String("originalUrl", event.OriginalURL),
			zap.Int64("userId", event.UserID),
			zap.Time("createdAt", event.CreatedAt),
			zap.String("clientIp", event.ClientIP),
		)

		return nil
	}
}
