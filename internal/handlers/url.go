package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/serroba/frwrd/internal/analytics"
	"github.com/serroba/frwrd/internal/messaging"
	"github.com/serroba/frwrd/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles shortening and redirects.
type URLHandler struct {
	shortener         *shortener.Service
	redirector        *shortener.Redirector
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent]
	recordAccess      messaging.Publish[analytics.URLAccessedEvent]
	logger            *zap.Logger
}

// NewURLHandler creates a URL handler. recordAccess either logs the click
// inline or publishes it for the consumer.
func NewURLHandler(
	svc *shortener.Service,
	redirector *shortener.Redirector,
	publishURLCreated messaging.Publish[analytics.URLCreatedEvent],
	recordAccess messaging.Publish[analytics.URLAccessedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		shortener:         svc,
		redirector:        redirector,
		publishURLCreated: publishURLCreated,
		recordAccess:      recordAccess,
		logger:            logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	fields, err := decodeShortenBody(req.ContentType, req.RawBody)
	if err != nil {
		if errors.Is(err, errUnsupportedType) {
			return nil, NewError(http.StatusUnsupportedMediaType, msgUnsupportedType)
		}

		return nil, NewError(http.StatusBadRequest, msgInvalidForm)
	}

	userID, err := parseUserID(fields.UserID)
	if err != nil {
		return nil, NewError(http.StatusBadRequest, msgInvalidUserID)
	}

	res, err := h.shortener.Shorten(ctx, fields.URL, userID)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, NewError(http.StatusBadRequest, msgInvalidURL)
		}

		h.logger.Error("failed to shorten url", zap.String("url", fields.URL), zap.Error(err))

		return nil, NewError(http.StatusInternalServerError, msgInternalError)
	}

	if res.Created {
		meta := RequestMetaFromContext(ctx)
		event := &analytics.URLCreatedEvent{
			Code:        string(res.Code),
			OriginalURL: res.Mapping.OriginalURL,
			UserID:      res.Mapping.UserID,
			CreatedAt:   res.Mapping.CreatedAt,
			ClientIP:    meta.ClientIP,
			UserAgent:   meta.UserAgent,
		}

		if err := h.publishURLCreated(ctx, event); err != nil {
			h.logger.Error("failed to publish analytics event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	}

	resp := &CreateShortURLResponse{}
	resp.Body.ShortURL = res.ShortURL

	return resp, nil
}

// RedirectToURL answers 301 to the original URL. Click logging failures are
// logged and never change the response.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	code, originalURL, err := h.redirector.Redirect(ctx, req.ShortID)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidCode):
			return nil, NewError(http.StatusBadRequest, msgInvalidShortID)
		case errors.Is(err, shortener.ErrNotFound):
			return nil, NewError(http.StatusNotFound, msgNotFound)
		}

		h.logger.Error("failed to resolve short url", zap.String("code", req.ShortID), zap.Error(err))

		return nil, NewError(http.StatusInternalServerError, msgInternalError)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.URLAccessedEvent{
		Code:       string(code),
		AccessedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		Host:       meta.Host,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.recordAccess(ctx, event); err != nil {
		h.logger.Error("failed to record click",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: originalURL,
	}, nil
}
