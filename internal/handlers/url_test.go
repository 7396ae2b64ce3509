package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/frwrd/internal/analytics"
	"github.com/serroba/frwrd/internal/cache"
	"github.com/serroba/frwrd/internal/handlers"
	"github.com/serroba/frwrd/internal/messaging"
	"github.com/serroba/frwrd/internal/middleware"
	"github.com/serroba/frwrd/internal/shortener"
	"github.com/serroba/frwrd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const baseURL = "http://localhost:8888"

type fixture struct {
	router   *chi.Mux
	store    *store.MemoryStore
	created  []analytics.URLCreatedEvent
	accessed []analytics.URLAccessedEvent
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	publishErr error
	recordErr  error
}

func withPublishError(err error) fixtureOption {
	return func(c *fixtureConfig) { c.publishErr = err }
}

func withRecordError(err error) fixtureOption {
	return func(c *fixtureConfig) { c.recordErr = err }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &fixture{store: store.NewMemoryStore()}
	readThrough := cache.NewReadThrough(cache.NewMemoryStore(), zap.NewNop())
	svc := shortener.NewService(f.store, readThrough, nil,
		shortener.NewCodeGenerator(shortener.DefaultCodeLength), baseURL, 1, zap.NewNop())
	redirector := shortener.NewRedirector(shortener.NewCachedResolver(f.store, readThrough))

	publishCreated := func(_ context.Context, event *analytics.URLCreatedEvent) error {
		f.created = append(f.created, *event)

		return cfg.publishErr
	}
	recordAccess := func(_ context.Context, event *analytics.URLAccessedEvent) error {
		f.accessed = append(f.accessed, *event)

		return cfg.recordErr
	}

	f.router = chi.NewMux()
	f.router.MethodNotAllowed(handlers.MethodNotAllowed)
	f.router.NotFound(handlers.NotFound)

	api := humachi.New(f.router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	handlers.RegisterRoutes(api,
		handlers.NewURLHandler(svc, redirector,
			messaging.Publish[analytics.URLCreatedEvent](publishCreated),
			messaging.Publish[analytics.URLAccessedEvent](recordAccess),
			zap.NewNop()),
		handlers.NewStatsHandler(f.store, zap.NewNop()),
	)

	return f
}

func (f *fixture) do(t *testing.T, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func (f *fixture) shortenJSON(t *testing.T, longURL string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"url": longURL})
	require.NoError(t, err)

	return f.do(t, http.MethodPost, "/api/shorten", "application/json", bytes.NewReader(payload))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return body
}

func shortID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	shortURL, ok := decode(t, w)["shortUrl"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(shortURL, baseURL+"/"))

	return strings.TrimPrefix(shortURL, baseURL+"/")
}

func TestURLHandler_CreateShortURL(t *testing.T) {
	t.Run("accepts json", func(t *testing.T) {
		f := newFixture(t)

		w := f.shortenJSON(t, "https://example.com/a")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		code := shortID(t, w)
		assert.Len(t, code, shortener.DefaultCodeLength)

		require.Len(t, f.created, 1)
		assert.Equal(t, code, f.created[0].Code)
		assert.Equal(t, int64(1), f.created[0].UserID)
	})

	t.Run("accepts url-encoded forms with a user id", func(t *testing.T) {
		f := newFixture(t)
		form := url.Values{"url": {"https://example.com/form"}, "userId": {"42"}}

		w := f.do(t, http.MethodPost, "/api/shorten", "application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		mapping, err := f.store.GetByOriginalURL(context.Background(), "https://example.com/form")
		require.NoError(t, err)
		assert.Equal(t, int64(42), mapping.UserID)
	})

	t.Run("accepts multipart forms", func(t *testing.T) {
		f := newFixture(t)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("url", "https://example.com/multi"))
		require.NoError(t, mw.Close())

		w := f.do(t, http.MethodPost, "/api/shorten", mw.FormDataContentType(), &buf)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		shortID(t, w)
	})

	t.Run("is idempotent", func(t *testing.T) {
		f := newFixture(t)

		first := shortID(t, f.shortenJSON(t, "https://example.com/a"))
		second := shortID(t, f.shortenJSON(t, "https://example.com/a"))

		assert.Equal(t, first, second)
		assert.Len(t, f.created, 1)
	})

	t.Run("rejects invalid urls", func(t *testing.T) {
		f := newFixture(t)

		w := f.shortenJSON(t, "not a url")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid URL", decode(t, w)["error"])
	})

	t.Run("rejects a missing url", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/shorten", "application/x-www-form-urlencoded", strings.NewReader("userId=1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid URL", decode(t, w)["error"])
	})

	t.Run("rejects a bad user id", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/shorten", "application/x-www-form-urlencoded",
			strings.NewReader("url=https%3A%2F%2Fexample.com&userId=abc"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/shorten", "application/json", strings.NewReader("{"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid form data", decode(t, w)["error"])
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodPost, "/api/shorten", "text/plain", strings.NewReader("https://example.com"))

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Equal(t, "Unsupported content type", decode(t, w)["error"])
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		f := newFixture(t, withPublishError(errors.New("stream down")))

		w := f.shortenJSON(t, "https://example.com/a")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodGet, "/api/shorten", "", nil)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
	})
}

func TestURLHandler_RedirectToURL(t *testing.T) {
	t.Run("redirects permanently and records the click", func(t *testing.T) {
		f := newFixture(t)
		code := shortID(t, f.shortenJSON(t, "https://example.com/a"))

		req := httptest.NewRequest(http.MethodGet, "http://sho.rt/"+code, nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4")

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))

		require.Len(t, f.accessed, 1)
		assert.Equal(t, code, f.accessed[0].Code)
		assert.Equal(t, "1.2.3.4", f.accessed[0].ClientIP)
		assert.Equal(t, "sho.rt", f.accessed[0].Host)
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodGet, "/doesnotexist", "", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL not found", decode(t, w)["error"])
		assert.Empty(t, f.accessed)
	})

	t.Run("malformed code is 400", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodGet, "/favicon.ico", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid shortId", decode(t, w)["error"])
	})

	t.Run("click failure still redirects", func(t *testing.T) {
		f := newFixture(t, withRecordError(errors.New("dimension insert failed")))
		code := shortID(t, f.shortenJSON(t, "https://example.com/a"))

		w := f.do(t, http.MethodGet, "/"+code, "", nil)

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))
	})

	t.Run("unrouted paths get a json 404", func(t *testing.T) {
		f := newFixture(t)

		for _, path := range []string{"/", "/a/b/c"} {
			w := f.do(t, http.MethodGet, path, "", nil)

			assert.Equal(t, http.StatusNotFound, w.Code, path)
			assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String(), path)
		}
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(t, http.MethodDelete, "/abc123", "", nil)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
