package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/serroba/frwrd/internal/shortener"
	"github.com/serroba/frwrd/internal/version"
	"go.uber.org/zap"
)

const (
	defaultLatestCount = 10
	maxLatestCount     = 1000
)

// StatsHandler serves the read-only listing endpoints.
type StatsHandler struct {
	stats  shortener.StatsRepository
	logger *zap.Logger
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(stats shortener.StatsRepository, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func (h *StatsHandler) Count(ctx context.Context, _ *struct{}) (*CountResponse, error) {
	start := time.Now()

	count, err := h.stats.Count(ctx)
	if err != nil {
		h.logger.Error("failed to count urls", zap.Error(err))

		return nil, NewError(http.StatusInternalServerError, msgInternalError)
	}

	resp := &CountResponse{}
	resp.Body.Count = count
	resp.Body.Runtime = runtime(start)

	return resp, nil
}

// Latest lists the newest mappings. A missing or unparsable count means 10.
func (h *StatsHandler) Latest(ctx context.Context, req *LatestRequest) (*LatestResponse, error) {
	start := time.Now()

	count, err := strconv.Atoi(req.Count)
	if err != nil || count <= 0 {
		count = defaultLatestCount
	}

	count = min(count, maxLatestCount)

	urls, err := h.stats.Latest(ctx, count)
	if err != nil {
		h.logger.Error("failed to list latest urls", zap.Int("count", count), zap.Error(err))

		return nil, NewError(http.StatusInternalServerError, msgInternalError)
	}

	resp := &LatestResponse{}
	resp.Body.Latest = make([]LatestEntry, 0, len(urls))

	for _, url := range urls {
		resp.Body.Latest = append(resp.Body.Latest, LatestEntry{
			ShortID:   string(url.Code),
			LongURL:   url.OriginalURL,
			CreatedAt: url.CreatedAt,
		})
	}

	resp.Body.Runtime = runtime(start)

	return resp, nil
}

func Version(_ context.Context, _ *struct{}) (*VersionResponse, error) {
	start := time.Now()
	info := version.Current()

	resp := &VersionResponse{}
	resp.Body.Name = info.Name
	resp.Body.Version = info.Version
	resp.Body.Description = info.Description
	resp.Body.Author = info.Author
	resp.Body.Homepage = info.Homepage
	resp.Body.Commit = info.Commit
	resp.Body.GoVersion = info.GoVersion
	resp.Body.Runtime = runtime(start)

	return resp, nil
}

func runtime(start time.Time) string {
	return fmt.Sprintf("%.2fms", float64(time.Since(start).Microseconds())/1000)
}
