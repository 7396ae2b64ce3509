package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the shortener API.
func RegisterRoutes(api huma.API, urlHandler *URLHandler, statsHandler *StatsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-short-url",
		Method:      http.MethodPost,
		Path:        "/api/shorten",
		Summary:     "Create short URL",
		Description: "Shortens a URL given as JSON, url-encoded or multipart form data. " +
			"Shortening the same URL again returns the existing short URL.",
		Tags: []string{"URLs"},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "count-urls",
		Method:      http.MethodGet,
		Path:        "/api/count",
		Summary:     "Count short URLs",
		Tags:        []string{"Stats"},
	}, statsHandler.Count)

	huma.Register(api, huma.Operation{
		OperationID: "latest-urls",
		Method:      http.MethodGet,
		Path:        "/api/latest",
		Summary:     "List latest short URLs",
		Tags:        []string{"Stats"},
	}, statsHandler.Latest)

	huma.Register(api, huma.Operation{
		OperationID: "version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Build metadata",
		Tags:        []string{"Meta"},
	}, Version)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{shortId}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.RedirectToURL)
}
