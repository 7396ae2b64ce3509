package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const (
	msgInvalidShortID   = "Invalid shortId"
	msgInvalidURL       = "Invalid URL"
	msgInvalidUserID    = "Invalid userId"
	msgInvalidForm      = "Invalid form data"
	msgUnsupportedType  = "Unsupported content type"
	msgNotFound         = "URL not found"
	msgRouteNotFound    = "Not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
)

// ErrorBody is the error shape returned by every endpoint: {"error": "..."}.
type ErrorBody struct {
	status  int
	Message string `doc:"Human readable error message" json:"error"`
}

func (e *ErrorBody) Error() string { return e.Message }

func (e *ErrorBody) GetStatus() int { return e.status }

// NewError replaces huma's problem+json errors, including the ones huma
// raises itself for malformed requests.
func NewError(status int, msg string, _ ...error) huma.StatusError {
	return &ErrorBody{status: status, Message: msg}
}

func init() {
	huma.NewError = NewError
}

// MethodNotAllowed is the router fallback for known paths hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// NotFound is the router fallback for paths no route matches, such as "/".
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgRouteNotFound)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
