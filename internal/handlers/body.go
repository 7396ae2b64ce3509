package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"
)

const maxFormMemory = 1 << 20

var (
	errUnsupportedType = errors.New("unsupported content type")
	errInvalidForm     = errors.New("invalid form data")
)

type shortenFields struct {
	URL    string
	UserID string
}

type shortenJSON struct {
	URL    string      `json:"url"`
	UserID json.Number `json:"userId"`
}

// decodeShortenBody reads url and userId from a JSON, url-encoded or
// multipart body.
func decodeShortenBody(contentType string, body []byte) (shortenFields, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return shortenFields{}, errUnsupportedType
	}

	switch mediaType {
	case "application/json":
		var in shortenJSON
		if err := json.Unmarshal(body, &in); err != nil {
			return shortenFields{}, errInvalidForm
		}

		return shortenFields{URL: in.URL, UserID: in.UserID.String()}, nil
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return shortenFields{}, errInvalidForm
		}

		return shortenFields{URL: values.Get("url"), UserID: values.Get("userId")}, nil
	case "multipart/form-data":
		if params["boundary"] == "" {
			return shortenFields{}, errInvalidForm
		}

		form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxFormMemory)
		if err != nil {
			return shortenFields{}, errInvalidForm
		}
		defer func() { _ = form.RemoveAll() }()

		return shortenFields{URL: first(form.Value["url"]), UserID: first(form.Value["userId"])}, nil
	default:
		return shortenFields{}, errUnsupportedType
	}
}

// parseUserID returns 0 for an absent id.
func parseUserID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidForm
	}

	return id, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
