package handlers

import "time"

// CreateShortURLRequest accepts JSON, url-encoded and multipart bodies, so
// the body is read raw and decoded by content type.
type CreateShortURLRequest struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

// CreateShortURLResponse is the response for a successfully shortened URL.
type CreateShortURLResponse struct {
	Body struct {
		ShortURL string `doc:"The full short URL" example:"http://localhost:8888/ab12cd3" json:"shortUrl"`
	}
}

// RedirectRequest is the request for redirecting a short URL.
type RedirectRequest struct {
	ShortID string `doc:"The short code" example:"ab12cd3" path:"shortId"`
}

// RedirectResponse is a permanent redirect to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// CountResponse is the number of stored mappings.
type CountResponse struct {
	Body struct {
		Count   int64  `doc:"Number of shortened URLs" json:"count"`
		Runtime string `doc:"Handler time"             json:"runtime"`
	}
}

// LatestRequest selects how many mappings to list.
type LatestRequest struct {
	Count string `doc:"Number of entries, default 10" example:"10" query:"count"`
}

// LatestEntry is one row of the latest listing.
type LatestEntry struct {
	ShortID   string    `json:"shortId"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// LatestResponse lists mappings newest first.
type LatestResponse struct {
	Body struct {
		Latest  []LatestEntry `json:"latest"`
		Runtime string        `json:"runtime"`
	}
}

// VersionResponse reports build metadata.
type VersionResponse struct {
	Body struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
		Author      string `json:"author"`
		Homepage    string `json:"homepage"`
		Commit      string `json:"commit"`
		GoVersion   string `json:"goVersion"`
		Runtime     string `json:"runtime"`
	}
}
