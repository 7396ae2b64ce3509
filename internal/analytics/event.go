package analytics

import "time"

const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
)

// URLCreatedEvent is emitted when a new mapping is stored.
type URLCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// URLAccessedEvent is emitted for every successful redirect.
type URLAccessedEvent struct {
	Code       string    `json:"code"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp"`
	Host       string    `json:"host"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}
