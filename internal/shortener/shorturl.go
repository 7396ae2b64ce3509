package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortURL represents a shortened URL entity.
type ShortURL struct {
	ID          int64
	Code        Code
	OriginalURL string
	UserID      int64
	CreatedAt   time.Time
}

// ClickEvent records one redirect traversal.
type ClickEvent struct {
	URLID       int64
	IPAddressID int64
	HostnameID  int64
	ClickedAt   time.Time
}

// Dimension identifies a lookup table referenced by id from click records.
type Dimension struct {
	Table  string
	Column string
}

var (
	DimensionIPAddress = Dimension{Table: "ip_addresses", Column: "address"}
	DimensionHostname  = Dimension{Table: "hostnames", Column: "name"}
)

// Dimensions lists every dimension the stores accept.
func Dimensions() []Dimension {
	return []Dimension{DimensionIPAddress, DimensionHostname}
}

// Known reports whether d is one of the supported dimensions.
func (d Dimension) Known() bool {
	for _, known := range Dimensions() {
		if d == known {
			return true
		}
	}

	return false
}
