package shortener

import "fmt"

// URLKey is the cache key holding the long URL for a code.
func URLKey(code Code) string {
	return "url:" + string(code)
}

// LongURLKey is the cache key holding the code for a long URL.
func LongURLKey(originalURL string) string {
	return "longUrl:" + originalURL
}

// DimensionKey is the cache key holding the row id for a dimension value.
func DimensionKey(d Dimension, value string) string {
	return fmt.Sprintf("%s:%s:%s", d.Table, d.Column, value)
}

// URLIDKey is the cache key holding the row id of the mapping for a code.
func URLIDKey(code Code) string {
	return fmt.Sprintf("urls:short_url:%s", code)
}
