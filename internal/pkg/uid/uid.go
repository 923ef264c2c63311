// Package uid generates identifiers: snowflake numbers for rows, UUIDs for
// correlation and event ids, and random opaque tokens for emailed links.
package uid

// NumberID yields sortable numeric ids.
type NumberID interface {
	Generate() int64
}

// StringID yields string ids.
type StringID interface {
	Generate() string
}
