// Package config exposes typed read access to the service configuration.
package config

import (
	"io"
	"time"
)

// Durations reads integer values and scales them to a unit.
type Durations interface {
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration
}

// Numbers reads numeric values. Missing or malformed keys yield zero.
type Numbers interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetFloat64(key string) float64
}

// Config is the read side used by the app and modules.
type Config interface {
	io.Closer
	Durations
	Numbers

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray accepts either a YAML list or a comma separated string.
	// Blank elements are dropped.
	GetArray(key string) []string

	// GetMap parses "k1:v1,k2:v2".
	GetMap(key string) map[string]string
}
