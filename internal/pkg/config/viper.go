package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. AUTHFLOW_JWT_SECRET
// overrides jwt.secret.
const EnvPrefix = "AUTHFLOW"

// Viper implements Config on top of spf13/viper.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewViper reads the file at pathFile and reloads it whenever it changes on disk.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(filepath.Clean(pathFile))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "path", e.Name, "op", e.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes builds a Config from an in-memory document of configType
// ("yaml", "json", ...).
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config: type is required")
	}

	v := newViper()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (c *Viper) GetInt(key string) int { return c.v.GetInt(key) }
func (c *Viper) GetInt32(key string) int32 { return c.v.GetInt32(key) }
func (c *Viper) GetInt64(key string) int64 { return c.v.GetInt64(key) }
func (c *Viper) GetUint(key string) uint { return c.v.GetUint(key) }
func (c *Viper) GetUint16(key string) uint16 { return c.v.GetUint16(key) }
func (c *Viper) GetFloat64(key string) float64 { return c.v.GetFloat64(key) }
func (c *Viper) GetBool(key string) bool { return c.v.GetBool(key) }
func (c *Viper) GetString(key string) string { return c.v.GetString(key) }

func (c *Viper) GetSecond(key string) time.Duration { return c.scaled(key, time.Second) }
func (c *Viper) GetMinute(key string) time.Duration { return c.scaled(key, time.Minute) }
func (c *Viper) GetHour(key string) time.Duration { return c.scaled(key, time.Hour) }
func (c *Viper) GetDay(key string) time.Duration { return c.scaled(key, 24*time.Hour) }

func (c *Viper) scaled(key string, unit time.Duration) time.Duration {
	return time.Duration(c.v.GetInt64(key)) * unit
}

func (c *Viper) GetBinary(key string) []byte {
	data, err := base64.StdEncoding.DecodeString(c.v.GetString(key))
	if err != nil {
		return nil
	}
	return data
}

func (c *Viper) GetArray(key string) []string {
	var raw []string
	switch val := c.v.Get(key).(type) {
	case nil:
		return nil
	case []any, []string:
		raw = cast.ToStringSlice(val)
	default:
		raw = strings.Split(cast.ToString(val), ",")
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Viper) GetMap(key string) map[string]string {
	m := make(map[string]string)
	for _, pair := range c.GetArray(key) {
		k, v, ok := strings.Cut(pair, ":")
		if ok {
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return m
}

// Close is a no-op; viper holds no closable resources.
func (c *Viper) Close() error {
	return nil
}
