package instrument

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

const maskedValue = "***"

type maskSet map[string]struct{}

func newMaskSet(fields []string) maskSet {
	m := make(maskSet, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

func (m maskSet) has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

// maskHandler replaces values of sensitive keys, including keys nested in
// groups, maps and JSON encoded strings such as logged request bodies.
type maskHandler struct {
	next slog.Handler
	keys maskSet
}

func (h *maskHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.keys) == 0 {
		return h.next.Handle(ctx, r)
	}

	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.keys.attr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.keys.attr(a)
	}
	return &maskHandler{next: h.next.WithAttrs(masked), keys: h.keys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (m maskSet) attr(a slog.Attr) slog.Attr {
	if m.has(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.attr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}

	case slog.KindString:
		if s, ok := m.jsonText([]byte(a.Value.String())); ok {
			return slog.String(a.Key, s)
		}

	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			return slog.Any(a.Key, m.value(v))
		case map[string]string:
			cp := make(map[string]any, len(v))
			for k, s := range v {
				cp[k] = s
			}
			return slog.Any(a.Key, m.value(cp))
		case []byte:
			if s, ok := m.jsonText(v); ok {
				return slog.String(a.Key, s)
			}
		}
	}

	return a
}

func (m maskSet) jsonText(b []byte) (string, bool) {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return "", false
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return "", false
	}

	out, err := json.Marshal(m.value(v))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (m maskSet) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.has(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.value(inner)
		}
		return out
	default:
		return v
	}
}
