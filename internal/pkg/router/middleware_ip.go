package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// trustedProxies holds the networks allowed to report the client address.
type trustedProxies []netip.Prefix

// parseTrustedProxies accepts CIDRs or bare addresses and skips invalid
// entries.
func parseTrustedProxies(values []string) trustedProxies {
	out := make(trustedProxies, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if p, err := netip.ParsePrefix(v); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(v); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		slog.Warn("ignoring invalid trusted proxy", "value", v)
	}
	return out
}

func (tp trustedProxies) contains(ip string) bool {
	a, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	a = a.Unmap()
	for _, p := range tp {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// middlewareIP rewrites RemoteAddr to the client address reported by the
// proxy headers, keeping the original port. Headers are only honored when the
// direct peer is a trusted proxy.
func middlewareIP(trusted trustedProxies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, port, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host, port = r.RemoteAddr, "0"
			}
			if trusted.contains(host) {
				if ip := trusted.clientIP(r.Header); ip != "" {
					r.RemoteAddr = net.JoinHostPort(ip, port)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP walks X-Forwarded-For from the right and returns the first hop
// that is not a trusted proxy.
func (tp trustedProxies) clientIP(h http.Header) string {
	for _, name := range []string{"True-Client-IP", "X-Real-IP"} {
		if v := strings.TrimSpace(h.Get(name)); v != "" && net.ParseIP(v) != nil {
			return v
		}
	}

	hops := strings.Split(h.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			return ""
		}
		if i == 0 || !tp.contains(hop) {
			return hop
		}
	}
	return ""
}
