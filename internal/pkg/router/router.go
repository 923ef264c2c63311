// Package router is the HTTP layer: an httprouter tree behind a fixed
// middleware chain, application handlers that return (payload, error), and
// a single JSON envelope for every response.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/authflow/internal/pkg/config"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/instrument"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
	"github.com/shandysiswandi/authflow/internal/pkg/ratelimit"
	"github.com/shandysiswandi/authflow/internal/pkg/uid"
	"github.com/shandysiswandi/authflow/internal/pkg/validator"
)

// Envelope is the body of every response.
type Envelope struct {
	Code    int               `json:"code" example:"200"`
	Message string            `json:"message" example:"Login successful"`
	Data    any               `json:"data" swaggertype:"object"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Handler is an application handler. The payload is wrapped in an Envelope.
type Handler func(r *Request) (any, error)

type Config struct {
	Config     config.Config
	UUID       uid.StringID
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	// Limiter is optional; nil disables rate limiting.
	Limiter ratelimit.Limiter
	// TrustedProxies lists CIDRs whose forwarding headers are honored.
	// Empty means the peer address is always used.
	TrustedProxies []string
}

type Router struct {
	hr       *httprouter.Router
	mws      []Middleware
	policies policies
}

func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteJSON(w, http.StatusNotFound, Envelope{Code: http.StatusNotFound, Message: "Endpoint not found"})
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			WriteJSON(w, http.StatusMethodNotAllowed, Envelope{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
		}),
	}

	ins := cfg.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	ro := &Router{hr: hr, policies: make(policies)}
	ro.mws = []Middleware{
		middlewareRecoverer,
		middlewareIP(parseTrustedProxies(cfg.TrustedProxies)),
		middlewareCorrelationID(cfg.UUID),
		middlewareObservability(ins),
		middlewareMaintenance(cfg.Config),
		middlewareRateLimit(cfg.Limiter, cfg.JWT),
		middlewareAuthentication(cfg.JWT, ro.policies),
	}

	return ro
}

func (r *Router) GET(path string, p Policy, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, p, h, mws...)
}

func (r *Router) POST(path string, p Policy, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, p, h, mws...)
}

func (r *Router) PUT(path string, p Policy, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, p, h, mws...)
}

func (r *Router) DELETE(path string, p Policy, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, p, h, mws...)
}

func (r *Router) endpoint(method, path string, p Policy, h Handler, mws ...Middleware) {
	r.policies.set(method, path, p)

	final := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			writeError(req.Context(), w, err)
			return
		}
		writeSuccess(w, resp)
	})

	chain := make([]Middleware, 0, len(r.mws)+len(mws))
	chain = append(chain, r.mws...)
	r.hr.Handler(method, path, Chain(final, append(chain, mws...)...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "unhandled error type", "error", err)
		WriteJSON(w, http.StatusInternalServerError, Envelope{Code: http.StatusInternalServerError, Message: "Internal server error"})
		return
	}

	status := gerr.StatusCode()
	env := Envelope{Code: status, Message: gerr.Msg(), Data: gerr.Data()}

	var fe validator.FieldErrors
	if errors.As(err, &fe) {
		env.Errors = fe.Values()
	} else if len(gerr.Fields()) > 0 {
		env.Errors = gerr.Fields()
	}

	WriteJSON(w, status, env)
}

func writeSuccess(w http.ResponseWriter, resp any) {
	status := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		status = sc.StatusCode()
	}

	msg := http.StatusText(status)
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	var data any = resp
	if d, ok := resp.(interface{ Payload() any }); ok {
		data = d.Payload()
	}

	WriteJSON(w, status, Envelope{Code: status, Message: msg, Data: data})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("router: encode response", "error", err)
	}
}

func abort(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Envelope{Code: status, Message: msg})
}
