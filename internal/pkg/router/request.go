package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

type Request struct {
	*http.Request
}

func (r *Request) Param(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

func (r *Request) ParamInt64(key string) (int64, error) {
	v, err := strconv.ParseInt(r.Param(key), 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidFormat("Invalid path parameter " + key)
	}
	return v, nil
}

func (r *Request) Query(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func (r *Request) BearerToken() string {
	return bearerToken(r.Request)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// DecodeBody decodes a single JSON object into dst. An empty body leaves dst
// untouched so that validation reports the missing fields.
func (r *Request) DecodeBody(dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
