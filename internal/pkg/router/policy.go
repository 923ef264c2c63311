package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

// Policy tells the authentication middleware which bearer tokens an
// endpoint accepts. The zero value is a public endpoint.
type Policy struct {
	accept []jwt.TokenType
}

// Public endpoints take no token.
var Public = Policy{}

// Tokens requires a bearer token of one of the given types.
func Tokens(types ...jwt.TokenType) Policy {
	return Policy{accept: types}
}

func (p Policy) public() bool {
	return len(p.accept) == 0
}

func (p Policy) allows(t jwt.TokenType) bool {
	return slices.Contains(p.accept, t)
}

type policies map[string]Policy

func (ps policies) set(method, path string, p Policy) {
	ps[method+" "+path] = p
}

func (ps policies) get(method, path string) Policy {
	if method == http.MethodHead {
		method = http.MethodGet
	}
	return ps[method+" "+path]
}
