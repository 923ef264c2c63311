package router

import (
	"net/http"

	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

func middlewareAuthentication(verifier jwt.JWT, ps policies) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := ps.get(r.Method, matchedRoutePath(r))
			if p.public() {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				abort(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			clm, err := verifier.Verify(token)
			if err != nil {
				abort(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			switch {
			case p.allows(clm.Type):
			case clm.Type == jwt.TypeOTPVerification:
				abort(w, http.StatusForbidden, "OTP token only allowed for verify-otp and resend-otp endpoints")
				return
			case clm.Type == jwt.TypeAccess:
				abort(w, http.StatusForbidden, "Access token not allowed for this endpoint")
				return
			default:
				abort(w, http.StatusUnauthorized, "Invalid token type")
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), clm)))
		})
	}
}
