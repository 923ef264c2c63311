package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

// ProfilePermissions lists the caller's permissions, roles resolved, as
// object to actions.
func (s *Usecase) ProfilePermissions(ctx context.Context) (map[string][]string, error) {
	ctx, span := s.startSpan(ctx, "ProfilePermissions")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	policies, err := s.enforcer.GetImplicitPermissionsForUser(subject(clm.UserID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to get implicit permissions", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	permissions := make(map[string][]string)
	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if !slices.Contains(permissions[policy[1]], policy[2]) {
			permissions[policy[1]] = append(permissions[policy[1]], policy[2])
		}
	}

	return permissions, nil
}
