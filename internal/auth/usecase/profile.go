package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

type UserProfileOutput struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}

func (s *Usecase) UserProfile(ctx context.Context) (*UserProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "UserProfile")
	defer span.End()

	clm, err := s.authorized(ctx, "users", "read")
	if err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserProfileOutput{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

func (s *Usecase) authorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := s.enforcer.Enforce(subject(clm.UserID), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "permission denied", "user_id", clm.UserID, "obj", obj, "act", act)
		return nil, goerror.NewBusiness("Forbidden: no permission", goerror.CodeForbidden)
	}

	return clm, nil
}
