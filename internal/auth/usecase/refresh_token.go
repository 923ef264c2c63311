package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/jwt"
)

type RefreshTokenInput struct {
	RefreshToken string `json:"refresh-token" validate:"required"`
}

// RefreshToken rotates the pair. Old refresh tokens stay valid until they
// expire since nothing records them.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*entity.TokenPair, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

	in.RefreshToken = strings.TrimSpace(in.RefreshToken)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm, err := s.jwt.Verify(in.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "refresh token rejected", "error", err)
		return nil, goerror.NewBusiness("Invalid or expired refresh token", goerror.CodeUnauthorized)
	}

	if clm.Type != jwt.TypeRefresh {
		slog.WarnContext(ctx, "refresh with wrong token type", "user_id", clm.UserID, "token_type", clm.Type)
		return nil, goerror.NewBusiness("Invalid token type", goerror.CodeForbidden)
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

	return s.issueTokens(ctx, user.ID, user.Email)
}
