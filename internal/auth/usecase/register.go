package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/authflow/internal/auth/entity"
	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,password"`
}

type RegisterOutput struct {
	ID    int64
	Email string
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err == nil {
		slog.WarnContext(ctx, "email already registered", "email", in.Email)
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	user := entity.User{
		ID:           s.uid.Generate(),
		Email:        in.Email,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.clock.Now(),
	}

	verification, token, err := s.newLinkVerification(user.ID, entity.PurposeVerifyEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create verification token", "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoDB.NewRegistration(ctx, user, verification, entity.RoleUsers)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "email registered concurrently", "email", in.Email)
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo new registration", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	// The role row is already stored; this syncs the in-memory policy and
	// notifies other instances.
	if _, err := s.enforcer.AddRoleForUser(subject(user.ID), entity.RoleUsers); err != nil {
		slog.ErrorContext(ctx, "failed to sync role grant", "user_id", user.ID, "error", err)
	}

	if err := s.repoMessaging.PublishEmailVerification(ctx, EmailVerificationEvent{
		EventID: s.uuid.Generate(),
		UserID:  user.ID,
		Email:   user.Email,
		Link:    s.link("/verify-email", token),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish email verification", "user_id", user.ID, "error", err)
	}

	return &RegisterOutput{ID: user.ID, Email: user.Email}, nil
}
