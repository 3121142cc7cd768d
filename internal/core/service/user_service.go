package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
	"github.com/lawdesk/crm/internal/security"
)

type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger, now: time.Now}
}

// Register binds the caller's external identity to a new User.
func (s *UserService) Register(ctx context.Context, caller domain.Caller, in ports.RegisterUserInput) (*domain.User, error) {
	if caller.Subject == "" {
		return nil, domain.ErrForbidden
	}

	name := security.PlainText(in.Name)
	email := normalizeEmail(in.Email)

	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "is required")
	}
	if email == "" {
		verr.Add("email", "is required")
	}
	if !in.Role.Valid() {
		verr.Add("role", "must be one of: admin associate")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByIdentity(ctx, caller.Subject); err == nil {
		return nil, domain.ErrIdentityTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register user: %w", err)
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register user: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Identity:  caller.Subject,
		Name:      name,
		Email:     email,
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("identity", caller.Subject).Msg("failed to register user")
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	return s.repo.FindByIdentity(ctx, caller.Subject)
}

// UpdateProfile merges the provided fields into the caller's own profile.
// Changing the role requires the manage_roles capability.
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.repo.FindByIdentity(ctx, caller.Subject)
	if err != nil {
		return nil, err
	}

	var patch ports.UserPatch
	verr := &domain.ValidationError{}

	if in.Name != nil {
		name := security.PlainText(*in.Name)
		if name == "" {
			verr.Add("name", "must not be empty")
		} else if name != user.Name {
			patch.Name = &name
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			verr.Add("email", "must not be empty")
		} else if email != user.Email {
			patch.Email = &email
		}
	}
	if in.Role != nil && *in.Role != user.Role {
		if !in.Role.Valid() {
			verr.Add("role", "must be one of: admin associate")
		} else {
			patch.Role = in.Role
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if patch.Role != nil && !user.Role.Can(domain.CapManageRoles) {
		return nil, domain.ErrForbidden
	}
	if patch.Email != nil {
		other, err := s.repo.FindByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, domain.ErrEmailTaken
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	if patch.Name == nil && patch.Email == nil && patch.Role == nil {
		return user, nil
	}

	updated, err := s.repo.Update(ctx, user.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.logger.Info().Str("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}

func (s *UserService) Lookup(ctx context.Context, identity string) (*domain.User, error) {
	return s.repo.FindByIdentity(ctx, identity)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
