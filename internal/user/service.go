// File: internal/user/service.go
package user

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/auth"
	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
)

// Service defines the interface for user-related business logic.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (string, error)
	SignIn(ctx context.Context, req SignInRequest) (string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error)
}

type service struct {
	repo     Repository
	tokens   auth.TokenService
	sessions auth.SessionStore
	config   *config.Config
	logger   *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, tokens auth.TokenService, sessions auth.SessionStore, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		config:   cfg,
		logger:   logger,
	}
}

// SignUp registers a user and returns a fresh access token. The token is
// whitelisted immediately so it can be used without a separate sign-in.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	if req.AvatarURL != nil && !common.IsAbsoluteURL(*req.AvatarURL) {
		return "", common.NewValidationAPIError(map[string]string{
			"avatar_url": "must be an absolute URL",
		})
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return "", common.ErrConflict.WithDetails("This email is already registered.")
	} else if apiErr, ok := common.IsAPIError(err); !ok || apiErr.StatusCode != http.StatusNotFound {
		return "", err
	}

	if err := common.ValidatePasswordComplexity(req.Password); err != nil {
		return "", err
	}

	hash, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return "", common.ErrInternalServer.WithDetails("Could not process the password.")
	}

	newUser := &User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		AvatarURL:    req.AvatarURL,
		PasswordHash: hash,
		Age:          req.Other.Age,
		Country:      req.Other.Country,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return "", err
	}

	token, err := s.issueSession(ctx, newUser.ID)
	if err != nil {
		return "", err
	}
	s.logger.Info("User registered", zap.String("userID", newUser.ID.String()))
	return token, nil
}

// SignIn authenticates a user and rotates the whitelisted session, which
// invalidates every previously issued token.
func (s *service) SignIn(ctx context.Context, req SignInRequest) (string, error) {
	found, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return "", common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		return "", err
	}
	if !common.CheckPasswordHash(req.Password, found.PasswordHash) {
		return "", common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}

	token, err := s.issueSession(ctx, found.ID)
	if err != nil {
		return "", err
	}
	s.logger.Info("User signed in", zap.String("userID", found.ID.String()))
	return token, nil
}

// GetProfile returns the caller's profile.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	found, err := s.findCaller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToProfile(found), nil
}

// UpdateProfile applies the provided fields and returns the updated profile.
// A new password goes through the same complexity policy as registration.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error) {
	found, err := s.findCaller(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.AvatarURL != nil {
		if !common.IsAbsoluteURL(*req.AvatarURL) {
			return nil, common.NewValidationAPIError(map[string]string{
				"avatar_url": "must be an absolute URL",
			})
		}
		found.AvatarURL = req.AvatarURL
	}
	if req.Name != nil {
		found.Name = *req.Name
	}
	if req.Surname != nil {
		found.Surname = *req.Surname
	}
	if req.Password != nil {
		if err := common.ValidatePasswordComplexity(*req.Password); err != nil {
			return nil, err
		}
		hash, err := common.HashPassword(*req.Password)
		if err != nil {
			s.logger.Error("Failed to hash password", zap.Error(err))
			return nil, common.ErrInternalServer.WithDetails("Could not process the password.")
		}
		found.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, found); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}
	return ToProfile(found), nil
}

// findCaller resolves the authenticated subject to a stored user. A token
// whose account no longer exists is treated as unauthorized.
func (s *service) findCaller(ctx context.Context, userID uuid.UUID) (*User, error) {
	found, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, common.ErrUnauthorized.WithDetails("Account no longer exists.")
		}
		return nil, err
	}
	return found, nil
}

func (s *service) issueSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, _, err := s.tokens.GenerateToken(userID, common.KindUser)
	if err != nil {
		return "", common.ErrInternalServer.WithDetails("Could not issue an access token.")
	}
	if err := s.sessions.Put(ctx, userID, token, s.config.TokenTTL); err != nil {
		s.logger.Error("Failed to whitelist session", zap.Error(err), zap.String("userID", userID.String()))
		return "", common.ErrInternalServer.WithDetails("Could not store the session.")
	}
	return token, nil
}
