// File: internal/company/service.go
package company

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/auth"
	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
)

// Service defines the interface for company-related business logic.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (string, error)
	// IssueToken authenticates with form credentials and returns a token
	// without touching the session whitelist. It backs the OAuth2-style
	// endpoint kept for API explorers.
	IssueToken(ctx context.Context, form TokenForm) (string, error)
}

type service struct {
	repo     Repository
	tokens   auth.TokenService
	sessions auth.SessionStore
	config   *config.Config
	logger   *zap.Logger
}

// NewService creates a new company service.
func NewService(repo Repository, tokens auth.TokenService, sessions auth.SessionStore, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		config:   cfg,
		logger:   logger,
	}
}

// SignUp registers a company and returns a whitelisted token plus the new
// company ID.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.ErrConflict.WithDetails("This email is already registered.")
	} else if apiErr, ok := common.IsAPIError(err); !ok || apiErr.StatusCode != http.StatusNotFound {
		return nil, err
	}

	if err := common.ValidatePasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	hash, err := common.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process the password.")
	}

	newCompany := &Company{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, newCompany); err != nil {
		s.logger.Error("Failed to create company", zap.Error(err), zap.String("email", req.Email))
		return nil, err
	}

	token, err := s.issueSession(ctx, newCompany.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Company registered", zap.String("companyID", newCompany.ID.String()))
	return &SignUpResponse{Token: token, CompanyID: newCompany.ID}, nil
}

// SignIn authenticates a company and rotates the whitelisted session.
func (s *service) SignIn(ctx context.Context, req SignInRequest) (string, error) {
	found, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return "", err
	}

	token, err := s.issueSession(ctx, found.ID)
	if err != nil {
		return "", err
	}
	s.logger.Info("Company signed in", zap.String("companyID", found.ID.String()))
	return token, nil
}

func (s *service) IssueToken(ctx context.Context, form TokenForm) (string, error) {
	found, err := s.authenticate(ctx, form.Username, form.Password)
	if err != nil {
		return "", err
	}
	token, _, err := s.tokens.GenerateToken(found.ID, common.KindCompany)
	if err != nil {
		return "", common.ErrInternalServer.WithDetails("Could not issue an access token.")
	}
	return token, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*Company, error) {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		return nil, err
	}
	if !common.CheckPasswordHash(password, found.PasswordHash) {
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	return found, nil
}

func (s *service) issueSession(ctx context.Context, companyID uuid.UUID) (string, error) {
	token, _, err := s.tokens.GenerateToken(companyID, common.KindCompany)
	if err != nil {
		return "", common.ErrInternalServer.WithDetails("Could not issue an access token.")
	}
	if err := s.sessions.Put(ctx, companyID, token, s.config.TokenTTL); err != nil {
		s.logger.Error("Failed to whitelist session", zap.Error(err), zap.String("companyID", companyID.String()))
		return "", common.ErrInternalServer.WithDetails("Could not store the session.")
	}
	return token, nil
}
