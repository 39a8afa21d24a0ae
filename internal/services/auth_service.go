// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/config"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

type AuthService struct {
	repo repository.Repository
	cfg  *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,strong_password"`
	FullName string      `json:"full_name" validate:"required,max=255"`
	Phone    string      `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role     models.Role `json:"role" validate:"required,signup_role"`
	Locale   string      `json:"locale,omitempty" validate:"omitempty,max=10"`
	Region   string      `json:"region,omitempty" validate:"omitempty,max=100"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	Account      *models.Account `json:"account"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // in seconds
}

func NewAuthService(repo repository.Repository, cfg *config.Config) *AuthService {
	return &AuthService{
		repo: repo,
		cfg:  cfg,
	}
}

// Register creates the caller's own account. The new account is its own
// actor for the insert, so only farmer and buyer roles get through.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	// Validate request
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	locale := req.Locale
	if locale == "" {
		locale = "en"
	}

	account := &models.Account{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		Locale:   locale,
		Region:   req.Region,
		IsActive: true,
	}
	account.ID = uuid.New()

	// Set password
	if err := account.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		self := policy.NewActor(account.ID, account.Role)
		if err := authorize(ctx, tx, policy.Request{
			Actor: self, Entity: policy.EntityAccount, Op: policy.OpInsert, Proposed: account,
		}); err != nil {
			return err
		}
		if err := checkRow(account); err != nil {
			return err
		}

		// Check if account already exists
		if _, err := tx.Accounts().FindByEmail(ctx, account.Email); err == nil {
			return apperrors.ErrEmailTaken
		} else if !apperrors.IsNotFound(err) {
			return err
		}

		return tx.Accounts().Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"account_id": account.ID, "role": account.Role}).Info("Account registered")
	return s.issueTokens(account)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Find account by email
	account, err := s.repo.Accounts().FindByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Verify password
	if err := account.CheckPassword(req.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	return s.issueTokens(account)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// Validate refresh token
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials.WithDetails("invalid refresh token")
	}

	accountID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials.WithDetails("invalid subject in token")
	}

	account, err := s.repo.Accounts().Get(ctx, accountID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// Check account status
	if !account.IsActive {
		return nil, apperrors.ErrAccountInactive
	}

	return s.issueTokens(account)
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, actor policy.Actor) (*models.Account, error) {
	return visible[models.Account](ctx, s.repo, s.repo.Accounts(), actor, policy.EntityAccount, actor.ID)
}

func (s *AuthService) issueTokens(account *models.Account) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(account.ID, account.Email, string(account.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(account.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
