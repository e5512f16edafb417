package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/auth"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/session"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

type authService struct {
	serviceBase
	hasher         auth.PasswordHasher
	issuer         auth.TokenIssuer
	tokenValidator auth.TokenValidator
	revoker        TokenRevoker
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, deps ServiceDependencies) AuthService {
	return &authService{
		serviceBase: serviceBase{
			repo:      repo,
			db:        db,
			logger:    logger,
			validator: validator,
			publisher: deps.Publisher,
		},
		hasher:         deps.Hasher,
		issuer:         deps.Issuer,
		tokenValidator: deps.TokenValidator,
		revoker:        deps.Revoker,
	}
}

// Login answers every failure with the same error so callers cannot probe
// which emails exist
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateLogin(req); len(errs) > 0 {
		return nil, errs
	}

	email := normalizeEmail(req.Email)
	user, err := s.repo.User().GetByEmail(ctx, s.db, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Login failed", "email", email, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("Login failed", "user_id", user.ID, "reason", "inactive")
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Warn("Login failed", "user_id", user.ID, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.IssueToken(auth.Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	s.logger.Info("Registering user", "email", req.Email)

	if errs := s.validator.GetBusinessValidator().ValidateRegister(req); len(errs) > 0 {
		return nil, errs
	}

	role := models.RoleStudent
	if req.Role != nil {
		role, _ = models.ParseUserRole(*req.Role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		IsActive:     true,
	}

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.User().ExistsByEmail(ctx, tx, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailInUse
		}
		return s.repo.User().Create(ctx, tx, user)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, events.UserRegistered, events.UserEventData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	return user, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByIDWithProfiles(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the presented token until it would have expired anyway.
// Without a revocation store it succeeds and the token stays valid.
func (s *authService) Logout(ctx context.Context, principal auth.Principal) error {
	if s.revoker == nil {
		s.logger.Warn("Logout without revocation store", "user_id", principal.ID)
		return nil
	}

	if err := s.revoker.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		if errors.Is(err, session.ErrStoreNotAvailable) {
			s.logger.Warn("Logout without revocation store", "user_id", principal.ID)
			return nil
		}
		return err
	}

	s.logger.Info("User logged out", "user_id", principal.ID, "token_id", principal.TokenID)
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	principal, err := s.tokenValidator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if s.revoker != nil && session.SafeIsRevoked(ctx, s.revoker, principal.TokenID) {
		return nil, ErrTokenRevoked
	}
	return principal, nil
}
