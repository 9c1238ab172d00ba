package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/models"
	"inventory-api/internal/repositories"
)

// userService implements the UserService interface
type userService struct {
	userRepo   repositories.UserRepository
	tokens     TokenIssuer
	validator  *validator.Validate
	logger     *logrus.Logger
	bcryptCost int
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.UserRepository, tokens TokenIssuer, logger *logrus.Logger) UserService {
	return &userService{
		userRepo:   userRepo,
		tokens:     tokens,
		validator:  newValidator(),
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register creates an account with a bcrypt password hash
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*models.PublicProfile, error) {
	if req == nil {
		return nil, models.NewValidationError("user", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "user", req); err != nil {
		return nil, err
	}

	user := models.NewUser(req.WorkEmail, req.Username, req.FullName)
	if err := user.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, user.WorkEmail, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, models.NewConflictError("user", "email or username", user.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")

	profile := user.PublicProfile()
	return &profile, nil
}

// Login checks the password and opens a session
func (s *userService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if req == nil {
		return nil, models.NewValidationError("user", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "user", req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid user credentials")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("Failed login attempt")
		return nil, models.NewUnauthorizedError("Invalid user credentials")
	}

	user.RecordLogin(models.Now())
	session, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return session, nil
}

// openSession issues a token pair and stores the refresh token
func (s *userService) openSession(ctx context.Context, user *models.User) (*Session, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Username, user.WorkEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.RefreshToken = &refresh
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Session{
		User:         user.PublicProfile(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Logout clears the stored refresh token
func (s *userService) Logout(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.RefreshToken = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged out")
	return nil
}

// Refresh rotates the token pair. The presented token must be the one
// stored for the user.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, models.NewUnauthorizedError("Refresh token is required")
	}

	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, models.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, models.NewUnauthorizedError("Refresh token is expired or used")
	}

	return s.openSession(ctx, user)
}

// ChangePassword replaces the password after checking the current one
func (s *userService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if req == nil {
		return models.NewValidationError("user", "", "Request body is required")
	}

	// Validate request
	if err := validateRequest(s.validator, "user", req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return models.NewValidationError("user", "old_password", "Invalid old password")
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user
func (s *userService) Me(ctx context.Context, userID string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	profile := user.PublicProfile()
	return &profile, nil
}
