package services

import (
	"context"
	"errors"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"github.com/fcadmin/matchvote-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// ErrInvalidCredentials is returned for any login failure; it deliberately
// does not reveal whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthServiceImpl handles dashboard operator authentication
type AuthServiceImpl struct {
	userRepo repositories.AdminUserRepository
	tokens   *jwt.Manager
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(userRepo repositories.AdminUserRepository, tokens *jwt.Manager) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// Login verifies the credentials and returns a signed session token
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		slog.Error("Failed to generate session token", "error", err, "email", user.Email)
		return nil, err
	}

	user.Password = ""
	return &models.LoginResponse{Token: token, User: user}, nil
}

// Register creates a new operator account with a bcrypt-hashed password
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password, role string) (*models.AdminUser, error) {
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, errors.New("an account with this email already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.AdminUser{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("Admin user registered", "email", email, "role", role)
	user.Password = ""
	return user, nil
}
