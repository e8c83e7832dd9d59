package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/hotel-booking-backend/internal/database"
	"github.com/stayease/hotel-booking-backend/internal/models"
	"github.com/stayease/hotel-booking-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration, login and administration
type AuthService struct {
	users      database.UserStore
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users database.UserStore, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a USER account and signs it in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	user, err := s.createUser(ctx, req, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login verifies email and password
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewAuthError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewAuthError("Invalid email or password")
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return s.issue(user)
}

// GetProfile returns the principal's own account
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}
	return user, nil
}

// ListUsers returns every account for staff
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

// DeleteUser removes an account; staff cannot delete themselves
func (s *AuthService) DeleteUser(ctx context.Context, principal *models.Principal, id uuid.UUID) error {
	if principal != nil && principal.ID == id {
		return NewValidationError("You cannot delete your own account")
	}
	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFoundError("User not found")
	}
	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}

// EnsureAdmin creates an ADMIN account, or promotes an existing one and resets its password
func (s *AuthService) EnsureAdmin(ctx context.Context, req *models.RegisterRequest) (*models.User, bool, error) {
	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		user, err := s.createUser(ctx, req, models.RoleAdmin)
		return user, true, err
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.users.UpdatePassword(ctx, existing.ID, hash); err != nil {
		return nil, false, err
	}
	if _, err := s.users.UpdateUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
		return nil, false, err
	}
	existing.Role = models.RoleAdmin
	existing.PasswordHash = hash
	return existing, false, nil
}

func (s *AuthService) createUser(ctx context.Context, req *models.RegisterRequest, role models.Role) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, NewValidationError("email is required")
	}
	if len(req.Password) < 8 {
		return nil, NewValidationError("password must be at least 8 characters")
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, NewValidationError("Email is already registered")
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("User registered")
	return user, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.jwtService.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtService.Expiry().Seconds()),
	}, nil
}
