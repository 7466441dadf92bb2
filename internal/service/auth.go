package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// maxPasswordBytes is the longest input bcrypt hashes without truncation.
const maxPasswordBytes = 72

// TokenIssuer issues identity tokens on successful login.
type TokenIssuer interface {
	Issue(username string, role domain.Role) (string, error)
}

// AuthService registers users and logs them in.
type AuthService struct {
	userRepo   repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

// NewAuthService creates a new AuthService hashing with bcrypt.DefaultCost.
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

// RegisterRequest contains the parameters for registering a user.
type RegisterRequest struct {
	Username string
	Password string
	Role     string
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if strings.TrimSpace(req.Password) == "" || len(req.Password) > maxPasswordBytes {
		return nil, ErrInvalidPassword
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	// Check if user already exists
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	// The store's unique constraint covers a registration racing this one.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}).Info("user registered")

	return user, nil
}

// Login verifies the credentials and returns a signed token. Unknown
// usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
