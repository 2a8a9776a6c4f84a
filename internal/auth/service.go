package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a caller cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAccountInactive = errors.New("user account is inactive")
)

type RegisterRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Profile     PatientProfile
}

type LoginResult struct {
	UserID   int64
	Email    string
	FullName string
	Role     string
	Token    string
}

// Service handles patient registration and credential checks.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// RegisterPatient creates a user account with role Patient plus the linked
// patient profile, and returns the new user id.
func (s *Service) RegisterPatient(ctx context.Context, req RegisterRequest) (int64, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return 0, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return 0, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Role:         RolePatient,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	userID, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return 0, err
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.repo.CreatePatientProfile(ctx, userID, req.Profile); err != nil {
		return 0, fmt.Errorf("create patient profile: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Msg("patient registered")

	return userID, nil
}

// Login verifies credentials and issues a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("login")

	return &LoginResult{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
		Role:     user.Role,
		Token:    token,
	}, nil
}
