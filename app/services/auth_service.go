package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/go-playground/validator/v10"
)

var (
	ErrRegistrationClosed = errors.New("user registration is currently closed")
	ErrEmailTaken         = fmt.Errorf("%w: email is already registered", ErrConfigurationConflict)
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AuthService struct {
	userRepo repositories.UserRepository
	settings *SettingsService
	validate *validator.Validate
}

func NewAuthService(userRepo repositories.UserRepository, settings *SettingsService) *AuthService {
	return &AuthService{userRepo: userRepo, settings: settings, validate: validator.New()}
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		log.Printf("ERROR: AuthService.Login: %v", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !helpers.PasswordCompare(user.Password, []byte(in.Password)) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a customer account while registration is open.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.AllowUserRegistration {
		return nil, ErrRegistrationClosed
	}

	email := normalizeEmail(in.Email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed := helpers.HashPassword(in.Password)
	if hashed == "" {
		return nil, errors.New("failed to hash password")
	}
	user := &models.User{
		FullName: in.FullName,
		Email:    email,
		Phone:    in.Phone,
		Password: hashed,
		Role:     models.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("INFO: AuthService.Register: user %s registered", user.ID)
	return user, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
