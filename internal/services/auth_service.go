package services

import (
	"context"
	"errors"
	"strings"

	"github.com/terraincognita07/fortuna/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAstrologerInactive  = errors.New("astrologer account is inactive")
	ErrPasswordMismatch    = errors.New("passwords do not match")
)

type AuthAstrologerRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.Astrologer, error)
	FindByID(ctx context.Context, astrologerID string) (models.Astrologer, error)
	Create(ctx context.Context, astrologer *models.Astrologer) error
	UpdatePassword(ctx context.Context, astrologerID string, passwordHash string) error
	SetActive(ctx context.Context, astrologerID string, active bool) error
}

type RegistrationInput struct {
	Email           string `json:"email" form:"email"`
	Name            string `json:"name" form:"name"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type AuthService struct {
	astrologers AuthAstrologerRepository
}

func NewAuthService(astrologers AuthAstrologerRepository) *AuthService {
	return &AuthService{astrologers: astrologers}
}

func (service *AuthService) Register(ctx context.Context, input RegistrationInput) (models.Astrologer, error) {
	validation := &ValidationError{}
	email := NormalizeAuthEmail(input.Email)
	if email == "" {
		validation.add("email", "Enter a valid email address.")
	}
	name, ok := NormalizeAstrologerName(input.Name)
	if !ok {
		validation.add("name", "Name is required.")
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		validation.add("password", "Use at least 8 characters with upper and lower case letters and a digit.")
	} else if input.Password != input.ConfirmPassword {
		validation.add("confirm_password", "Passwords do not match.")
	}
	if err := validation.orNil(); err != nil {
		return models.Astrologer{}, err
	}

	exists, err := service.astrologers.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.Astrologer{}, storeFailure("create", "account", err)
	}
	if exists {
		return models.Astrologer{}, ErrEmailExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Astrologer{}, err
	}

	astrologer := models.Astrologer{
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
		IsActive:     true,
	}
	if err := service.astrologers.Create(ctx, &astrologer); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.Astrologer{}, ErrEmailExists
		}
		return models.Astrologer{}, storeFailure("create", "account", err)
	}
	return astrologer, nil
}

// Authenticate also answers ErrInvalidCredentials for unknown emails.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, passwordRaw string) (models.Astrologer, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.Astrologer{}, ErrInvalidCredentials
	}

	astrologer, err := service.astrologers.FindByNormalizedEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.Astrologer{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Astrologer{}, storeFailure("load", "account", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(astrologer.PasswordHash), []byte(password)); err != nil {
		return models.Astrologer{}, ErrInvalidCredentials
	}
	if !astrologer.IsActive {
		return models.Astrologer{}, ErrAstrologerInactive
	}
	return astrologer, nil
}

func (service *AuthService) FindByID(ctx context.Context, astrologerID string) (models.Astrologer, error) {
	astrologer, err := service.astrologers.FindByID(ctx, astrologerID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Astrologer{}, ErrAstrologerNotFound
	}
	return astrologer, err
}

func (service *AuthService) FindByEmail(ctx context.Context, emailRaw string) (models.Astrologer, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.Astrologer{}, ErrAuthCredentialsInvalid
	}
	astrologer, err := service.astrologers.FindByNormalizedEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return models.Astrologer{}, ErrAstrologerNotFound
	}
	return astrologer, err
}

// SetPassword stores a new bcrypt hash without checking strength; callers
// that accept user input validate first.
func (service *AuthService) SetPassword(ctx context.Context, astrologerID string, password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrAuthCredentialsInvalid
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return service.astrologers.UpdatePassword(ctx, astrologerID, string(passwordHash))
}

func (service *AuthService) SetActive(ctx context.Context, astrologerID string, active bool) error {
	err := service.astrologers.SetActive(ctx, astrologerID, active)
	if errors.Is(err, models.ErrNotFound) {
		return ErrAstrologerNotFound
	}
	return err
}
