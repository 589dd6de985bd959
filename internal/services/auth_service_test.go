package services

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterValidatesAndHashesPassword(t *testing.T) {
	env := newWorkflowTestEnv(t)
	service := NewAuthService(env.repos.Astrologers)
	ctx := context.Background()

	_, err := service.Register(ctx, RegistrationInput{Email: "bad", Name: " ", Password: "weak", ConfirmPassword: "weak"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "name", "password"} {
		if len(validationErr.Fields[field]) == 0 {
			t.Fatalf("expected %s field error, got %#v", field, validationErr.Fields)
		}
	}

	astrologer, err := service.Register(ctx, RegistrationInput{
		Email:           " Sirin@Example.com ",
		Name:            "Sirin",
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if astrologer.Email != "sirin@example.com" {
		t.Fatalf("expected normalized email, got %q", astrologer.Email)
	}
	if astrologer.PasswordHash == "StrongPass1" {
		t.Fatal("expected password to be hashed")
	}

	_, err = service.Register(ctx, RegistrationInput{
		Email:           "sirin@example.com",
		Name:            "Another",
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass1",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	env := newWorkflowTestEnv(t)
	service := NewAuthService(env.repos.Astrologers)

	_, err := service.Register(context.Background(), RegistrationInput{
		Email:           "sirin@example.com",
		Name:            "Sirin",
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass2",
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || len(validationErr.Fields["confirm_password"]) == 0 {
		t.Fatalf("expected confirm_password error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	env := newWorkflowTestEnv(t)
	service := NewAuthService(env.repos.Astrologers)
	ctx := context.Background()

	astrologer, err := service.Register(ctx, RegistrationInput{
		Email:           "sirin@example.com",
		Name:            "Sirin",
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := service.Authenticate(ctx, "SIRIN@example.com", "StrongPass1"); err != nil {
		t.Fatalf("expected valid login, got %v", err)
	}
	if _, err := service.Authenticate(ctx, "sirin@example.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Authenticate(ctx, "nobody@example.com", "StrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	if err := env.repos.Astrologers.SetActive(ctx, astrologer.ID, false); err != nil {
		t.Fatalf("deactivate astrologer: %v", err)
	}
	if _, err := service.Authenticate(ctx, "sirin@example.com", "StrongPass1"); !errors.Is(err, ErrAstrologerInactive) {
		t.Fatalf("expected ErrAstrologerInactive, got %v", err)
	}
}

func TestSetPasswordReplacesHash(t *testing.T) {
	env := newWorkflowTestEnv(t)
	service := NewAuthService(env.repos.Astrologers)
	ctx := context.Background()

	astrologer, err := service.Register(ctx, RegistrationInput{
		Email:           "sirin@example.com",
		Name:            "Sirin",
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := service.SetPassword(ctx, astrologer.ID, "Temporary9x"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, err := service.Authenticate(ctx, "sirin@example.com", "Temporary9x"); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}
