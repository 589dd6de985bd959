package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

var errPasswordConfirmation = errors.New("passwords do not match")

type CreateAstrologerParams struct {
	Email    string
	Name     string
	Password string
}

func newAuthService(database *gorm.DB) *services.AuthService {
	return services.NewAuthService(db.NewRepositories(database).Astrologers)
}

func lookupAstrologer(ctx context.Context, auth *services.AuthService, email string) (string, error) {
	astrologer, err := auth.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return "", errors.New("a valid email is required")
	case errors.Is(err, services.ErrAstrologerNotFound):
		return "", fmt.Errorf("astrologer %s not found", services.NormalizeAuthEmail(email))
	case err != nil:
		return "", fmt.Errorf("load astrologer: %w", err)
	}
	return astrologer.ID, nil
}

// RunResetPasswordCommand replaces the stored hash with a random password
// and prints it once.
func RunResetPasswordCommand(ctx context.Context, database *gorm.DB, email string, out io.Writer) error {
	auth := newAuthService(database)
	astrologerID, err := lookupAstrologer(ctx, auth, email)
	if err != nil {
		return err
	}

	temporaryPassword, err := generateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	if err := auth.SetPassword(ctx, astrologerID, temporaryPassword); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	printSuccess(out, "Password reset for %s", services.NormalizeAuthEmail(email))
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	printMuted(out, "Share it over a trusted channel.")
	return nil
}

func RunCreateAstrologerCommand(ctx context.Context, database *gorm.DB, params CreateAstrologerParams, out io.Writer) error {
	astrologer, err := newAuthService(database).Register(ctx, services.RegistrationInput{
		Email:           params.Email,
		Name:            params.Name,
		Password:        params.Password,
		ConfirmPassword: params.Password,
	})
	if err != nil {
		validation := &services.ValidationError{}
		if errors.As(err, &validation) {
			for field, messages := range validation.Fields {
				for _, message := range messages {
					printFailure(out, "%s: %s", field, message)
				}
			}
			return errors.New("astrologer input is invalid")
		}
		if errors.Is(err, services.ErrEmailExists) {
			return fmt.Errorf("an astrologer with email %s already exists", services.NormalizeAuthEmail(params.Email))
		}
		return fmt.Errorf("create astrologer: %w", err)
	}

	printSuccess(out, "Created astrologer %s <%s>", astrologer.Name, astrologer.Email)
	printMuted(out, "id: %s", astrologer.ID)
	return nil
}

// RunSetActiveCommand toggles whether an astrologer may sign in. Existing
// sessions of a deactivated account stop working on their next request.
func RunSetActiveCommand(ctx context.Context, database *gorm.DB, email string, active bool, out io.Writer) error {
	auth := newAuthService(database)
	astrologerID, err := lookupAstrologer(ctx, auth, email)
	if err != nil {
		return err
	}
	if err := auth.SetActive(ctx, astrologerID, active); err != nil {
		return fmt.Errorf("update astrologer: %w", err)
	}

	if active {
		printSuccess(out, "Activated %s", services.NormalizeAuthEmail(email))
	} else {
		printWarning(out, "Deactivated %s", services.NormalizeAuthEmail(email))
	}
	return nil
}

// PromptNewPassword asks twice and fails when the answers differ.
func PromptNewPassword(out io.Writer, stdin *os.File) (string, error) {
	password, err := promptPassword(out, stdin, "Password: ")
	if err != nil {
		return "", err
	}
	confirmation, err := promptPassword(out, stdin, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if password != confirmation {
		return "", errPasswordConfirmation
	}
	return password, nil
}
