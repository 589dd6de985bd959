package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/services"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return database
}

func createTestAstrologer(t *testing.T, database *gorm.DB, email string) {
	t.Helper()

	var out bytes.Buffer
	err := RunCreateAstrologerCommand(context.Background(), database, CreateAstrologerParams{
		Email:    email,
		Name:     "Kanya Boonmee",
		Password: "StrongPass1",
	}, &out)
	if err != nil {
		t.Fatalf("create astrologer: %v", err)
	}
}

func TestCreateAstrologerCommand(t *testing.T) {
	database := openTestDatabase(t)

	var out bytes.Buffer
	err := RunCreateAstrologerCommand(context.Background(), database, CreateAstrologerParams{
		Email:    "  Kanya@Example.com ",
		Name:     "Kanya Boonmee",
		Password: "StrongPass1",
	}, &out)
	if err != nil {
		t.Fatalf("create astrologer: %v", err)
	}
	if !strings.Contains(out.String(), "kanya@example.com") {
		t.Fatalf("expected normalized email in output, got %q", out.String())
	}

	auth := newAuthService(database)
	if _, err := auth.Authenticate(context.Background(), "kanya@example.com", "StrongPass1"); err != nil {
		t.Fatalf("expected created astrologer to sign in, got %v", err)
	}

	err = RunCreateAstrologerCommand(context.Background(), database, CreateAstrologerParams{
		Email:    "kanya@example.com",
		Name:     "Someone Else",
		Password: "StrongPass1",
	}, &out)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
}

func TestCreateAstrologerCommandReportsInvalidFields(t *testing.T) {
	database := openTestDatabase(t)

	var out bytes.Buffer
	err := RunCreateAstrologerCommand(context.Background(), database, CreateAstrologerParams{
		Email:    "kanya@example.com",
		Name:     "Kanya",
		Password: "weak",
	}, &out)
	if err == nil {
		t.Fatal("expected weak password to be rejected")
	}
	if !strings.Contains(out.String(), "password:") {
		t.Fatalf("expected password field error in output, got %q", out.String())
	}
}

func TestResetPasswordCommand(t *testing.T) {
	database := openTestDatabase(t)
	createTestAstrologer(t, database, "kanya@example.com")

	var out bytes.Buffer
	if err := RunResetPasswordCommand(context.Background(), database, "KANYA@example.com", &out); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	var temporaryPassword string
	for _, line := range strings.Split(out.String(), "\n") {
		if value, ok := strings.CutPrefix(line, "Temporary password: "); ok {
			temporaryPassword = value
		}
	}
	if len(temporaryPassword) != temporaryPasswordLength {
		t.Fatalf("expected %d character temporary password, got %q", temporaryPasswordLength, temporaryPassword)
	}

	auth := newAuthService(database)
	if _, err := auth.Authenticate(context.Background(), "kanya@example.com", "StrongPass1"); err == nil {
		t.Fatal("expected old password to stop working")
	}
	if _, err := auth.Authenticate(context.Background(), "kanya@example.com", temporaryPassword); err != nil {
		t.Fatalf("expected temporary password to work, got %v", err)
	}
}

func TestResetPasswordCommandUnknownEmail(t *testing.T) {
	database := openTestDatabase(t)

	var out bytes.Buffer
	err := RunResetPasswordCommand(context.Background(), database, "nobody@example.com", &out)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}

	err = RunResetPasswordCommand(context.Background(), database, "   ", &out)
	if err == nil || !strings.Contains(err.Error(), "valid email") {
		t.Fatalf("expected email required error, got %v", err)
	}
}

func TestSetActiveCommand(t *testing.T) {
	database := openTestDatabase(t)
	createTestAstrologer(t, database, "kanya@example.com")

	var out bytes.Buffer
	if err := RunSetActiveCommand(context.Background(), database, "kanya@example.com", false, &out); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	auth := newAuthService(database)
	if _, err := auth.Authenticate(context.Background(), "kanya@example.com", "StrongPass1"); err != services.ErrAstrologerInactive {
		t.Fatalf("expected inactive error, got %v", err)
	}

	if err := RunSetActiveCommand(context.Background(), database, "kanya@example.com", true, &out); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), "kanya@example.com", "StrongPass1"); err != nil {
		t.Fatalf("expected active astrologer to sign in, got %v", err)
	}
}

func TestPromptNewPasswordFromPipe(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "matching", input: "StrongPass1\nStrongPass1\n", want: "StrongPass1"},
		{name: "mismatch", input: "StrongPass1\nStrongPass2\n", wantErr: true},
		{name: "windows line endings", input: "StrongPass1\r\nStrongPass1\r\n", want: "StrongPass1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stdin := pipeInput(t, test.input)

			var out bytes.Buffer
			got, err := PromptNewPassword(&out, stdin)
			if test.wantErr {
				if err == nil {
					t.Fatal("expected mismatch error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PromptNewPassword returned error: %v", err)
			}
			if got != test.want {
				t.Fatalf("PromptNewPassword = %q, want %q", got, test.want)
			}
		})
	}
}

func TestPromptPasswordWithoutStdin(t *testing.T) {
	if _, err := promptPassword(&bytes.Buffer{}, nil, "Password: "); err == nil {
		t.Fatal("expected error for nil stdin")
	}
}

// pipeInput returns the read end of a pipe holding input followed by EOF.
func pipeInput(t *testing.T, input string) *os.File {
	t.Helper()

	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })

	if _, err := writer.WriteString(input); err != nil {
		t.Fatalf("write pipe: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close pipe writer: %v", err)
	}
	return reader
}
