package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/models"
)

type recordingViewInvalidator struct {
	invalidated []string
}

func (recorder *recordingViewInvalidator) InvalidateAstrologerViews(_ context.Context, astrologerIDs ...string) {
	recorder.invalidated = append(recorder.invalidated, astrologerIDs...)
}

type workflowTestEnv struct {
	repos       *db.Repositories
	access      *AccessService
	clients     *ClientService
	profiles    *ProfileService
	tarot       *TarotService
	permissions *PermissionService
	views       *recordingViewInvalidator
}

func newWorkflowTestEnv(t *testing.T) workflowTestEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "fortuna-services.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("load sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	repos := db.NewRepositories(database)
	views := &recordingViewInvalidator{}
	access := NewAccessService(repos.Clients, repos.Permissions, nil)
	return workflowTestEnv{
		repos:       repos,
		access:      access,
		clients:     NewClientService(repos.Clients, repos.Profiles, repos.Tarot, repos.Permissions, access, views),
		profiles:    NewProfileService(repos.Profiles, access, views),
		tarot:       NewTarotService(repos.Tarot, repos.Clients, access, views),
		permissions: NewPermissionService(repos.Permissions, repos.Astrologers, access, views),
		views:       views,
	}
}

func (env workflowTestEnv) createAstrologer(t *testing.T, email string, name string) models.Astrologer {
	t.Helper()
	astrologer := models.Astrologer{
		Email:        email,
		PasswordHash: "hash",
		Name:         name,
		IsActive:     true,
	}
	if err := env.repos.Astrologers.Create(context.Background(), &astrologer); err != nil {
		t.Fatalf("create astrologer %s: %v", email, err)
	}
	return astrologer
}

func (env workflowTestEnv) createClient(t *testing.T, ownerID string, firstName string) models.Client {
	t.Helper()
	client, err := env.clients.Create(context.Background(), ownerID, validClientInput(firstName))
	if err != nil {
		t.Fatalf("create client %s: %v", firstName, err)
	}
	return client
}

func (env workflowTestEnv) grant(t *testing.T, ownerID string, clientID string, astrologerID string, canEdit bool) models.ClientPermission {
	t.Helper()
	permission, err := env.permissions.Grant(context.Background(), ownerID, clientID, GrantInput{
		AstrologerID: astrologerID,
		CanView:      true,
		CanEdit:      canEdit,
	})
	if err != nil {
		t.Fatalf("grant %s on %s: %v", astrologerID, clientID, err)
	}
	return permission
}

func validClientInput(firstName string) ClientInput {
	return ClientInput{
		FirstName:  firstName,
		LastName:   "Wongsa",
		Gender:     models.GenderFemale,
		BirthDate:  "1988-11-02",
		BirthTime:  "21:15",
		BirthPlace: "Bangkok",
	}
}

func validTarotInput() TarotInput {
	return TarotInput{
		SessionDate: time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
		SpreadType:  models.SpreadThreeCard,
		Question:    "Career direction",
		Cards: []models.TarotCard{
			{CardName: "The Star", Position: "past"},
			{CardName: "The Tower", Position: "present", IsReversed: true},
			{CardName: "The Sun", Position: "future"},
		},
		Interpretation: "Renewal after upheaval.",
	}
}
