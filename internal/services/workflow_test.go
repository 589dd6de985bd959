package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/fortuna/internal/models"
)

func TestClientUpdateWithoutPermissionLeavesRowUnchanged(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	stranger := env.createAstrologer(t, "stranger@example.com", "Stranger")
	client := env.createClient(t, owner.ID, "Malee")

	input := validClientInput("Renamed")
	_, err := env.clients.Update(ctx, stranger.ID, client.ID, input)
	if !errors.Is(err, ErrEditRequired) {
		t.Fatalf("expected ErrEditRequired, got %v", err)
	}

	stored, err := env.repos.Clients.FindByID(ctx, client.ID)
	if err != nil {
		t.Fatalf("load client: %v", err)
	}
	if stored.FirstName != "Malee" {
		t.Fatalf("expected first name to stay Malee, got %q", stored.FirstName)
	}
}

func TestViewGrantAllowsReadButNotWrite(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	viewer := env.createAstrologer(t, "viewer@example.com", "Viewer")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, viewer.ID, false)

	detail, err := env.clients.Detail(ctx, viewer.ID, client.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessLevel{CanView: true}, detail.Access)
	assert.Len(t, detail.Permissions, 1)

	err = env.clients.UpdateNotes(ctx, viewer.ID, client.ID, "viewer notes")
	require.ErrorIs(t, err, ErrEditRequired)

	_, err = env.tarot.Create(ctx, viewer.ID, client.ID, validTarotInput())
	require.ErrorIs(t, err, ErrEditRequired)

	sessions, err := env.repos.Tarot.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestEditGrantAllowsUpdateButNotDelete(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, editor.ID, true)

	updated, err := env.clients.Update(ctx, editor.ID, client.ID, validClientInput("Mali"))
	require.NoError(t, err)
	assert.Equal(t, "Mali", updated.FirstName)
	assert.Equal(t, owner.ID, updated.CreatedBy)

	err = env.clients.Delete(ctx, editor.ID, client.ID)
	require.ErrorIs(t, err, ErrOwnerRequired)

	exists, err := env.repos.Clients.Exists(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOwnerFlagMatchesCreator(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, editor.ID, true)

	ownerLevel, err := env.access.CheckClientAccess(ctx, owner.ID, client.ID)
	require.NoError(t, err)
	editorLevel, err := env.access.CheckClientAccess(ctx, editor.ID, client.ID)
	require.NoError(t, err)

	assert.True(t, ownerLevel.IsOwner)
	assert.False(t, editorLevel.IsOwner)
	assert.True(t, editorLevel.CanEdit)
}

func TestGrantRejectsDuplicateWithoutWritingRow(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	reader := env.createAstrologer(t, "reader@example.com", "Reader")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, reader.ID, false)

	_, err := env.permissions.Grant(ctx, owner.ID, client.ID, GrantInput{AstrologerID: reader.ID, CanView: true, CanEdit: true})
	require.ErrorIs(t, err, ErrPermissionExists)
	assert.Equal(t, "Permission already exists for this astrologer.", FailureMessage(err))

	permissions, err := env.repos.Permissions.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, permissions, 1)
	assert.False(t, permissions[0].CanEdit)
}

func TestGrantRules(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	third := env.createAstrologer(t, "third@example.com", "Third")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, editor.ID, true)

	_, err := env.permissions.Grant(ctx, owner.ID, client.ID, GrantInput{AstrologerID: owner.ID, CanView: true})
	assert.ErrorIs(t, err, ErrSelfGrant)

	_, err = env.permissions.Grant(ctx, editor.ID, client.ID, GrantInput{AstrologerID: third.ID, CanView: true})
	assert.ErrorIs(t, err, ErrShareOwnerRequired)
	assert.Equal(t, "Unauthorized: Only the client owner can share access.", FailureMessage(err))

	_, err = env.permissions.Grant(ctx, owner.ID, client.ID, GrantInput{AstrologerID: "not-a-uuid"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "astrologer_id")

	permission, err := env.permissions.Grant(ctx, owner.ID, client.ID, GrantInput{AstrologerID: third.ID, CanEdit: true})
	require.NoError(t, err)
	assert.True(t, permission.CanView, "edit grant implies view")
}

func TestPermissionLifecycle(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	reader := env.createAstrologer(t, "reader@example.com", "Reader")
	client := env.createClient(t, owner.ID, "Malee")
	permission := env.grant(t, owner.ID, client.ID, reader.ID, false)

	toggled, err := env.permissions.ToggleEdit(ctx, owner.ID, permission.ID)
	require.NoError(t, err)
	assert.True(t, toggled.CanEdit)
	require.NoError(t, env.access.RequireEditor(ctx, reader.ID, client.ID))

	_, err = env.permissions.ToggleEdit(ctx, reader.ID, permission.ID)
	require.ErrorIs(t, err, ErrShareOwnerRequired)

	require.NoError(t, env.permissions.Revoke(ctx, owner.ID, permission.ID))
	level, err := env.access.CheckClientAccess(ctx, reader.ID, client.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessLevel{}, level)

	err = env.permissions.Revoke(ctx, owner.ID, permission.ID)
	assert.ErrorIs(t, err, ErrPermissionNotFound)
	assert.Contains(t, env.views.invalidated, reader.ID)
}

func TestProfileTypeIsUniquePerClient(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	client := env.createClient(t, owner.ID, "Malee")

	input := ProfileInput{AstrologyType: models.AstrologyThai, ChartData: map[string]any{"lagna": "leo"}}
	_, err := env.profiles.Create(ctx, owner.ID, client.ID, input)
	require.NoError(t, err)

	_, err = env.profiles.Create(ctx, owner.ID, client.ID, input)
	require.ErrorIs(t, err, ErrProfileTypeExists)
	assert.Equal(t, "A thai profile already exists for this client.", FailureMessage(err))

	_, err = env.profiles.Create(ctx, owner.ID, client.ID, ProfileInput{AstrologyType: models.AstrologyVedic, ChartDataJSON: "[1,2]"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Invalid chart data format", validationErr.Fields["chart_data"][0])
}

func TestTarotDeleteIsOwnerOnly(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, editor.ID, true)

	authored, err := env.tarot.Create(ctx, editor.ID, client.ID, validTarotInput())
	require.NoError(t, err)

	err = env.tarot.Delete(ctx, editor.ID, authored.ID)
	require.ErrorIs(t, err, ErrOwnerRequired, "authors with edit cannot delete")
	stored, err := env.repos.Tarot.FindByID(ctx, authored.ID)
	require.NoError(t, err)
	assert.Equal(t, authored.ID, stored.ID)

	require.NoError(t, env.tarot.Delete(ctx, owner.ID, authored.ID))
	sessions, err := env.repos.Tarot.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestTarotInterpretationNeedsEditEvenForAuthor(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	client := env.createClient(t, owner.ID, "Malee")
	grant := env.grant(t, owner.ID, client.ID, editor.ID, true)

	session, err := env.tarot.Create(ctx, editor.ID, client.ID, validTarotInput())
	require.NoError(t, err)
	require.NoError(t, env.tarot.UpdateInterpretation(ctx, editor.ID, session.ID, "Revised reading."))

	_, err = env.permissions.Update(ctx, owner.ID, grant.ID, true, false)
	require.NoError(t, err)

	err = env.tarot.UpdateInterpretation(ctx, editor.ID, session.ID, "Rewritten after losing edit.")
	require.ErrorIs(t, err, ErrEditRequired)
	stored, err := env.repos.Tarot.FindByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revised reading.", stored.Interpretation)
	assert.Len(t, stored.CardsDrawn, 3)
}

func TestPartialUpdatesInvalidateViews(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	editor := env.createAstrologer(t, "editor@example.com", "Editor")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, editor.ID, true)

	profile, err := env.profiles.Create(ctx, owner.ID, client.ID, ProfileInput{AstrologyType: models.AstrologyWestern, ChartDataJSON: `{"sun":"aries"}`})
	require.NoError(t, err)
	session, err := env.tarot.Create(ctx, owner.ID, client.ID, validTarotInput())
	require.NoError(t, err)

	env.views.invalidated = nil
	require.NoError(t, env.clients.UpdateNotes(ctx, owner.ID, client.ID, "Prefers morning readings."))
	assert.ElementsMatch(t, []string{owner.ID}, env.views.invalidated)

	env.views.invalidated = nil
	require.NoError(t, env.clients.UpdateNotes(ctx, editor.ID, client.ID, "Moved to Chiang Mai."))
	assert.ElementsMatch(t, []string{editor.ID, owner.ID}, env.views.invalidated)

	env.views.invalidated = nil
	require.NoError(t, env.profiles.UpdateInterpretation(ctx, editor.ID, profile.ID, "Strong fire emphasis."))
	assert.ElementsMatch(t, []string{editor.ID, owner.ID}, env.views.invalidated)

	env.views.invalidated = nil
	require.NoError(t, env.tarot.UpdateInterpretation(ctx, owner.ID, session.ID, "Renewal confirmed."))
	assert.Contains(t, env.views.invalidated, owner.ID)
}

func TestClientDeleteCascadesAndInvalidatesGrantees(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	reader := env.createAstrologer(t, "reader@example.com", "Reader")
	client := env.createClient(t, owner.ID, "Malee")
	env.grant(t, owner.ID, client.ID, reader.ID, false)

	_, err := env.profiles.Create(ctx, owner.ID, client.ID, ProfileInput{AstrologyType: models.AstrologyWestern, ChartDataJSON: `{"sun":"aries"}`})
	require.NoError(t, err)
	_, err = env.tarot.Create(ctx, owner.ID, client.ID, validTarotInput())
	require.NoError(t, err)

	env.views.invalidated = nil
	require.NoError(t, env.clients.Delete(ctx, owner.ID, client.ID))
	assert.ElementsMatch(t, []string{owner.ID, reader.ID}, env.views.invalidated)

	profiles, err := env.repos.Profiles.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	permissions, err := env.repos.Permissions.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, permissions)

	err = env.clients.Delete(ctx, owner.ID, client.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientListingAndSearch(t *testing.T) {
	env := newWorkflowTestEnv(t)
	ctx := context.Background()
	owner := env.createAstrologer(t, "owner@example.com", "Owner")
	reader := env.createAstrologer(t, "reader@example.com", "Reader")
	for _, name := range []string{"Anong", "Busaba", "Chanida"} {
		env.createClient(t, owner.ID, name)
	}
	shared := env.createClient(t, reader.ID, "Dara")
	env.grant(t, reader.ID, shared.ID, owner.ID, false)

	page, err := env.clients.ListOwned(ctx, owner.ID, ClientQuery{Search: "busa", Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Clients, 1)
	assert.Equal(t, "Busaba", page.Clients[0].FirstName)

	found, err := env.clients.SearchAccessible(ctx, owner.ID, "dara")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, shared.ID, found[0].ID)

	empty, err := env.clients.SearchAccessible(ctx, owner.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
