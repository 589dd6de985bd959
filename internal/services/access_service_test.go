package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/fortuna/internal/models"
)

type stubAccessClients struct {
	owners map[string]string
	err    error
}

func (stub stubAccessClients) OwnerID(_ context.Context, clientID string) (string, error) {
	if stub.err != nil {
		return "", stub.err
	}
	ownerID, ok := stub.owners[clientID]
	if !ok {
		return "", models.ErrNotFound
	}
	return ownerID, nil
}

func (stub stubAccessClients) Exists(_ context.Context, clientID string) (bool, error) {
	if stub.err != nil {
		return false, stub.err
	}
	_, ok := stub.owners[clientID]
	return ok, nil
}

func (stub stubAccessClients) IsOwnedBy(_ context.Context, clientID string, astrologerID string) (bool, error) {
	if stub.err != nil {
		return false, stub.err
	}
	return stub.owners[clientID] == astrologerID, nil
}

type stubAccessGrants struct {
	grants map[string]models.ClientPermission
}

func grantKey(clientID string, astrologerID string) string {
	return clientID + "/" + astrologerID
}

func (stub stubAccessGrants) FindByClientAndAstrologer(_ context.Context, clientID string, astrologerID string) (models.ClientPermission, error) {
	permission, ok := stub.grants[grantKey(clientID, astrologerID)]
	if !ok {
		return models.ClientPermission{}, models.ErrNotFound
	}
	return permission, nil
}

func (stub stubAccessGrants) HasEditGrant(_ context.Context, clientID string, astrologerID string) (bool, error) {
	return stub.grants[grantKey(clientID, astrologerID)].CanEdit, nil
}

func (stub stubAccessGrants) HasViewGrant(_ context.Context, clientID string, astrologerID string) (bool, error) {
	return stub.grants[grantKey(clientID, astrologerID)].CanView, nil
}

type recordingAccessObserver struct {
	checks []string
	guards []string
}

func (observer *recordingAccessObserver) ObserveAccessCheck(level string) {
	observer.checks = append(observer.checks, level)
}

func (observer *recordingAccessObserver) ObserveGuard(requirement string, outcome string) {
	observer.guards = append(observer.guards, requirement+":"+outcome)
}

func newStubAccessService(observer AccessObserver) *AccessService {
	clients := stubAccessClients{owners: map[string]string{"client-1": "owner"}}
	grants := stubAccessGrants{grants: map[string]models.ClientPermission{
		grantKey("client-1", "viewer"):   {CanView: true},
		grantKey("client-1", "editor"):   {CanView: true, CanEdit: true},
		grantKey("client-1", "disabled"): {},
	}}
	return NewAccessService(clients, grants, observer)
}

func TestCheckClientAccessLevels(t *testing.T) {
	service := newStubAccessService(nil)
	ctx := context.Background()

	tests := []struct {
		actor string
		want  models.AccessLevel
	}{
		{actor: "owner", want: models.AccessLevel{CanView: true, CanEdit: true, IsOwner: true}},
		{actor: "editor", want: models.AccessLevel{CanView: true, CanEdit: true}},
		{actor: "viewer", want: models.AccessLevel{CanView: true}},
		{actor: "disabled", want: models.AccessLevel{}},
		{actor: "stranger", want: models.AccessLevel{}},
	}

	for _, testCase := range tests {
		t.Run(testCase.actor, func(t *testing.T) {
			level, err := service.CheckClientAccess(ctx, testCase.actor, "client-1")
			require.NoError(t, err)
			assert.Equal(t, testCase.want, level)
		})
	}
}

func TestCheckClientAccessReportsMissingClient(t *testing.T) {
	service := newStubAccessService(nil)

	_, err := service.CheckClientAccess(context.Background(), "owner", "missing")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCheckClientAccessWrapsStoreFailure(t *testing.T) {
	service := NewAccessService(stubAccessClients{err: errors.New("disk full")}, stubAccessGrants{}, nil)

	_, err := service.CheckClientAccess(context.Background(), "owner", "client-1")
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, "Database Error: Failed to check client access.", FailureMessage(err))
}

func TestMutationGuards(t *testing.T) {
	service := newStubAccessService(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		guard   func(context.Context, string, string) error
		actor   string
		client  string
		wantErr error
	}{
		{name: "owner passes owner guard", guard: service.RequireOwner, actor: "owner", client: "client-1"},
		{name: "editor fails owner guard", guard: service.RequireOwner, actor: "editor", client: "client-1", wantErr: ErrOwnerRequired},
		{name: "owner passes editor guard", guard: service.RequireEditor, actor: "owner", client: "client-1"},
		{name: "editor passes editor guard", guard: service.RequireEditor, actor: "editor", client: "client-1"},
		{name: "viewer fails editor guard", guard: service.RequireEditor, actor: "viewer", client: "client-1", wantErr: ErrEditRequired},
		{name: "viewer passes viewer guard", guard: service.RequireViewer, actor: "viewer", client: "client-1"},
		{name: "stranger fails viewer guard", guard: service.RequireViewer, actor: "stranger", client: "client-1", wantErr: ErrViewRequired},
		{name: "missing client is not found", guard: service.RequireEditor, actor: "editor", client: "missing", wantErr: ErrClientNotFound},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.guard(ctx, testCase.actor, testCase.client)
			if testCase.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, testCase.wantErr)
		})
	}
}

func TestGuardDenialsWrapAccessDenied(t *testing.T) {
	service := newStubAccessService(nil)

	err := service.RequireEditor(context.Background(), "viewer", "client-1")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, "Unauthorized: You do not have permission to edit this client.", FailureMessage(err))
}

func TestAccessServiceReportsDecisionsToObserver(t *testing.T) {
	observer := &recordingAccessObserver{}
	service := newStubAccessService(observer)
	ctx := context.Background()

	_, _ = service.CheckClientAccess(ctx, "viewer", "client-1")
	_ = service.RequireEditor(ctx, "viewer", "client-1")
	_ = service.RequireOwner(ctx, "owner", "missing")

	assert.Equal(t, []string{AccessView}, observer.checks)
	assert.Equal(t, []string{"edit:denied", "owner:not_found"}, observer.guards)
}
