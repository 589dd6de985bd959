package services

import (
	"context"
	"errors"

	"github.com/terraincognita07/fortuna/internal/models"
)

const (
	AccessOwner = "owner"
	AccessEdit  = "edit"
	AccessView  = "view"
	AccessNone  = "none"

	GuardAllowed  = "allowed"
	GuardDenied   = "denied"
	GuardNotFound = "not_found"
)

type AccessClientRepository interface {
	OwnerID(ctx context.Context, clientID string) (string, error)
	Exists(ctx context.Context, clientID string) (bool, error)
	IsOwnedBy(ctx context.Context, clientID string, astrologerID string) (bool, error)
}

type AccessGrantRepository interface {
	FindByClientAndAstrologer(ctx context.Context, clientID string, astrologerID string) (models.ClientPermission, error)
	HasEditGrant(ctx context.Context, clientID string, astrologerID string) (bool, error)
	HasViewGrant(ctx context.Context, clientID string, astrologerID string) (bool, error)
}

// AccessObserver receives every access decision. The metrics package
// implements it; nil observers are replaced by a no-op.
type AccessObserver interface {
	ObserveAccessCheck(level string)
	ObserveGuard(requirement string, outcome string)
}

type noopAccessObserver struct{}

func (noopAccessObserver) ObserveAccessCheck(string) {}
func (noopAccessObserver) ObserveGuard(string, string) {}

// AccessService answers who may read or write a client's data. CheckClientAccess
// returns the full level for rendering; the Require* guards run targeted
// existence queries before each write.
type AccessService struct {
	clients  AccessClientRepository
	grants   AccessGrantRepository
	observer AccessObserver
}

func NewAccessService(clients AccessClientRepository, grants AccessGrantRepository, observer AccessObserver) *AccessService {
	if observer == nil {
		observer = noopAccessObserver{}
	}
	return &AccessService{
		clients:  clients,
		grants:   grants,
		observer: observer,
	}
}

func (service *AccessService) CheckClientAccess(ctx context.Context, actorID string, clientID string) (models.AccessLevel, error) {
	ownerID, err := service.clients.OwnerID(ctx, clientID)
	if errors.Is(err, models.ErrNotFound) {
		return models.AccessLevel{}, ErrClientNotFound
	}
	if err != nil {
		return models.AccessLevel{}, storeFailure("check", "client access", err)
	}
	if ownerID == actorID {
		service.observer.ObserveAccessCheck(AccessOwner)
		return models.OwnerAccess(), nil
	}

	permission, err := service.grants.FindByClientAndAstrologer(ctx, clientID, actorID)
	if errors.Is(err, models.ErrNotFound) {
		service.observer.ObserveAccessCheck(AccessNone)
		return models.AccessLevel{}, nil
	}
	if err != nil {
		return models.AccessLevel{}, storeFailure("check", "client access", err)
	}

	level := models.AccessLevel{CanView: permission.CanView, CanEdit: permission.CanEdit}
	service.observer.ObserveAccessCheck(accessLevelLabel(level))
	return level, nil
}

func (service *AccessService) ClientOwner(ctx context.Context, clientID string) (string, error) {
	ownerID, err := service.clients.OwnerID(ctx, clientID)
	if errors.Is(err, models.ErrNotFound) {
		return "", ErrClientNotFound
	}
	if err != nil {
		return "", storeFailure("load", "client owner", err)
	}
	return ownerID, nil
}

func (service *AccessService) RequireOwner(ctx context.Context, actorID string, clientID string) error {
	owned, err := service.clients.IsOwnedBy(ctx, clientID, actorID)
	if err != nil {
		return storeFailure("check", "client ownership", err)
	}
	if owned {
		service.observer.ObserveGuard(AccessOwner, GuardAllowed)
		return nil
	}
	return service.reject(ctx, AccessOwner, clientID, ErrOwnerRequired)
}

// RequireEditor admits the owner or an astrologer holding can_edit.
func (service *AccessService) RequireEditor(ctx context.Context, actorID string, clientID string) error {
	return service.requireGrant(ctx, AccessEdit, actorID, clientID, service.grants.HasEditGrant, ErrEditRequired)
}

func (service *AccessService) RequireViewer(ctx context.Context, actorID string, clientID string) error {
	return service.requireGrant(ctx, AccessView, actorID, clientID, service.grants.HasViewGrant, ErrViewRequired)
}

func (service *AccessService) requireGrant(
	ctx context.Context,
	requirement string,
	actorID string,
	clientID string,
	hasGrant func(context.Context, string, string) (bool, error),
	denied error,
) error {
	owned, err := service.clients.IsOwnedBy(ctx, clientID, actorID)
	if err != nil {
		return storeFailure("check", "client ownership", err)
	}
	if owned {
		service.observer.ObserveGuard(requirement, GuardAllowed)
		return nil
	}

	granted, err := hasGrant(ctx, clientID, actorID)
	if err != nil {
		return storeFailure("check", "client permission", err)
	}
	if granted {
		service.observer.ObserveGuard(requirement, GuardAllowed)
		return nil
	}
	return service.reject(ctx, requirement, clientID, denied)
}

func (service *AccessService) reject(ctx context.Context, requirement string, clientID string, denied error) error {
	exists, err := service.clients.Exists(ctx, clientID)
	if err != nil {
		return storeFailure("check", "client", err)
	}
	if !exists {
		service.observer.ObserveGuard(requirement, GuardNotFound)
		return ErrClientNotFound
	}
	service.observer.ObserveGuard(requirement, GuardDenied)
	return denied
}

func accessLevelLabel(level models.AccessLevel) string {
	switch {
	case level.IsOwner:
		return AccessOwner
	case level.CanEdit:
		return AccessEdit
	case level.CanView:
		return AccessView
	default:
		return AccessNone
	}
}
