package services

import (
	"context"
	"errors"
	"strings"

	"github.com/terraincognita07/fortuna/internal/models"
)

type PermissionRepository interface {
	Create(ctx context.Context, permission *models.ClientPermission) error
	FindByID(ctx context.Context, permissionID string) (models.ClientPermission, error)
	Exists(ctx context.Context, clientID string, astrologerID string) (bool, error)
	UpdateFlags(ctx context.Context, permissionID string, canView bool, canEdit bool) error
	Delete(ctx context.Context, permissionID string) error
	ListByClient(ctx context.Context, clientID string) ([]models.PermissionWithAstrologer, error)
	CountSharedClients(ctx context.Context, grantedBy string) (int64, error)
}

type PermissionAstrologerRepository interface {
	IsActive(ctx context.Context, astrologerID string) (bool, error)
	ListAvailableForClient(ctx context.Context, clientID string, excludeID string) ([]models.AstrologerSummary, error)
}

type GrantInput struct {
	AstrologerID string `json:"astrologer_id" form:"astrologer_id"`
	CanView      bool   `json:"can_view" form:"can_view"`
	CanEdit      bool   `json:"can_edit" form:"can_edit"`
}

// PermissionService runs the grant lifecycle: absent, granted, edited,
// revoked. Every transition is owner only.
type PermissionService struct {
	permissions PermissionRepository
	astrologers PermissionAstrologerRepository
	access      ClientAccessGuard
	views       ViewInvalidator
}

func NewPermissionService(
	permissions PermissionRepository,
	astrologers PermissionAstrologerRepository,
	access ClientAccessGuard,
	views ViewInvalidator,
) *PermissionService {
	return &PermissionService{
		permissions: permissions,
		astrologers: astrologers,
		access:      access,
		views:       viewInvalidatorOrNoop(views),
	}
}

func (service *PermissionService) Grant(ctx context.Context, actorID string, clientID string, input GrantInput) (models.ClientPermission, error) {
	if err := service.requireOwner(ctx, actorID, clientID); err != nil {
		return models.ClientPermission{}, err
	}

	astrologerID := strings.TrimSpace(input.AstrologerID)
	if astrologerID == "" || !models.IsValidID(astrologerID) {
		validation := &ValidationError{}
		validation.add("astrologer_id", "Select an astrologer.")
		return models.ClientPermission{}, validation
	}
	if astrologerID == actorID {
		return models.ClientPermission{}, ErrSelfGrant
	}

	active, err := service.astrologers.IsActive(ctx, astrologerID)
	if err != nil {
		return models.ClientPermission{}, storeFailure("share", "client", err)
	}
	if !active {
		return models.ClientPermission{}, ErrAstrologerNotFound
	}

	exists, err := service.permissions.Exists(ctx, clientID, astrologerID)
	if err != nil {
		return models.ClientPermission{}, storeFailure("share", "client", err)
	}
	if exists {
		return models.ClientPermission{}, ErrPermissionExists
	}

	permission := models.ClientPermission{
		ClientID:     clientID,
		AstrologerID: astrologerID,
		CanView:      input.CanView || input.CanEdit,
		CanEdit:      input.CanEdit,
		GrantedBy:    actorID,
	}
	if err := service.permissions.Create(ctx, &permission); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.ClientPermission{}, ErrPermissionExists
		}
		return models.ClientPermission{}, storeFailure("share", "client", err)
	}
	service.views.InvalidateAstrologerViews(ctx, actorID, astrologerID)
	return permission, nil
}

func (service *PermissionService) Update(ctx context.Context, actorID string, permissionID string, canView bool, canEdit bool) (models.ClientPermission, error) {
	permission, err := service.loadForOwner(ctx, actorID, permissionID)
	if err != nil {
		return models.ClientPermission{}, err
	}
	return service.applyFlags(ctx, actorID, permission, canView, canEdit)
}

// ToggleEdit flips can_edit. Granting edit also grants view.
func (service *PermissionService) ToggleEdit(ctx context.Context, actorID string, permissionID string) (models.ClientPermission, error) {
	permission, err := service.loadForOwner(ctx, actorID, permissionID)
	if err != nil {
		return models.ClientPermission{}, err
	}
	return service.applyFlags(ctx, actorID, permission, permission.CanView, !permission.CanEdit)
}

func (service *PermissionService) applyFlags(ctx context.Context, actorID string, permission models.ClientPermission, canView bool, canEdit bool) (models.ClientPermission, error) {
	permission.CanView = canView || canEdit
	permission.CanEdit = canEdit
	if err := service.permissions.UpdateFlags(ctx, permission.ID, permission.CanView, permission.CanEdit); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ClientPermission{}, ErrPermissionNotFound
		}
		return models.ClientPermission{}, storeFailure("update", "permission", err)
	}
	service.views.InvalidateAstrologerViews(ctx, actorID, permission.AstrologerID)
	return permission, nil
}

func (service *PermissionService) Revoke(ctx context.Context, actorID string, permissionID string) error {
	permission, err := service.loadForOwner(ctx, actorID, permissionID)
	if err != nil {
		return err
	}
	if err := service.permissions.Delete(ctx, permission.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return storeFailure("revoke", "permission", err)
	}
	service.views.InvalidateAstrologerViews(ctx, actorID, permission.AstrologerID)
	return nil
}

// Get returns one grant to the client owner or to the astrologer it names.
func (service *PermissionService) Get(ctx context.Context, actorID string, permissionID string) (models.ClientPermission, error) {
	permission, err := service.permissions.FindByID(ctx, permissionID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ClientPermission{}, ErrPermissionNotFound
	}
	if err != nil {
		return models.ClientPermission{}, storeFailure("load", "permission", err)
	}
	if permission.AstrologerID == actorID {
		return permission, nil
	}
	if err := service.access.RequireOwner(ctx, actorID, permission.ClientID); err != nil {
		return models.ClientPermission{}, err
	}
	return permission, nil
}

// ListForClient is visible to the owner and to any astrologer holding a
// grant on the client.
func (service *PermissionService) ListForClient(ctx context.Context, actorID string, clientID string) ([]models.PermissionWithAstrologer, error) {
	level, err := service.access.CheckClientAccess(ctx, actorID, clientID)
	if err != nil {
		return nil, err
	}
	if !level.IsOwner && !level.CanView && !level.CanEdit {
		return nil, ErrViewRequired
	}
	permissions, err := service.permissions.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeFailure("load", "permissions", err)
	}
	return permissions, nil
}

func (service *PermissionService) AvailableAstrologers(ctx context.Context, actorID string, clientID string) ([]models.AstrologerSummary, error) {
	if err := service.requireOwner(ctx, actorID, clientID); err != nil {
		return nil, err
	}
	astrologers, err := service.astrologers.ListAvailableForClient(ctx, clientID, actorID)
	if err != nil {
		return nil, storeFailure("load", "astrologers", err)
	}
	return astrologers, nil
}

func (service *PermissionService) SharedClientCount(ctx context.Context, actorID string) (int64, error) {
	count, err := service.permissions.CountSharedClients(ctx, actorID)
	if err != nil {
		return 0, storeFailure("count", "shared clients", err)
	}
	return count, nil
}

func (service *PermissionService) loadForOwner(ctx context.Context, actorID string, permissionID string) (models.ClientPermission, error) {
	permission, err := service.permissions.FindByID(ctx, permissionID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ClientPermission{}, ErrPermissionNotFound
	}
	if err != nil {
		return models.ClientPermission{}, storeFailure("load", "permission", err)
	}
	if err := service.requireOwner(ctx, actorID, permission.ClientID); err != nil {
		return models.ClientPermission{}, err
	}
	return permission, nil
}

func (service *PermissionService) requireOwner(ctx context.Context, actorID string, clientID string) error {
	err := service.access.RequireOwner(ctx, actorID, clientID)
	if errors.Is(err, ErrOwnerRequired) {
		return ErrShareOwnerRequired
	}
	return err
}
