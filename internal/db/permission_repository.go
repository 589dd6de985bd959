package db

import (
	"context"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	database *gorm.DB
}

func NewPermissionRepository(database *gorm.DB) *PermissionRepository {
	return &PermissionRepository{database: database}
}

// Create inserts a grant. The unique (client_id, astrologer_id) index turns a
// concurrent duplicate into models.ErrDuplicate.
func (repo *PermissionRepository) Create(ctx context.Context, permission *models.ClientPermission) error {
	return translateError(repo.database.WithContext(ctx).Create(permission).Error)
}

func (repo *PermissionRepository) FindByID(ctx context.Context, permissionID string) (models.ClientPermission, error) {
	var permission models.ClientPermission
	if err := repo.database.WithContext(ctx).Where("id = ?", permissionID).First(&permission).Error; err != nil {
		return models.ClientPermission{}, translateError(err)
	}
	return permission, nil
}

func (repo *PermissionRepository) FindByClientAndAstrologer(ctx context.Context, clientID string, astrologerID string) (models.ClientPermission, error) {
	var permission models.ClientPermission
	if err := repo.database.WithContext(ctx).
		Where("client_id = ? AND astrologer_id = ?", clientID, astrologerID).
		First(&permission).Error; err != nil {
		return models.ClientPermission{}, translateError(err)
	}
	return permission, nil
}

func (repo *PermissionRepository) Exists(ctx context.Context, clientID string, astrologerID string) (bool, error) {
	return repo.countMatching(ctx, repo.database.Where("client_id = ? AND astrologer_id = ?", clientID, astrologerID))
}

func (repo *PermissionRepository) HasEditGrant(ctx context.Context, clientID string, astrologerID string) (bool, error) {
	return repo.countMatching(ctx, repo.database.Where("client_id = ? AND astrologer_id = ? AND can_edit = ?", clientID, astrologerID, true))
}

func (repo *PermissionRepository) HasViewGrant(ctx context.Context, clientID string, astrologerID string) (bool, error) {
	return repo.countMatching(ctx, repo.database.Where("client_id = ? AND astrologer_id = ? AND can_view = ?", clientID, astrologerID, true))
}

func (repo *PermissionRepository) countMatching(ctx context.Context, condition *gorm.DB) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.ClientPermission{}).
		Where(condition).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *PermissionRepository) UpdateFlags(ctx context.Context, permissionID string, canView bool, canEdit bool) error {
	result := repo.database.WithContext(ctx).Model(&models.ClientPermission{}).
		Where("id = ?", permissionID).
		Updates(map[string]any{
			"can_view": canView,
			"can_edit": canEdit,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *PermissionRepository) Delete(ctx context.Context, permissionID string) error {
	result := repo.database.WithContext(ctx).Where("id = ?", permissionID).Delete(&models.ClientPermission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *PermissionRepository) ListByClient(ctx context.Context, clientID string) ([]models.PermissionWithAstrologer, error) {
	rows := make([]models.PermissionWithAstrologer, 0)
	err := repo.database.WithContext(ctx).
		Table("client_permissions").
		Select("client_permissions.*, astrologers.name AS astrologer_name, astrologers.email AS astrologer_email").
		Joins("JOIN astrologers ON astrologers.id = client_permissions.astrologer_id").
		Where("client_permissions.client_id = ?", clientID).
		Order("astrologers.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountSharedClients counts distinct clients grantedBy has shared with anyone.
func (repo *PermissionRepository) CountSharedClients(ctx context.Context, grantedBy string) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.ClientPermission{}).
		Where("granted_by = ?", grantedBy).
		Distinct("client_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
