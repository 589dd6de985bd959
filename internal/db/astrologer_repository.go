package db

import (
	"context"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/gorm"
)

type AstrologerRepository struct {
	database *gorm.DB
}

func NewAstrologerRepository(database *gorm.DB) *AstrologerRepository {
	return &AstrologerRepository{database: database}
}

func (repo *AstrologerRepository) Create(ctx context.Context, astrologer *models.Astrologer) error {
	return translateError(repo.database.WithContext(ctx).Create(astrologer).Error)
}

func (repo *AstrologerRepository) FindByID(ctx context.Context, astrologerID string) (models.Astrologer, error) {
	var astrologer models.Astrologer
	if err := repo.database.WithContext(ctx).Where("id = ?", astrologerID).First(&astrologer).Error; err != nil {
		return models.Astrologer{}, translateError(err)
	}
	return astrologer, nil
}

func (repo *AstrologerRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.Astrologer, error) {
	var astrologer models.Astrologer
	if err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email).First(&astrologer).Error; err != nil {
		return models.Astrologer{}, translateError(err)
	}
	return astrologer, nil
}

func (repo *AstrologerRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Astrologer{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *AstrologerRepository) IsActive(ctx context.Context, astrologerID string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Astrologer{}).
		Where("id = ? AND is_active = ?", astrologerID, true).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *AstrologerRepository) UpdatePassword(ctx context.Context, astrologerID string, passwordHash string) error {
	result := repo.database.WithContext(ctx).Model(&models.Astrologer{}).
		Where("id = ?", astrologerID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *AstrologerRepository) SetActive(ctx context.Context, astrologerID string, active bool) error {
	result := repo.database.WithContext(ctx).Model(&models.Astrologer{}).
		Where("id = ?", astrologerID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListAvailableForClient returns active astrologers, other than excludeID,
// that hold no grant on the client yet.
func (repo *AstrologerRepository) ListAvailableForClient(ctx context.Context, clientID string, excludeID string) ([]models.AstrologerSummary, error) {
	summaries := make([]models.AstrologerSummary, 0)
	err := repo.database.WithContext(ctx).Model(&models.Astrologer{}).
		Select("id", "name", "email").
		Where("is_active = ? AND id <> ?", true, excludeID).
		Where("id NOT IN (?)", repo.database.Model(&models.ClientPermission{}).Select("astrologer_id").Where("client_id = ?", clientID)).
		Order("name ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
