package db

import (
	"context"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.AstrologyProfile) error {
	return translateError(repo.database.WithContext(ctx).Create(profile).Error)
}

func (repo *ProfileRepository) FindByID(ctx context.Context, profileID string) (models.AstrologyProfile, error) {
	var profile models.AstrologyProfile
	if err := repo.database.WithContext(ctx).Where("id = ?", profileID).First(&profile).Error; err != nil {
		return models.AstrologyProfile{}, translateError(err)
	}
	return profile, nil
}

func (repo *ProfileRepository) FindByClientAndType(ctx context.Context, clientID string, astrologyType string) (models.AstrologyProfile, error) {
	var profile models.AstrologyProfile
	if err := repo.database.WithContext(ctx).
		Where("client_id = ? AND astrology_type = ?", clientID, astrologyType).
		First(&profile).Error; err != nil {
		return models.AstrologyProfile{}, translateError(err)
	}
	return profile, nil
}

// ExistsForClientType reports whether another profile of astrologyType is
// already attached to the client. excludeID skips the profile being edited.
func (repo *ProfileRepository) ExistsForClientType(ctx context.Context, clientID string, astrologyType string, excludeID string) (bool, error) {
	query := repo.database.WithContext(ctx).Model(&models.AstrologyProfile{}).
		Where("client_id = ? AND astrology_type = ?", clientID, astrologyType)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var matched int64
	if err := query.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ProfileRepository) ListByClient(ctx context.Context, clientID string) ([]models.AstrologyProfile, error) {
	profiles := make([]models.AstrologyProfile, 0)
	if err := repo.database.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("astrology_type ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) Update(ctx context.Context, profileID string, astrologyType string, chartData datatypes.JSONMap, interpretation string) error {
	result := repo.database.WithContext(ctx).Model(&models.AstrologyProfile{}).
		Where("id = ?", profileID).
		Updates(map[string]any{
			"astrology_type": astrologyType,
			"chart_data":     chartData,
			"interpretation": interpretation,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *ProfileRepository) UpdateInterpretation(ctx context.Context, profileID string, interpretation string) error {
	result := repo.database.WithContext(ctx).Model(&models.AstrologyProfile{}).
		Where("id = ?", profileID).
		Update("interpretation", interpretation)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *ProfileRepository) Delete(ctx context.Context, profileID string) error {
	result := repo.database.WithContext(ctx).Where("id = ?", profileID).Delete(&models.AstrologyProfile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountByTypeForOwner groups the profiles of every client the owner created.
func (repo *ProfileRepository) CountByTypeForOwner(ctx context.Context, ownerID string) ([]models.ProfileTypeCount, error) {
	counts := make([]models.ProfileTypeCount, 0, len(models.AstrologyTypes))
	err := repo.database.WithContext(ctx).Model(&models.AstrologyProfile{}).
		Select("astrology_type, COUNT(*) AS count").
		Where("client_id IN (?)", repo.database.Model(&models.Client{}).Select("id").Where("created_by = ?", ownerID)).
		Group("astrology_type").
		Order("astrology_type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
