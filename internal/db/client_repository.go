package db

import (
	"context"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/gorm"
)

const clientSearchCondition = `(LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\' OR LOWER(nickname) LIKE ? ESCAPE '\' OR LOWER(birth_place) LIKE ? ESCAPE '\')`

type ClientFilter struct {
	Search string
	Gender string
	Offset int
	Limit  int
}

type ClientRepository struct {
	database *gorm.DB
}

func NewClientRepository(database *gorm.DB) *ClientRepository {
	return &ClientRepository{database: database}
}

func (repo *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	return translateError(repo.database.WithContext(ctx).Create(client).Error)
}

func (repo *ClientRepository) FindByID(ctx context.Context, clientID string) (models.Client, error) {
	var client models.Client
	if err := repo.database.WithContext(ctx).Where("id = ?", clientID).First(&client).Error; err != nil {
		return models.Client{}, translateError(err)
	}
	return client, nil
}

func (repo *ClientRepository) FindByIDs(ctx context.Context, clientIDs []string) ([]models.Client, error) {
	clients := make([]models.Client, 0, len(clientIDs))
	if len(clientIDs) == 0 {
		return clients, nil
	}
	if err := repo.database.WithContext(ctx).Where("id IN ?", clientIDs).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// OwnerID returns created_by for the client.
func (repo *ClientRepository) OwnerID(ctx context.Context, clientID string) (string, error) {
	var ownerIDs []string
	if err := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Limit(1).
		Pluck("created_by", &ownerIDs).Error; err != nil {
		return "", err
	}
	if len(ownerIDs) == 0 {
		return "", models.ErrNotFound
	}
	return ownerIDs[0], nil
}

func (repo *ClientRepository) Exists(ctx context.Context, clientID string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ClientRepository) IsOwnedBy(ctx context.Context, clientID string, astrologerID string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("id = ? AND created_by = ?", clientID, astrologerID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

// Update persists the editable fields. created_by is never written.
func (repo *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	result := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", client.ID).
		Updates(map[string]any{
			"first_name":      client.FirstName,
			"last_name":       client.LastName,
			"nickname":        client.Nickname,
			"gender":          client.Gender,
			"birth_date":      client.BirthDate,
			"birth_time":      client.BirthTime,
			"birth_place":     client.BirthPlace,
			"birth_latitude":  client.BirthLatitude,
			"birth_longitude": client.BirthLongitude,
			"contact_phone":   client.ContactPhone,
			"contact_email":   client.ContactEmail,
			"notes":           client.Notes,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *ClientRepository) UpdateNotes(ctx context.Context, clientID string, notes string) error {
	result := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("notes", notes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the client together with its profiles, sessions
// and permission grants in one transaction.
func (repo *ClientRepository) DeleteCascade(ctx context.Context, clientID string) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", clientID).Delete(&models.ClientPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.TarotSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.AstrologyProfile{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", clientID).Delete(&models.Client{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func (repo *ClientRepository) ListByOwner(ctx context.Context, ownerID string, filter ClientFilter) ([]models.Client, int64, error) {
	query := repo.database.WithContext(ctx).Model(&models.Client{}).Where("created_by = ?", ownerID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(clientSearchCondition, pattern, pattern, pattern, pattern)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]models.Client, 0)
	page := query.Order("created_at DESC").Order("id ASC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := page.Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (repo *ClientRepository) ListShared(ctx context.Context, astrologerID string) ([]models.Client, error) {
	clients := make([]models.Client, 0)
	err := repo.database.WithContext(ctx).
		Where("id IN (?)", repo.viewableGrantSubquery(astrologerID)).
		Order("first_name ASC").
		Order("last_name ASC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (repo *ClientRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.Client{}).
		Where("created_by = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ClientRepository) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.Client, error) {
	clients := make([]models.Client, 0, limit)
	if err := repo.database.WithContext(ctx).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// SearchAccessible matches owned clients and clients shared with view access.
func (repo *ClientRepository) SearchAccessible(ctx context.Context, astrologerID string, search string, limit int) ([]models.Client, error) {
	pattern := likePattern(search)
	clients := make([]models.Client, 0, limit)
	err := repo.database.WithContext(ctx).
		Where(repo.database.Where("created_by = ?", astrologerID).Or("id IN (?)", repo.viewableGrantSubquery(astrologerID))).
		Where(clientSearchCondition, pattern, pattern, pattern, pattern).
		Order("first_name ASC").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (repo *ClientRepository) viewableGrantSubquery(astrologerID string) *gorm.DB {
	return repo.database.Model(&models.ClientPermission{}).
		Select("client_id").
		Where("astrologer_id = ? AND can_view = ?", astrologerID, true)
}
