package db

import (
	"context"
	"time"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/gorm"
)

type TarotFilter struct {
	ClientID   string
	SpreadType string
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

type TarotRepository struct {
	database *gorm.DB
}

func NewTarotRepository(database *gorm.DB) *TarotRepository {
	return &TarotRepository{database: database}
}

func (repo *TarotRepository) Create(ctx context.Context, session *models.TarotSession) error {
	return translateError(repo.database.WithContext(ctx).Create(session).Error)
}

func (repo *TarotRepository) FindByID(ctx context.Context, sessionID string) (models.TarotSession, error) {
	var session models.TarotSession
	if err := repo.database.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		return models.TarotSession{}, translateError(err)
	}
	return session, nil
}

func (repo *TarotRepository) ListByClient(ctx context.Context, clientID string) ([]models.TarotSession, error) {
	sessions := make([]models.TarotSession, 0)
	if err := repo.database.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("session_date DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update writes the editable fields; client_id and created_by stay fixed.
func (repo *TarotRepository) Update(ctx context.Context, session *models.TarotSession) error {
	result := repo.database.WithContext(ctx).Model(&models.TarotSession{}).
		Where("id = ?", session.ID).
		Select("session_date", "spread_type", "question", "cards_drawn", "interpretation", "updated_at").
		Updates(&models.TarotSession{
			SessionDate:    session.SessionDate,
			SpreadType:     session.SpreadType,
			Question:       session.Question,
			CardsDrawn:     session.CardsDrawn,
			Interpretation: session.Interpretation,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *TarotRepository) UpdateInterpretation(ctx context.Context, sessionID string, interpretation string) error {
	result := repo.database.WithContext(ctx).Model(&models.TarotSession{}).
		Where("id = ?", sessionID).
		Update("interpretation", interpretation)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (repo *TarotRepository) Delete(ctx context.Context, sessionID string) error {
	result := repo.database.WithContext(ctx).Where("id = ?", sessionID).Delete(&models.TarotSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListAccessible pages through sessions on clients the astrologer owns or
// holds a view grant for.
func (repo *TarotRepository) ListAccessible(ctx context.Context, astrologerID string, filter TarotFilter) ([]models.TarotSession, int64, error) {
	query := repo.database.WithContext(ctx).Model(&models.TarotSession{}).
		Where(repo.database.
			Where("client_id IN (?)", repo.database.Model(&models.Client{}).Select("id").Where("created_by = ?", astrologerID)).
			Or("client_id IN (?)", repo.database.Model(&models.ClientPermission{}).Select("client_id").Where("astrologer_id = ? AND can_view = ?", astrologerID, true)))
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.SpreadType != "" {
		query = query.Where("spread_type = ?", filter.SpreadType)
	}
	if filter.From != nil {
		query = query.Where("session_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("session_date < ?", *filter.To)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]models.TarotSession, 0)
	page := query.Order("session_date DESC").Order("id ASC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := page.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (repo *TarotRepository) CountByAuthor(ctx context.Context, astrologerID string) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.TarotSession{}).
		Where("created_by = ?", astrologerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *TarotRepository) CountBySpreadForAuthor(ctx context.Context, astrologerID string) ([]models.SpreadTypeCount, error) {
	counts := make([]models.SpreadTypeCount, 0, len(models.SpreadTypes))
	err := repo.database.WithContext(ctx).Model(&models.TarotSession{}).
		Select("spread_type, COUNT(*) AS count").
		Where("created_by = ?", astrologerID).
		Group("spread_type").
		Order("count DESC").
		Order("spread_type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (repo *TarotRepository) LatestByAuthor(ctx context.Context, astrologerID string, limit int) ([]models.TarotSession, error) {
	sessions := make([]models.TarotSession, 0, limit)
	if err := repo.database.WithContext(ctx).
		Where("created_by = ?", astrologerID).
		Order("session_date DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
