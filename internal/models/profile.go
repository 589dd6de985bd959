package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AstrologyThai    = "thai"
	AstrologyChinese = "chinese"
	AstrologyVedic   = "vedic"
	AstrologyWestern = "western"
)

var AstrologyTypes = []string{AstrologyThai, AstrologyChinese, AstrologyVedic, AstrologyWestern}

type AstrologyProfile struct {
	ID             string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClientID       string            `gorm:"not null;type:varchar(36);uniqueIndex:idx_astrology_profiles_client_type" json:"client_id"`
	AstrologyType  string            `gorm:"not null;uniqueIndex:idx_astrology_profiles_client_type" json:"astrology_type"`
	ChartData      datatypes.JSONMap `gorm:"not null" json:"chart_data"`
	Interpretation string            `gorm:"not null;default:''" json:"interpretation"`
	CreatedBy      string            `gorm:"not null;type:varchar(36)" json:"created_by"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func (profile *AstrologyProfile) BeforeCreate(_ *gorm.DB) error {
	if profile.ID == "" {
		profile.ID = newID()
	}
	if profile.ChartData == nil {
		profile.ChartData = datatypes.JSONMap{}
	}
	return nil
}

func IsValidAstrologyType(value string) bool {
	for _, astrologyType := range AstrologyTypes {
		if astrologyType == value {
			return true
		}
	}
	return false
}

type ProfileTypeCount struct {
	AstrologyType string `json:"astrology_type"`
	Count         int64  `json:"count"`
}
