package models

import (
	"time"

	"gorm.io/gorm"
)

type Astrologer struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	Email           string    `gorm:"uniqueIndex;not null"`
	PasswordHash    string    `gorm:"not null"`
	Name            string    `gorm:"not null"`
	Phone           string    `gorm:"not null;default:''"`
	Specialties     []string  `gorm:"serializer:json;not null"`
	ExperienceYears int       `gorm:"not null;default:0"`
	Bio             string    `gorm:"not null;default:''"`
	ProfileImageURL string    `gorm:"column:profile_image_url;not null;default:''"`
	IsActive        bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (astrologer *Astrologer) BeforeCreate(_ *gorm.DB) error {
	if astrologer.ID == "" {
		astrologer.ID = newID()
	}
	if astrologer.Specialties == nil {
		astrologer.Specialties = []string{}
	}
	return nil
}

// AstrologerSummary is the subset shown in sharing pickers and access lists.
type AstrologerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
