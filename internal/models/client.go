package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	GenderMale            = "male"
	GenderFemale          = "female"
	GenderOther           = "other"
	GenderPreferNotToSay  = "prefer_not_to_say"
	BirthDateLayout       = "2006-01-02"
	BirthTimeLayout       = "15:04"
	ClientListPageSize    = 10
	RecentItemsLimit      = 5
	AccessibleSearchLimit = 10
)

var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

// Client is a horoscope client owned by the astrologer in CreatedBy.
type Client struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedBy      string    `gorm:"not null;index;type:varchar(36)" json:"created_by"`
	FirstName      string    `gorm:"not null" json:"first_name"`
	LastName       string    `gorm:"not null" json:"last_name"`
	Nickname       string    `gorm:"not null;default:''" json:"nickname"`
	Gender         string    `gorm:"not null;default:''" json:"gender"`
	BirthDate      string    `gorm:"not null" json:"birth_date"`
	BirthTime      string    `gorm:"not null" json:"birth_time"`
	BirthPlace     string    `gorm:"not null" json:"birth_place"`
	BirthLatitude  *float64  `gorm:"column:birth_latitude" json:"birth_latitude"`
	BirthLongitude *float64  `gorm:"column:birth_longitude" json:"birth_longitude"`
	ContactPhone   string    `gorm:"not null;default:''" json:"contact_phone"`
	ContactEmail   string    `gorm:"not null;default:''" json:"contact_email"`
	Notes          string    `gorm:"not null;default:''" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "horoscope_clients"
}

func (client *Client) BeforeCreate(_ *gorm.DB) error {
	if client.ID == "" {
		client.ID = newID()
	}
	return nil
}

func (client Client) FullName() string {
	return strings.TrimSpace(client.FirstName + " " + client.LastName)
}

func IsValidGender(value string) bool {
	for _, gender := range Genders {
		if gender == value {
			return true
		}
	}
	return false
}
