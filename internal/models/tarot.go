package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SpreadThreeCard         = "three_card"
	SpreadCelticCross       = "celtic_cross"
	SpreadPastPresentFuture = "past_present_future"
	SpreadRelationship      = "relationship"
	SpreadCareer            = "career"
	SpreadYesNo             = "yes_no"
	SpreadCustom            = "custom"
	TarotListPageSize       = 10
)

var SpreadTypes = []string{
	SpreadThreeCard,
	SpreadCelticCross,
	SpreadPastPresentFuture,
	SpreadRelationship,
	SpreadCareer,
	SpreadYesNo,
	SpreadCustom,
}

type TarotCard struct {
	CardName       string `json:"card_name"`
	Position       string `json:"position"`
	IsReversed     bool   `json:"is_reversed"`
	Interpretation string `json:"interpretation,omitempty"`
}

type TarotSession struct {
	ID             string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClientID       string      `gorm:"not null;index;type:varchar(36)" json:"client_id"`
	CreatedBy      string      `gorm:"not null;index;type:varchar(36)" json:"created_by"`
	SessionDate    time.Time   `gorm:"not null;index" json:"session_date"`
	SpreadType     string      `gorm:"not null" json:"spread_type"`
	Question       string      `gorm:"not null;default:''" json:"question"`
	CardsDrawn     []TarotCard `gorm:"serializer:json;not null" json:"cards_drawn"`
	Interpretation string      `gorm:"not null" json:"interpretation"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (session *TarotSession) BeforeCreate(_ *gorm.DB) error {
	if session.ID == "" {
		session.ID = newID()
	}
	return nil
}

func IsValidSpreadType(value string) bool {
	for _, spreadType := range SpreadTypes {
		if spreadType == value {
			return true
		}
	}
	return false
}

type SpreadTypeCount struct {
	SpreadType string `json:"spread_type"`
	Count      int64  `json:"count"`
}
