package models

import (
	"time"

	"gorm.io/gorm"
)

// ClientPermission grants AstrologerID access to another astrologer's client.
type ClientPermission struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ClientID     string    `gorm:"not null;type:varchar(36);uniqueIndex:idx_client_permissions_client_astrologer" json:"client_id"`
	AstrologerID string    `gorm:"not null;type:varchar(36);uniqueIndex:idx_client_permissions_client_astrologer" json:"astrologer_id"`
	CanView      bool      `gorm:"not null" json:"can_view"`
	CanEdit      bool      `gorm:"not null" json:"can_edit"`
	GrantedBy    string    `gorm:"not null;type:varchar(36)" json:"granted_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (permission *ClientPermission) BeforeCreate(_ *gorm.DB) error {
	if permission.ID == "" {
		permission.ID = newID()
	}
	return nil
}

// PermissionWithAstrologer is a grant joined with the grantee's identity.
type PermissionWithAstrologer struct {
	ClientPermission
	AstrologerName  string `json:"astrologer_name"`
	AstrologerEmail string `json:"astrologer_email"`
}

// AccessLevel is the effective access an astrologer has to one client.
type AccessLevel struct {
	CanView bool `json:"can_view"`
	CanEdit bool `json:"can_edit"`
	IsOwner bool `json:"is_owner"`
}

func OwnerAccess() AccessLevel {
	return AccessLevel{CanView: true, CanEdit: true, IsOwner: true}
}
