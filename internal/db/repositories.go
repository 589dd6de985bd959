package db

import (
	"strings"

	"gorm.io/gorm"
)

type Repositories struct {
	Astrologers *AstrologerRepository
	Clients     *ClientRepository
	Profiles    *ProfileRepository
	Tarot       *TarotRepository
	Permissions *PermissionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Astrologers: NewAstrologerRepository(database),
		Clients:     NewClientRepository(database),
		Profiles:    NewProfileRepository(database),
		Tarot:       NewTarotRepository(database),
		Permissions: NewPermissionRepository(database),
	}
}

// likePattern builds a lowercase substring pattern with LIKE wildcards escaped.
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}
