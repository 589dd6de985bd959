package api

import (
	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/services"
	"gorm.io/gorm"
)

func (handler *Handler) withDependencies(database *gorm.DB) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.wireServices()
	return handler
}

func (handler *Handler) ensureDependencies() {
	if handler.repositories == nil {
		if handler.db == nil {
			return
		}
		handler.repositories = db.NewRepositories(handler.db)
	}
	if handler.accessService == nil || handler.dashboardService == nil {
		handler.wireServices()
	}
}

func (handler *Handler) wireServices() {
	repos := handler.repositories

	var observer services.AccessObserver
	if handler.metrics != nil {
		observer = handler.metrics
	}
	handler.accessService = services.NewAccessService(repos.Clients, repos.Permissions, observer)
	handler.dashboardViewCache = services.NewDashboardViews(handler.viewCache, handler.viewCacheTTL, handler.logger)
	views := handler.dashboardViewCache

	handler.authService = services.NewAuthService(repos.Astrologers)
	handler.clientService = services.NewClientService(repos.Clients, repos.Profiles, repos.Tarot, repos.Permissions, handler.accessService, views)
	handler.profileService = services.NewProfileService(repos.Profiles, handler.accessService, views)
	handler.tarotService = services.NewTarotService(repos.Tarot, repos.Clients, handler.accessService, views)
	handler.permissionService = services.NewPermissionService(repos.Permissions, repos.Astrologers, handler.accessService, views)
	handler.dashboardService = services.NewDashboardService(
		handler.clientService,
		handler.tarotService,
		handler.profileService,
		handler.permissionService,
		views,
	)
}
