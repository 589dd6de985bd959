package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/models"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, clientID string) (models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	UpdateNotes(ctx context.Context, clientID string, notes string) error
	DeleteCascade(ctx context.Context, clientID string) error
	ListByOwner(ctx context.Context, ownerID string, filter db.ClientFilter) ([]models.Client, int64, error)
	ListShared(ctx context.Context, astrologerID string) ([]models.Client, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.Client, error)
	SearchAccessible(ctx context.Context, astrologerID string, search string, limit int) ([]models.Client, error)
}

type ClientProfileLister interface {
	ListByClient(ctx context.Context, clientID string) ([]models.AstrologyProfile, error)
}

type ClientSessionLister interface {
	ListByClient(ctx context.Context, clientID string) ([]models.TarotSession, error)
}

type ClientPermissionLister interface {
	ListByClient(ctx context.Context, clientID string) ([]models.PermissionWithAstrologer, error)
}

type ClientQuery struct {
	Search string `json:"search"`
	Gender string `json:"gender"`
	Page   int    `json:"page"`
}

type ClientPage struct {
	Clients    []models.Client `json:"clients"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Query      ClientQuery     `json:"query"`
}

type ClientDetail struct {
	Client      models.Client                     `json:"client"`
	Access      models.AccessLevel                `json:"access"`
	Profiles    []models.AstrologyProfile         `json:"profiles"`
	Sessions    []models.TarotSession             `json:"sessions"`
	Permissions []models.PermissionWithAstrologer `json:"permissions"`
}

type ClientService struct {
	clients     ClientRepository
	profiles    ClientProfileLister
	sessions    ClientSessionLister
	permissions ClientPermissionLister
	access      ClientAccessGuard
	views       ViewInvalidator
	now         func() time.Time
}

func NewClientService(
	clients ClientRepository,
	profiles ClientProfileLister,
	sessions ClientSessionLister,
	permissions ClientPermissionLister,
	access ClientAccessGuard,
	views ViewInvalidator,
) *ClientService {
	return &ClientService{
		clients:     clients,
		profiles:    profiles,
		sessions:    sessions,
		permissions: permissions,
		access:      access,
		views:       viewInvalidatorOrNoop(views),
		now:         time.Now,
	}
}

func (service *ClientService) Create(ctx context.Context, actorID string, input ClientInput) (models.Client, error) {
	client, err := input.Validate(service.now())
	if err != nil {
		return models.Client{}, err
	}
	client.CreatedBy = actorID

	if err := service.clients.Create(ctx, &client); err != nil {
		return models.Client{}, storeFailure("create", "client", err)
	}
	service.views.InvalidateAstrologerViews(ctx, actorID)
	return client, nil
}

func (service *ClientService) Update(ctx context.Context, actorID string, clientID string, input ClientInput) (models.Client, error) {
	if err := service.access.RequireEditor(ctx, actorID, clientID); err != nil {
		return models.Client{}, err
	}

	client, err := input.Validate(service.now())
	if err != nil {
		return models.Client{}, err
	}
	client.ID = clientID

	if err := service.clients.Update(ctx, &client); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Client{}, ErrClientNotFound
		}
		return models.Client{}, storeFailure("update", "client", err)
	}

	stored, err := service.clients.FindByID(ctx, clientID)
	if err != nil {
		return models.Client{}, storeFailure("load", "client", err)
	}
	service.views.InvalidateAstrologerViews(ctx, stored.CreatedBy, actorID)
	return stored, nil
}

func (service *ClientService) UpdateNotes(ctx context.Context, actorID string, clientID string, rawNotes string) error {
	if err := service.access.RequireEditor(ctx, actorID, clientID); err != nil {
		return err
	}
	notes, err := ValidateClientNotes(rawNotes)
	if err != nil {
		return err
	}
	if err := service.clients.UpdateNotes(ctx, clientID, notes); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrClientNotFound
		}
		return storeFailure("update", "notes", err)
	}
	affected := []string{actorID}
	if ownerID, err := service.access.ClientOwner(ctx, clientID); err == nil && ownerID != actorID {
		affected = append(affected, ownerID)
	}
	service.views.InvalidateAstrologerViews(ctx, affected...)
	return nil
}

// Delete removes the client and everything attached to it. Owner only.
func (service *ClientService) Delete(ctx context.Context, actorID string, clientID string) error {
	if err := service.access.RequireOwner(ctx, actorID, clientID); err != nil {
		return err
	}

	affected := []string{actorID}
	grants, err := service.permissions.ListByClient(ctx, clientID)
	if err != nil {
		return storeFailure("delete", "client", err)
	}
	for _, grant := range grants {
		affected = append(affected, grant.AstrologerID)
	}

	if err := service.clients.DeleteCascade(ctx, clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrClientNotFound
		}
		return storeFailure("delete", "client", err)
	}
	service.views.InvalidateAstrologerViews(ctx, affected...)
	return nil
}

func (service *ClientService) Get(ctx context.Context, actorID string, clientID string) (models.Client, models.AccessLevel, error) {
	level, err := service.access.CheckClientAccess(ctx, actorID, clientID)
	if err != nil {
		return models.Client{}, models.AccessLevel{}, err
	}
	if !level.CanView {
		return models.Client{}, level, ErrViewRequired
	}

	client, err := service.clients.FindByID(ctx, clientID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Client{}, models.AccessLevel{}, ErrClientNotFound
	}
	if err != nil {
		return models.Client{}, models.AccessLevel{}, storeFailure("load", "client", err)
	}
	return client, level, nil
}

func (service *ClientService) Detail(ctx context.Context, actorID string, clientID string) (ClientDetail, error) {
	client, level, err := service.Get(ctx, actorID, clientID)
	if err != nil {
		return ClientDetail{}, err
	}

	profiles, err := service.profiles.ListByClient(ctx, clientID)
	if err != nil {
		return ClientDetail{}, storeFailure("load", "profiles", err)
	}
	sessions, err := service.sessions.ListByClient(ctx, clientID)
	if err != nil {
		return ClientDetail{}, storeFailure("load", "tarot sessions", err)
	}
	permissions, err := service.permissions.ListByClient(ctx, clientID)
	if err != nil {
		return ClientDetail{}, storeFailure("load", "permissions", err)
	}

	return ClientDetail{
		Client:      client,
		Access:      level,
		Profiles:    profiles,
		Sessions:    sessions,
		Permissions: permissions,
	}, nil
}

func (service *ClientService) ListOwned(ctx context.Context, actorID string, query ClientQuery) (ClientPage, error) {
	query.Search = strings.TrimSpace(query.Search)
	query.Gender = strings.ToLower(strings.TrimSpace(query.Gender))
	if query.Gender != "" && !models.IsValidGender(query.Gender) {
		query.Gender = ""
	}
	query.Page = normalizePage(query.Page)

	clients, total, err := service.clients.ListByOwner(ctx, actorID, db.ClientFilter{
		Search: query.Search,
		Gender: query.Gender,
		Offset: (query.Page - 1) * models.ClientListPageSize,
		Limit:  models.ClientListPageSize,
	})
	if err != nil {
		return ClientPage{}, storeFailure("load", "clients", err)
	}

	return ClientPage{
		Clients:    clients,
		Total:      total,
		Page:       query.Page,
		TotalPages: totalPages(total, models.ClientListPageSize),
		Query:      query,
	}, nil
}

func (service *ClientService) ListShared(ctx context.Context, actorID string) ([]models.Client, error) {
	clients, err := service.clients.ListShared(ctx, actorID)
	if err != nil {
		return nil, storeFailure("load", "shared clients", err)
	}
	return clients, nil
}

func (service *ClientService) Count(ctx context.Context, actorID string) (int64, error) {
	count, err := service.clients.CountByOwner(ctx, actorID)
	if err != nil {
		return 0, storeFailure("count", "clients", err)
	}
	return count, nil
}

func (service *ClientService) Recent(ctx context.Context, actorID string) ([]models.Client, error) {
	clients, err := service.clients.RecentByOwner(ctx, actorID, models.RecentItemsLimit)
	if err != nil {
		return nil, storeFailure("load", "recent clients", err)
	}
	return clients, nil
}

// SearchAccessible returns up to ten owned or shared clients matching search.
// An empty search returns nothing.
func (service *ClientService) SearchAccessible(ctx context.Context, actorID string, search string) ([]models.Client, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return []models.Client{}, nil
	}
	clients, err := service.clients.SearchAccessible(ctx, actorID, search, models.AccessibleSearchLimit)
	if err != nil {
		return nil, storeFailure("search", "clients", err)
	}
	return clients, nil
}
