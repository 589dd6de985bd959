package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/fortuna/internal/db"
	"github.com/terraincognita07/fortuna/internal/models"
)

const (
	maxTarotQuestionLength = 1000
	maxTarotCards          = 78
)

var sessionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

type TarotRepository interface {
	Create(ctx context.Context, session *models.TarotSession) error
	FindByID(ctx context.Context, sessionID string) (models.TarotSession, error)
	ListByClient(ctx context.Context, clientID string) ([]models.TarotSession, error)
	Update(ctx context.Context, session *models.TarotSession) error
	UpdateInterpretation(ctx context.Context, sessionID string, interpretation string) error
	Delete(ctx context.Context, sessionID string) error
	ListAccessible(ctx context.Context, astrologerID string, filter db.TarotFilter) ([]models.TarotSession, int64, error)
	CountByAuthor(ctx context.Context, astrologerID string) (int64, error)
	CountBySpreadForAuthor(ctx context.Context, astrologerID string) ([]models.SpreadTypeCount, error)
	LatestByAuthor(ctx context.Context, astrologerID string, limit int) ([]models.TarotSession, error)
}

type TarotClientLookup interface {
	FindByIDs(ctx context.Context, clientIDs []string) ([]models.Client, error)
}

// TarotInput accepts cards either decoded (JSON bodies) or as raw JSON text
// (form posts).
type TarotInput struct {
	SessionDate    string             `json:"session_date" form:"session_date"`
	SpreadType     string             `json:"spread_type" form:"spread_type"`
	Question       string             `json:"question" form:"question"`
	Cards          []models.TarotCard `json:"cards_drawn" form:"-"`
	CardsJSON      string             `json:"-" form:"cards_drawn"`
	Interpretation string             `json:"interpretation" form:"interpretation"`
}

func (input TarotInput) validate(now time.Time) (models.TarotSession, error) {
	validation := &ValidationError{}
	session := models.TarotSession{
		SpreadType:     strings.ToLower(strings.TrimSpace(input.SpreadType)),
		Question:       strings.TrimSpace(input.Question),
		Interpretation: strings.TrimSpace(input.Interpretation),
	}

	sessionDate, err := parseSessionDate(input.SessionDate, now)
	if err != nil {
		validation.add("session_date", "Invalid session date.")
	}
	session.SessionDate = sessionDate

	if session.SpreadType == "" {
		validation.add("spread_type", "Spread type is required.")
	} else if !models.IsValidSpreadType(session.SpreadType) {
		validation.add("spread_type", "Invalid spread type.")
	}
	if len([]rune(session.Question)) > maxTarotQuestionLength {
		validation.add("question", "Question is too long.")
	}

	cards, err := parseCards(input.Cards, input.CardsJSON)
	switch {
	case err != nil:
		validation.add("cards_drawn", "Invalid cards format.")
	case len(cards) == 0:
		validation.add("cards_drawn", "At least one card is required.")
	case len(cards) > maxTarotCards:
		validation.add("cards_drawn", "Too many cards.")
	default:
		for index := range cards {
			cards[index].CardName = strings.TrimSpace(cards[index].CardName)
			cards[index].Position = strings.TrimSpace(cards[index].Position)
			cards[index].Interpretation = strings.TrimSpace(cards[index].Interpretation)
			if cards[index].CardName == "" || cards[index].Position == "" {
				validation.add("cards_drawn", "Card "+strconv.Itoa(index+1)+" needs a name and a position.")
			}
		}
	}
	session.CardsDrawn = cards

	if session.Interpretation == "" {
		validation.add("interpretation", "Interpretation is required.")
	} else if len([]rune(session.Interpretation)) > maxInterpretationLength {
		validation.add("interpretation", "Interpretation is too long.")
	}

	if err := validation.orNil(); err != nil {
		return models.TarotSession{}, err
	}
	return session, nil
}

func parseSessionDate(raw string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return now.UTC(), nil
	}
	for _, layout := range sessionDateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, now.Location()); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized session date")
}

func parseCards(decoded []models.TarotCard, raw string) ([]models.TarotCard, error) {
	if decoded != nil {
		cards := make([]models.TarotCard, len(decoded))
		copy(cards, decoded)
		return cards, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	cards := make([]models.TarotCard, 0)
	if err := json.Unmarshal([]byte(trimmed), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

type TarotQuery struct {
	ClientID   string `json:"client_id"`
	SpreadType string `json:"spread_type"`
	From       string `json:"from"`
	To         string `json:"to"`
	Page       int    `json:"page"`
}

type TarotListItem struct {
	Session    models.TarotSession `json:"session"`
	ClientName string              `json:"client_name"`
}

type TarotPage struct {
	Items      []TarotListItem `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Query      TarotQuery      `json:"query"`
}

type TarotService struct {
	sessions TarotRepository
	clients  TarotClientLookup
	access   ClientAccessGuard
	views    ViewInvalidator
	now      func() time.Time
}

func NewTarotService(sessions TarotRepository, clients TarotClientLookup, access ClientAccessGuard, views ViewInvalidator) *TarotService {
	return &TarotService{
		sessions: sessions,
		clients:  clients,
		access:   access,
		views:    viewInvalidatorOrNoop(views),
		now:      time.Now,
	}
}

func (service *TarotService) Create(ctx context.Context, actorID string, clientID string, input TarotInput) (models.TarotSession, error) {
	if err := service.access.RequireEditor(ctx, actorID, clientID); err != nil {
		return models.TarotSession{}, err
	}
	session, err := input.validate(service.now())
	if err != nil {
		return models.TarotSession{}, err
	}
	session.ClientID = clientID
	session.CreatedBy = actorID

	if err := service.sessions.Create(ctx, &session); err != nil {
		return models.TarotSession{}, storeFailure("create", "tarot session", err)
	}
	service.invalidateForClient(ctx, clientID, actorID)
	return session, nil
}

func (service *TarotService) Update(ctx context.Context, actorID string, sessionID string, input TarotInput) (models.TarotSession, error) {
	existing, err := service.load(ctx, sessionID)
	if err != nil {
		return models.TarotSession{}, err
	}
	if err := service.access.RequireEditor(ctx, actorID, existing.ClientID); err != nil {
		return models.TarotSession{}, err
	}
	updated, err := input.validate(service.now())
	if err != nil {
		return models.TarotSession{}, err
	}
	if strings.TrimSpace(input.SessionDate) == "" {
		updated.SessionDate = existing.SessionDate
	}
	updated.ID = existing.ID
	updated.ClientID = existing.ClientID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt

	if err := service.sessions.Update(ctx, &updated); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.TarotSession{}, ErrSessionNotFound
		}
		return models.TarotSession{}, storeFailure("update", "tarot session", err)
	}
	service.invalidateForClient(ctx, existing.ClientID, existing.CreatedBy, actorID)
	return updated, nil
}

func (service *TarotService) UpdateInterpretation(ctx context.Context, actorID string, sessionID string, rawInterpretation string) error {
	existing, err := service.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := service.access.RequireEditor(ctx, actorID, existing.ClientID); err != nil {
		return err
	}

	interpretation, err := validateInterpretation(rawInterpretation, true)
	if err != nil {
		return err
	}
	if err := service.sessions.UpdateInterpretation(ctx, sessionID, interpretation); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrSessionNotFound
		}
		return storeFailure("update", "interpretation", err)
	}
	service.invalidateForClient(ctx, existing.ClientID, existing.CreatedBy, actorID)
	return nil
}

// Delete is reserved for the client owner.
func (service *TarotService) Delete(ctx context.Context, actorID string, sessionID string) error {
	existing, err := service.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := service.access.RequireOwner(ctx, actorID, existing.ClientID); err != nil {
		return err
	}

	if err := service.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrSessionNotFound
		}
		return storeFailure("delete", "tarot session", err)
	}
	service.invalidateForClient(ctx, existing.ClientID, existing.CreatedBy, actorID)
	return nil
}

func (service *TarotService) Get(ctx context.Context, actorID string, sessionID string) (models.TarotSession, error) {
	session, err := service.load(ctx, sessionID)
	if err != nil {
		return models.TarotSession{}, err
	}
	if err := service.access.RequireViewer(ctx, actorID, session.ClientID); err != nil {
		return models.TarotSession{}, err
	}
	return session, nil
}

func (service *TarotService) ForClient(ctx context.Context, actorID string, clientID string) ([]models.TarotSession, error) {
	if err := service.access.RequireViewer(ctx, actorID, clientID); err != nil {
		return nil, err
	}
	sessions, err := service.sessions.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeFailure("load", "tarot sessions", err)
	}
	return sessions, nil
}

func (service *TarotService) List(ctx context.Context, actorID string, query TarotQuery) (TarotPage, error) {
	query.ClientID = strings.TrimSpace(query.ClientID)
	query.SpreadType = strings.ToLower(strings.TrimSpace(query.SpreadType))
	if query.SpreadType != "" && !models.IsValidSpreadType(query.SpreadType) {
		query.SpreadType = ""
	}
	query.Page = normalizePage(query.Page)

	filter := db.TarotFilter{
		ClientID:   query.ClientID,
		SpreadType: query.SpreadType,
		Offset:     (query.Page - 1) * models.TarotListPageSize,
		Limit:      models.TarotListPageSize,
	}
	location := service.now().Location()
	if from, ok := parseFilterDay(query.From, location); ok {
		filter.From = &from
	} else {
		query.From = ""
	}
	if to, ok := parseFilterDay(query.To, location); ok {
		exclusive := to.AddDate(0, 0, 1)
		filter.To = &exclusive
	} else {
		query.To = ""
	}

	sessions, total, err := service.sessions.ListAccessible(ctx, actorID, filter)
	if err != nil {
		return TarotPage{}, storeFailure("load", "tarot sessions", err)
	}
	items, err := service.withClientNames(ctx, sessions)
	if err != nil {
		return TarotPage{}, err
	}

	return TarotPage{
		Items:      items,
		Total:      total,
		Page:       query.Page,
		TotalPages: totalPages(total, models.TarotListPageSize),
		Query:      query,
	}, nil
}

func (service *TarotService) SpreadStats(ctx context.Context, actorID string) ([]models.SpreadTypeCount, error) {
	counts, err := service.sessions.CountBySpreadForAuthor(ctx, actorID)
	if err != nil {
		return nil, storeFailure("load", "spread stats", err)
	}
	return counts, nil
}

func (service *TarotService) Count(ctx context.Context, actorID string) (int64, error) {
	count, err := service.sessions.CountByAuthor(ctx, actorID)
	if err != nil {
		return 0, storeFailure("count", "tarot sessions", err)
	}
	return count, nil
}

// LatestSessionDate returns nil when the actor has no sessions.
func (service *TarotService) LatestSessionDate(ctx context.Context, actorID string) (*time.Time, error) {
	sessions, err := service.sessions.LatestByAuthor(ctx, actorID, 1)
	if err != nil {
		return nil, storeFailure("load", "latest session", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	latest := sessions[0].SessionDate
	return &latest, nil
}

func (service *TarotService) Recent(ctx context.Context, actorID string) ([]TarotListItem, error) {
	sessions, err := service.sessions.LatestByAuthor(ctx, actorID, models.RecentItemsLimit)
	if err != nil {
		return nil, storeFailure("load", "recent sessions", err)
	}
	return service.withClientNames(ctx, sessions)
}

func (service *TarotService) withClientNames(ctx context.Context, sessions []models.TarotSession) ([]TarotListItem, error) {
	clientIDs := make([]string, 0, len(sessions))
	seen := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		if _, ok := seen[session.ClientID]; ok {
			continue
		}
		seen[session.ClientID] = struct{}{}
		clientIDs = append(clientIDs, session.ClientID)
	}

	clients, err := service.clients.FindByIDs(ctx, clientIDs)
	if err != nil {
		return nil, storeFailure("load", "clients", err)
	}
	names := make(map[string]string, len(clients))
	for _, client := range clients {
		names[client.ID] = client.FullName()
	}

	items := make([]TarotListItem, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, TarotListItem{Session: session, ClientName: names[session.ClientID]})
	}
	return items, nil
}

// invalidateForClient drops the cached views of the given astrologers and of
// the client's owner.
func (service *TarotService) invalidateForClient(ctx context.Context, clientID string, astrologerIDs ...string) {
	if ownerID, err := service.access.ClientOwner(ctx, clientID); err == nil {
		astrologerIDs = append(astrologerIDs, ownerID)
	}
	service.views.InvalidateAstrologerViews(ctx, astrologerIDs...)
}

func (service *TarotService) load(ctx context.Context, sessionID string) (models.TarotSession, error) {
	session, err := service.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, models.ErrNotFound) {
		return models.TarotSession{}, ErrSessionNotFound
	}
	if err != nil {
		return models.TarotSession{}, storeFailure("load", "tarot session", err)
	}
	return session, nil
}

func parseFilterDay(raw string, location *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", trimmed, location)
	if err != nil {
		return time.Time{}, false
	}
	return day.UTC(), true
}
