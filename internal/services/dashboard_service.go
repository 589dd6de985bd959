package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/terraincognita07/fortuna/internal/models"
)

const dashboardCachePrefix = "dashboard:"

// ViewCache stores rendered view payloads by key.
type ViewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type DashboardClientSource interface {
	Count(ctx context.Context, actorID string) (int64, error)
	Recent(ctx context.Context, actorID string) ([]models.Client, error)
}

type DashboardTarotSource interface {
	Count(ctx context.Context, actorID string) (int64, error)
	Recent(ctx context.Context, actorID string) ([]TarotListItem, error)
	LatestSessionDate(ctx context.Context, actorID string) (*time.Time, error)
	SpreadStats(ctx context.Context, actorID string) ([]models.SpreadTypeCount, error)
}

type DashboardProfileSource interface {
	Stats(ctx context.Context, actorID string) ([]models.ProfileTypeCount, error)
}

type DashboardShareSource interface {
	SharedClientCount(ctx context.Context, actorID string) (int64, error)
}

type DashboardSummary struct {
	ClientCount       int64                     `json:"client_count"`
	SessionCount      int64                     `json:"session_count"`
	SharedClientCount int64                     `json:"shared_client_count"`
	LatestSessionDate *time.Time                `json:"latest_session_date,omitempty"`
	RecentClients     []models.Client           `json:"recent_clients"`
	RecentSessions    []TarotListItem           `json:"recent_sessions"`
	ProfileStats      []models.ProfileTypeCount `json:"profile_stats"`
	SpreadStats       []models.SpreadTypeCount  `json:"spread_stats"`
}

// DashboardViews keeps per-astrologer dashboard summaries in the view cache
// until a mutation touching that astrologer drops them.
type DashboardViews struct {
	cache  ViewCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewDashboardViews(cache ViewCache, ttl time.Duration, logger *slog.Logger) *DashboardViews {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardViews{cache: cache, ttl: ttl, logger: logger}
}

func (views *DashboardViews) load(ctx context.Context, actorID string) (DashboardSummary, bool) {
	if views == nil || views.cache == nil {
		return DashboardSummary{}, false
	}
	payload, found, err := views.cache.Get(ctx, dashboardCachePrefix+actorID)
	if err != nil {
		views.logger.WarnContext(ctx, "dashboard cache read failed", "actor_id", actorID, "err", err)
		return DashboardSummary{}, false
	}
	if !found {
		return DashboardSummary{}, false
	}
	var summary DashboardSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return DashboardSummary{}, false
	}
	return summary, true
}

func (views *DashboardViews) store(ctx context.Context, actorID string, summary DashboardSummary) {
	if views == nil || views.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err == nil {
		err = views.cache.Set(ctx, dashboardCachePrefix+actorID, payload, views.ttl)
	}
	if err != nil {
		views.logger.WarnContext(ctx, "dashboard cache write failed", "actor_id", actorID, "err", err)
	}
}

// InvalidateAstrologerViews implements ViewInvalidator.
func (views *DashboardViews) InvalidateAstrologerViews(ctx context.Context, astrologerIDs ...string) {
	if views == nil || views.cache == nil {
		return
	}
	keys := make([]string, 0, len(astrologerIDs))
	seen := make(map[string]struct{}, len(astrologerIDs))
	for _, astrologerID := range astrologerIDs {
		if astrologerID == "" {
			continue
		}
		if _, ok := seen[astrologerID]; ok {
			continue
		}
		seen[astrologerID] = struct{}{}
		keys = append(keys, dashboardCachePrefix+astrologerID)
	}
	if len(keys) == 0 {
		return
	}
	if err := views.cache.Delete(ctx, keys...); err != nil {
		views.logger.WarnContext(ctx, "dashboard cache invalidation failed", "keys", keys, "err", err)
	}
}

type DashboardService struct {
	clients  DashboardClientSource
	sessions DashboardTarotSource
	profiles DashboardProfileSource
	shares   DashboardShareSource
	views    *DashboardViews
}

func NewDashboardService(
	clients DashboardClientSource,
	sessions DashboardTarotSource,
	profiles DashboardProfileSource,
	shares DashboardShareSource,
	views *DashboardViews,
) *DashboardService {
	return &DashboardService{
		clients:  clients,
		sessions: sessions,
		profiles: profiles,
		shares:   shares,
		views:    views,
	}
}

func (service *DashboardService) Summary(ctx context.Context, actorID string) (DashboardSummary, error) {
	if summary, ok := service.views.load(ctx, actorID); ok {
		return summary, nil
	}
	summary, err := service.build(ctx, actorID)
	if err != nil {
		return DashboardSummary{}, err
	}
	service.views.store(ctx, actorID, summary)
	return summary, nil
}

func (service *DashboardService) build(ctx context.Context, actorID string) (DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	if summary.ClientCount, err = service.clients.Count(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.SessionCount, err = service.sessions.Count(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.SharedClientCount, err = service.shares.SharedClientCount(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.LatestSessionDate, err = service.sessions.LatestSessionDate(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.RecentClients, err = service.clients.Recent(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.RecentSessions, err = service.sessions.Recent(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.ProfileStats, err = service.profiles.Stats(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	if summary.SpreadStats, err = service.sessions.SpreadStats(ctx, actorID); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}
