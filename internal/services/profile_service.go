package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/terraincognita07/fortuna/internal/models"
	"gorm.io/datatypes"
)

const maxInterpretationLength = 20000

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.AstrologyProfile) error
	FindByID(ctx context.Context, profileID string) (models.AstrologyProfile, error)
	FindByClientAndType(ctx context.Context, clientID string, astrologyType string) (models.AstrologyProfile, error)
	ExistsForClientType(ctx context.Context, clientID string, astrologyType string, excludeID string) (bool, error)
	ListByClient(ctx context.Context, clientID string) ([]models.AstrologyProfile, error)
	Update(ctx context.Context, profileID string, astrologyType string, chartData datatypes.JSONMap, interpretation string) error
	UpdateInterpretation(ctx context.Context, profileID string, interpretation string) error
	Delete(ctx context.Context, profileID string) error
	CountByTypeForOwner(ctx context.Context, ownerID string) ([]models.ProfileTypeCount, error)
}

// ProfileInput accepts chart data either decoded (JSON bodies) or as raw
// JSON text (form posts).
type ProfileInput struct {
	AstrologyType  string         `json:"astrology_type" form:"astrology_type"`
	ChartData      map[string]any `json:"chart_data" form:"-"`
	ChartDataJSON  string         `json:"-" form:"chart_data"`
	Interpretation string         `json:"interpretation" form:"interpretation"`
}

type validatedProfile struct {
	astrologyType  string
	chartData      datatypes.JSONMap
	interpretation string
}

func (input ProfileInput) validate() (validatedProfile, error) {
	validation := &ValidationError{}
	profile := validatedProfile{
		astrologyType:  strings.ToLower(strings.TrimSpace(input.AstrologyType)),
		interpretation: strings.TrimSpace(input.Interpretation),
	}

	if profile.astrologyType == "" {
		validation.add("astrology_type", "Astrology type is required.")
	} else if !models.IsValidAstrologyType(profile.astrologyType) {
		validation.add("astrology_type", "Invalid astrology type.")
	}

	chartData, err := parseChartData(input.ChartData, input.ChartDataJSON)
	if err != nil {
		validation.add("chart_data", "Invalid chart data format")
	}
	profile.chartData = chartData

	if len([]rune(profile.interpretation)) > maxInterpretationLength {
		validation.add("interpretation", "Interpretation is too long.")
	}

	if err := validation.orNil(); err != nil {
		return validatedProfile{}, err
	}
	return profile, nil
}

func parseChartData(decoded map[string]any, raw string) (datatypes.JSONMap, error) {
	if decoded != nil {
		return datatypes.JSONMap(decoded), nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return datatypes.JSONMap{}, nil
	}
	chartData := map[string]any{}
	if err := json.Unmarshal([]byte(trimmed), &chartData); err != nil {
		return nil, err
	}
	if chartData == nil {
		return nil, errors.New("chart data must be an object")
	}
	return datatypes.JSONMap(chartData), nil
}

func validateInterpretation(raw string, required bool) (string, error) {
	interpretation := strings.TrimSpace(raw)
	validation := &ValidationError{}
	if required && interpretation == "" {
		validation.add("interpretation", "Interpretation is required.")
	}
	if len([]rune(interpretation)) > maxInterpretationLength {
		validation.add("interpretation", "Interpretation is too long.")
	}
	if err := validation.orNil(); err != nil {
		return "", err
	}
	return interpretation, nil
}

type ProfileService struct {
	profiles ProfileRepository
	access   ClientAccessGuard
	views    ViewInvalidator
}

func NewProfileService(profiles ProfileRepository, access ClientAccessGuard, views ViewInvalidator) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		access:   access,
		views:    viewInvalidatorOrNoop(views),
	}
}

func (service *ProfileService) Create(ctx context.Context, actorID string, clientID string, input ProfileInput) (models.AstrologyProfile, error) {
	if err := service.access.RequireEditor(ctx, actorID, clientID); err != nil {
		return models.AstrologyProfile{}, err
	}

	validated, err := input.validate()
	if err != nil {
		return models.AstrologyProfile{}, err
	}

	exists, err := service.profiles.ExistsForClientType(ctx, clientID, validated.astrologyType, "")
	if err != nil {
		return models.AstrologyProfile{}, storeFailure("create", "profile", err)
	}
	if exists {
		return models.AstrologyProfile{}, &ProfileTypeExistsError{AstrologyType: validated.astrologyType}
	}

	profile := models.AstrologyProfile{
		ClientID:       clientID,
		AstrologyType:  validated.astrologyType,
		ChartData:      validated.chartData,
		Interpretation: validated.interpretation,
		CreatedBy:      actorID,
	}
	if err := service.profiles.Create(ctx, &profile); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.AstrologyProfile{}, &ProfileTypeExistsError{AstrologyType: validated.astrologyType}
		}
		return models.AstrologyProfile{}, storeFailure("create", "profile", err)
	}
	service.invalidateForClient(ctx, actorID, clientID)
	return profile, nil
}

func (service *ProfileService) Update(ctx context.Context, actorID string, profileID string, input ProfileInput) (models.AstrologyProfile, error) {
	existing, err := service.load(ctx, profileID)
	if err != nil {
		return models.AstrologyProfile{}, err
	}
	if err := service.access.RequireEditor(ctx, actorID, existing.ClientID); err != nil {
		return models.AstrologyProfile{}, err
	}

	validated, err := input.validate()
	if err != nil {
		return models.AstrologyProfile{}, err
	}

	if validated.astrologyType != existing.AstrologyType {
		exists, err := service.profiles.ExistsForClientType(ctx, existing.ClientID, validated.astrologyType, existing.ID)
		if err != nil {
			return models.AstrologyProfile{}, storeFailure("update", "profile", err)
		}
		if exists {
			return models.AstrologyProfile{}, &ProfileTypeExistsError{AstrologyType: validated.astrologyType}
		}
	}

	if err := service.profiles.Update(ctx, existing.ID, validated.astrologyType, validated.chartData, validated.interpretation); err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicate):
			return models.AstrologyProfile{}, &ProfileTypeExistsError{AstrologyType: validated.astrologyType}
		case errors.Is(err, models.ErrNotFound):
			return models.AstrologyProfile{}, ErrProfileNotFound
		default:
			return models.AstrologyProfile{}, storeFailure("update", "profile", err)
		}
	}

	existing.AstrologyType = validated.astrologyType
	existing.ChartData = validated.chartData
	existing.Interpretation = validated.interpretation
	service.invalidateForClient(ctx, actorID, existing.ClientID)
	return existing, nil
}

func (service *ProfileService) UpdateInterpretation(ctx context.Context, actorID string, profileID string, rawInterpretation string) error {
	existing, err := service.load(ctx, profileID)
	if err != nil {
		return err
	}
	if err := service.access.RequireEditor(ctx, actorID, existing.ClientID); err != nil {
		return err
	}
	interpretation, err := validateInterpretation(rawInterpretation, false)
	if err != nil {
		return err
	}
	if err := service.profiles.UpdateInterpretation(ctx, profileID, interpretation); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrProfileNotFound
		}
		return storeFailure("update", "interpretation", err)
	}
	service.invalidateForClient(ctx, actorID, existing.ClientID)
	return nil
}

// Delete is reserved for the client owner.
func (service *ProfileService) Delete(ctx context.Context, actorID string, profileID string) error {
	existing, err := service.load(ctx, profileID)
	if err != nil {
		return err
	}
	if err := service.access.RequireOwner(ctx, actorID, existing.ClientID); err != nil {
		return err
	}
	if err := service.profiles.Delete(ctx, profileID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrProfileNotFound
		}
		return storeFailure("delete", "profile", err)
	}
	service.invalidateForClient(ctx, actorID, existing.ClientID)
	return nil
}

func (service *ProfileService) Get(ctx context.Context, actorID string, profileID string) (models.AstrologyProfile, error) {
	profile, err := service.load(ctx, profileID)
	if err != nil {
		return models.AstrologyProfile{}, err
	}
	if err := service.access.RequireViewer(ctx, actorID, profile.ClientID); err != nil {
		return models.AstrologyProfile{}, err
	}
	return profile, nil
}

func (service *ProfileService) ForClient(ctx context.Context, actorID string, clientID string) ([]models.AstrologyProfile, error) {
	if err := service.access.RequireViewer(ctx, actorID, clientID); err != nil {
		return nil, err
	}
	profiles, err := service.profiles.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeFailure("load", "profiles", err)
	}
	return profiles, nil
}

func (service *ProfileService) ByType(ctx context.Context, actorID string, clientID string, astrologyType string) (models.AstrologyProfile, error) {
	if err := service.access.RequireViewer(ctx, actorID, clientID); err != nil {
		return models.AstrologyProfile{}, err
	}
	profile, err := service.profiles.FindByClientAndType(ctx, clientID, strings.ToLower(strings.TrimSpace(astrologyType)))
	if errors.Is(err, models.ErrNotFound) {
		return models.AstrologyProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.AstrologyProfile{}, storeFailure("load", "profile", err)
	}
	return profile, nil
}

func (service *ProfileService) HasType(ctx context.Context, actorID string, clientID string, astrologyType string) (bool, error) {
	_, err := service.ByType(ctx, actorID, clientID, astrologyType)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stats counts profiles per astrology type across the actor's own clients,
// reporting zero for types with no profiles.
func (service *ProfileService) Stats(ctx context.Context, actorID string) ([]models.ProfileTypeCount, error) {
	counts, err := service.profiles.CountByTypeForOwner(ctx, actorID)
	if err != nil {
		return nil, storeFailure("load", "profile stats", err)
	}
	byType := make(map[string]int64, len(counts))
	for _, count := range counts {
		byType[count.AstrologyType] = count.Count
	}
	result := make([]models.ProfileTypeCount, 0, len(models.AstrologyTypes))
	for _, astrologyType := range models.AstrologyTypes {
		result = append(result, models.ProfileTypeCount{AstrologyType: astrologyType, Count: byType[astrologyType]})
	}
	return result, nil
}

func (service *ProfileService) load(ctx context.Context, profileID string) (models.AstrologyProfile, error) {
	profile, err := service.profiles.FindByID(ctx, profileID)
	if errors.Is(err, models.ErrNotFound) {
		return models.AstrologyProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.AstrologyProfile{}, storeFailure("load", "profile", err)
	}
	return profile, nil
}

func (service *ProfileService) invalidateForClient(ctx context.Context, actorID string, clientID string) {
	affected := []string{actorID}
	if ownerID, err := service.access.ClientOwner(ctx, clientID); err == nil && ownerID != actorID {
		affected = append(affected, ownerID)
	}
	service.views.InvalidateAstrologerViews(ctx, affected...)
}
