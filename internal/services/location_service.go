package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"traveldesk/internal/cache"
	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/ibge"
	"traveldesk/internal/logger"
	"traveldesk/internal/models"
)

const (
	cityCacheKey        = "ibge:municipios"
	destinationCacheKey = "travel:destinations"
	locationCacheTTL    = 24 * time.Hour
)

// MunicipalityFetcher is the part of the IBGE client the service needs.
type MunicipalityFetcher interface {
	GetMunicipalities(ctx context.Context) ([]ibge.Municipality, error)
}

// locationService serves normalized city records from the IBGE directory
// and the distinct destinations already used in travel requests. Both are
// cached for a day; there is no invalidation beyond expiry.
type locationService struct {
	db    *gorm.DB
	ibge  MunicipalityFetcher
	cache cache.Cache
	debug bool
}

// NewLocationService creates a new LocationServicer.
func NewLocationService(db *gorm.DB, client MunicipalityFetcher, c cache.Cache, debug bool) LocationServicer {
	return &locationService{db: db, ibge: client, cache: c, debug: debug}
}

// SearchCities returns every municipality mapped to a City, optionally
// filtered by a case-insensitive substring over name, state, and uf.
func (s *locationService) SearchCities(ctx context.Context, query string) ([]City, error) {
	municipalities, err := s.municipalities(ctx)
	if err != nil {
		return nil, err
	}

	cities := make([]City, 0, len(municipalities))
	needle := strings.ToLower(query)
	for i := range municipalities {
		city := cityFromMunicipality(&municipalities[i])
		if needle != "" {
			searchable := strings.ToLower(city.Name + " " + city.UF + " " + city.State)
			if !strings.Contains(searchable, needle) {
				continue
			}
		}
		cities = append(cities, city)
	}

	return cities, nil
}

// Destinations lists the distinct destinations of non-deleted travel requests.
func (s *locationService) Destinations(ctx context.Context) ([]string, error) {
	var destinations []string
	if err := s.cache.GetJSON(ctx, destinationCacheKey, &destinations); err == nil {
		return destinations, nil
	}

	err := s.db.Model(&models.TravelRequest{}).
		Distinct("destination").
		Order("destination ASC").
		Pluck("destination", &destinations).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if destinations == nil {
		destinations = []string{}
	}

	if err := s.cache.SetJSON(ctx, destinationCacheKey, destinations, locationCacheTTL); err != nil {
		logger.Get().Warnw("failed to cache destinations", "error", err)
	}

	return destinations, nil
}

// municipalities returns the cached raw list, fetching from IBGE on a miss.
// A single attempt; upstream failure surfaces as an upstream error whose
// message carries detail only in debug mode.
func (s *locationService) municipalities(ctx context.Context) ([]ibge.Municipality, error) {
	var cached []ibge.Municipality
	if err := s.cache.GetJSON(ctx, cityCacheKey, &cached); err == nil {
		return cached, nil
	}

	municipalities, err := s.ibge.GetMunicipalities(ctx)
	if err != nil {
		if s.debug {
			return nil, apperrors.Wrap(
				apperrors.WithMessage(apperrors.ErrUpstreamLocation, fmt.Sprintf("Failed to fetch municipality data: %v", err)),
				err,
			)
		}
		return nil, apperrors.Wrap(apperrors.ErrUpstreamLocation, err)
	}

	if err := s.cache.SetJSON(ctx, cityCacheKey, municipalities, locationCacheTTL); err != nil {
		logger.Get().Warnw("failed to cache municipalities", "error", err)
	}

	return municipalities, nil
}

func cityFromMunicipality(m *ibge.Municipality) City {
	name := m.Nome
	state := m.StateName()
	uf := m.StateAbbr()
	label := fmt.Sprintf("%s - %s - %s", name, state, uf)

	return City{
		ID:    m.ID,
		Name:  name,
		State: state,
		UF:    uf,
		Label: label,
		Value: label,
	}
}
