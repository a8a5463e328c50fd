package search

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/splax/placefinder/internal/domain"
	"github.com/splax/placefinder/internal/geocode"
	"github.com/splax/placefinder/pkg/config"
)

// ErrEmptyQuery rejects blank search input before any upstream call.
var ErrEmptyQuery = errors.New("enter text to search")

// Geocoder is the place-search upstream used for the initial query and the
// per-place email lookup.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]geocode.Place, error)
}

// WikiClient resolves encyclopedia data for the image fallback chain.
type WikiClient interface {
	EntityImage(ctx context.Context, entityID string) (string, error)
	PageThumbnail(ctx context.Context, lang, title string) (string, error)
	SearchTitle(ctx context.Context, query string) (string, error)
}

// Service orchestrates geocoding and enrichment.
type Service struct {
	geo    Geocoder
	wiki   WikiClient
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(geo Geocoder, wiki WikiClient, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{geo: geo, wiki: wiki, logger: logger, cfg: cfg}
}

// Search resolves a free-text query to a list of enriched places. Upstream
// unavailability degrades to an empty list, never an error.
func (s Service) Search(ctx context.Context, query string) ([]domain.Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	raw, err := s.geo.Search(ctx, query, s.cfg.SearchLimit)
	if err != nil {
		s.logger.Warn("geocoder unavailable", "error", err, "query", query)
		return []domain.Place{}, nil
	}
	if len(raw) == 0 {
		return []domain.Place{}, nil
	}
	return s.enrich(ctx, raw), nil
}

// enrich runs both resolution chains for every place and returns the full
// batch once all of them have settled. One result per input, input order.
func (s Service) enrich(ctx context.Context, raw []geocode.Place) []domain.Place {
	results := make([]domain.Place, len(raw))

	var group errgroup.Group
	limit := s.cfg.EnrichConcurrency
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i, place := range raw {
		i, place := i, place
		group.Go(func() error {
			normalized := normalize(place)

			done := make(chan struct{})
			go func() {
				defer close(done)
				normalized.Email = s.resolveEmail(ctx, place)
			}()
			normalized.PhotoURL = s.resolveImage(ctx, place)
			<-done

			results[i] = normalized
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// resolveEmail reissues a single-result place search for the display name and
// reads the contact tags off the top hit.
func (s Service) resolveEmail(ctx context.Context, place geocode.Place) *string {
	if place.DisplayName == "" {
		return nil
	}
	rows, err := s.geo.Search(ctx, place.DisplayName, 1)
	if err != nil {
		s.logger.Warn("email lookup failed", "error", err, "place_id", place.PlaceID)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	for _, key := range []string{"email", "contact:email"} {
		if email := strings.TrimSpace(rows[0].ExtraTags[key]); email != "" {
			return &email
		}
	}
	return nil
}
