package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/splax/placefinder/internal/domain"
	"github.com/splax/placefinder/internal/geocode"
)

const mapURLTemplate = "https://www.openstreetmap.org/?mlat=%s&mlon=%s#map=18/%s/%s"

// imageSearchLang fixes the edition used for full-text fallback searches.
const imageSearchLang = "en"

type imageResolver struct {
	name    string
	resolve func(ctx context.Context, place geocode.Place) (string, error)
}

// resolveImage walks the fallback chain in priority order and keeps the first
// hit. A failing step is logged and treated as a miss; it never aborts the
// place or the batch.
func (s Service) resolveImage(ctx context.Context, place geocode.Place) *string {
	resolvers := []imageResolver{
		{name: "wikidata", resolve: s.imageFromWikidata},
		{name: "wikipedia_tag", resolve: s.imageFromWikipediaTag},
		{name: "wikipedia_search", resolve: s.imageFromSearch},
	}
	for _, r := range resolvers {
		url, err := r.resolve(ctx, place)
		if err != nil {
			s.logger.Warn("image resolver failed", "resolver", r.name, "error", err, "place_id", place.PlaceID)
			continue
		}
		if url != "" {
			return &url
		}
	}
	return nil
}

// imageFromWikidata uses a structured wikidata entity tag, when present.
func (s Service) imageFromWikidata(ctx context.Context, place geocode.Place) (string, error) {
	entityID := strings.TrimSpace(place.ExtraTags["wikidata"])
	if entityID == "" {
		return "", nil
	}
	return s.wiki.EntityImage(ctx, entityID)
}

// imageFromWikipediaTag uses a "lang:title" wikipedia tag, when present and
// well-formed.
func (s Service) imageFromWikipediaTag(ctx context.Context, place geocode.Place) (string, error) {
	tag := strings.TrimSpace(place.ExtraTags["wikipedia"])
	if tag == "" {
		return "", nil
	}
	lang, title, found := strings.Cut(tag, ":")
	if !found || lang == "" || title == "" {
		return "", nil
	}
	return s.wiki.PageThumbnail(ctx, lang, title)
}

// imageFromSearch falls back to a full-text encyclopedia search for the
// place's clean name and re-resolves the top hit's thumbnail. Places without
// any usable name resolve to a miss without a network call.
func (s Service) imageFromSearch(ctx context.Context, place geocode.Place) (string, error) {
	name := cleanName(place)
	if name == "" {
		return "", nil
	}
	title, err := s.wiki.SearchTitle(ctx, name)
	if err != nil || title == "" {
		return "", err
	}
	return s.wiki.PageThumbnail(ctx, imageSearchLang, title)
}

// cleanName prefers the structured name detail and falls back to the text
// before the first comma of the display string.
func cleanName(place geocode.Place) string {
	if name := strings.TrimSpace(place.NameDetails["name"]); name != "" {
		return name
	}
	name, _, _ := strings.Cut(place.DisplayName, ",")
	return strings.TrimSpace(name)
}

// normalize maps a raw place onto the output schema. Enrichment fields start
// null and are filled in by the resolution chains.
func normalize(place geocode.Place) domain.Place {
	lat, _ := strconv.ParseFloat(place.Lat, 64)
	lng, _ := strconv.ParseFloat(place.Lon, 64)
	return domain.Place{
		PlaceID:  place.PlaceID,
		Name:     cleanName(place),
		Address:  normalizeAddress(place),
		Location: domain.Location{Lat: lat, Lng: lng},
		MapURL:   fmt.Sprintf(mapURLTemplate, place.Lat, place.Lon, place.Lat, place.Lon),
	}
}

// normalizeAddress applies the per-field fallback chains over the structured
// address subfields. The display string is always kept verbatim.
func normalizeAddress(place geocode.Place) domain.Address {
	addr := place.Address
	return domain.Address{
		HouseNumber: addressField(addr, "house_number"),
		Road:        addressField(addr, "road"),
		Suburb:      addressField(addr, "suburb", "neighbourhood"),
		District:    addressField(addr, "city_district", "district", "state_district"),
		City:        addressField(addr, "city", "town", "village"),
		State:       addressField(addr, "state"),
		Postcode:    addressField(addr, "postcode"),
		Country:     addressField(addr, "country"),
		Full:        place.DisplayName,
	}
}

func addressField(addr map[string]string, keys ...string) *string {
	for _, key := range keys {
		if value := strings.TrimSpace(addr[key]); value != "" {
			return &value
		}
	}
	return nil
}
