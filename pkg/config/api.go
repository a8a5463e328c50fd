package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment       string
	Addr              string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminEmail        string
	AdminPassword     string
	AdminName         string
	NominatimURL      string
	WikipediaURL      string
	WikidataURL       string
	UserAgent         string
	SearchLimit       int
	EnrichConcurrency int
	UpstreamTimeout   time.Duration
	GeocodeRate       float64
}

// LoadAPIConfig constructs an APIConfig from environment variables.
// JWT_SECRET deliberately has no fallback: an empty secret is a startup
// misconfiguration and the entrypoint refuses to serve with one.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:       GetString("APP_ENV", "development"),
		Addr:              GetString("API_ADDR", ":4000"),
		JWTSecret:         GetString("JWT_SECRET", ""),
		TokenTTL:          time.Duration(GetInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		AdminEmail:        GetString("ADMIN_EMAIL", "admin"),
		AdminPassword:     GetString("ADMIN_PASSWORD", "123"),
		AdminName:         GetString("ADMIN_NAME", "Admin"),
		NominatimURL:      GetString("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		WikipediaURL:      GetString("WIKIPEDIA_URL", "https://en.wikipedia.org"),
		WikidataURL:       GetString("WIKIDATA_URL", "https://www.wikidata.org"),
		UserAgent:         GetString("SEARCH_USER_AGENT", "placefinder/1.0 (contact@placefinder.local)"),
		SearchLimit:       GetInt("SEARCH_LIMIT", 10),
		EnrichConcurrency: GetInt("ENRICH_CONCURRENCY", 4),
		UpstreamTimeout:   GetDuration("UPSTREAM_TIMEOUT_SECONDS", 10*time.Second),
		GeocodeRate:       GetFloat("GEOCODE_RATE_PER_SECOND", 1),
	}
}
