package domain

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Address is the normalized structured address of a place. Every field may be
// absent except Full, which always carries the upstream display string verbatim.
type Address struct {
	HouseNumber *string `json:"house_number"`
	Road        *string `json:"road"`
	Suburb      *string `json:"suburb"`
	District    *string `json:"district"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Postcode    *string `json:"postcode"`
	Country     *string `json:"country"`
	Full        string  `json:"full"`
}

// Place is one normalized search result after enrichment. Rating is always
// null: the geocoding upstream has no rating data.
type Place struct {
	PlaceID  int64    `json:"place_id"`
	Name     string   `json:"name"`
	Email    *string  `json:"email"`
	Address  Address  `json:"address"`
	Rating   *float64 `json:"rating"`
	Location Location `json:"location"`
	PhotoURL *string  `json:"photoUrl"`
	MapURL   string   `json:"mapUrl"`
}
