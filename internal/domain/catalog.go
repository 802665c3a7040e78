package domain

// CatalogItem carries the descriptive data of a title. The booking engine
// only passes it through to storage.
type CatalogItem struct {
	TitleID              int32   `json:"title_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	ReleaseYear          int32   `json:"release_year"`
	RentalDurationDays   int32   `json:"rental_duration_days"`
	RentalRateCents      int32   `json:"rental_rate_cents"`
	ReplacementCostCents int32   `json:"replacement_cost_cents"`
	Rating               string  `json:"rating"`
	CategoryID           int32   `json:"category_id"`
	ActorIDs             []int32 `json:"actor_ids"`
}

// CatalogEdit is one all-or-nothing edit of a catalog item together with the
// desired number of units at a location.
type CatalogEdit struct {
	Item        CatalogItem `json:"item"`
	LocationID  int32       `json:"location_id"`
	TargetUnits int         `json:"target_units"`
}

type EditResult struct {
	TitleID     int32 `json:"title_id"`
	LocationID  int32 `json:"location_id"`
	UnitsBefore int   `json:"units_before"`
	UnitsAfter  int   `json:"units_after"`
	Added       int   `json:"added"`
	Removed     int   `json:"removed"`
	// Shortfall is how many units could not be removed because they are
	// rented out now or booked for later.
	Shortfall int `json:"shortfall"`
}
