package domain

import "time"

// InventoryUnit is one checkout-able copy of a title at a location.
type InventoryUnit struct {
	ID         int32      `json:"id"`
	TitleID    int32      `json:"title_id"`
	LocationID int32      `json:"location_id"`
	CreatedOn  time.Time  `json:"created_on"`
	RetiredOn  *time.Time `json:"retired_on,omitempty"`
}

// Retired units keep their rental history but are never offered again.
func (u InventoryUnit) Retired() bool {
	return u.RetiredOn != nil
}
