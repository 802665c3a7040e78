package domain

import "time"

type RentRequest struct {
	TitleID    int32     `json:"title_id"`
	LocationID int32     `json:"location_id"`
	CustomerID int32     `json:"customer_id"`
	AgentID    int32     `json:"agent_id"`
	Start      time.Time `json:"start"` // zero means now
	Days       int32     `json:"days"`
}

type BookingResult struct {
	RentalID    int32       `json:"rental_id"`
	PaymentID   int32       `json:"payment_id"`
	UnitID      int32       `json:"unit_id"`
	BookingRef  string      `json:"booking_ref"`
	RateCents   int32       `json:"rate_cents"`
	DiscountBP  int32       `json:"discount_bp"`
	AmountCents int32       `json:"amount_cents"`
	Start       time.Time   `json:"start"`
	Due         time.Time   `json:"due"`
	State       RentalState `json:"state"`
}
