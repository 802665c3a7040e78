package domain

import "time"

// Payment is the charge for exactly one rental agreement.
type Payment struct {
	ID          int32     `json:"id"`
	CustomerID  int32     `json:"customer_id"`
	AgentID     int32     `json:"agent_id"`
	RentalID    int32     `json:"rental_id"`
	AmountCents int32     `json:"amount_cents"`
	PaymentTime time.Time `json:"payment_time"`
}
