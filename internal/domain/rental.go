package domain

import "time"

type RentalState string

const (
	// RentalStateReserved means the agreement row exists but no payment has
	// been recorded yet. Rows left in this state past the reservation TTL are
	// removed by the repair job.
	RentalStateReserved  RentalState = "RESERVED"
	RentalStateCompleted RentalState = "COMPLETED"
)

type RentalAgreement struct {
	ID          int32       `json:"id"`
	UnitID      int32       `json:"unit_id"`
	CustomerID  int32       `json:"customer_id"`
	AgentID     int32       `json:"agent_id"`
	StartTime   time.Time   `json:"start_time"`
	DueTime     time.Time   `json:"due_time"`
	ReturnTime  *time.Time  `json:"return_time,omitempty"`
	State       RentalState `json:"state"`
	AmountCents int32       `json:"amount_cents"`
	BookingRef  string      `json:"booking_ref"`
	CreatedOn   time.Time   `json:"created_on"`
}

// Occupied returns the interval during which the unit is unavailable. An
// early return frees the unit from the return time on.
func (r RentalAgreement) Occupied() Interval {
	end := r.DueTime
	if r.ReturnTime != nil && r.ReturnTime.Before(end) {
		end = *r.ReturnTime
	}
	return Interval{Start: r.StartTime, End: end}
}

func (r RentalAgreement) Returned() bool {
	return r.ReturnTime != nil
}
