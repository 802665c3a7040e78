package domain

import (
	"math"
	"time"
)

// MaxPercentageBP is 100.00% expressed in basis points.
const MaxPercentageBP int32 = 10000

type DiscountOutcome string

const (
	DiscountCreated    DiscountOutcome = "CREATED"
	DiscountUpdated    DiscountOutcome = "UPDATED"
	DiscountSuperseded DiscountOutcome = "SUPERSEDED"
)

// Discount is a percentage markdown for one title. StartDate and EndDate are
// calendar dates (midnight UTC, see DateOf) and EndDate is inclusive.
type Discount struct {
	ID           int32     `json:"id"`
	TitleID      int32     `json:"title_id"`
	PercentageBP int32     `json:"percentage_bp"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// Percentage returns the markdown as a percent value, e.g. 12.5.
func (d Discount) Percentage() float64 {
	return float64(d.PercentageBP) / 100
}

// ActiveAt reports whether the discount has not yet expired at t. The end
// date counts until the end of that day.
func (d Discount) ActiveAt(t time.Time) bool {
	return !DateOf(t).After(DateOf(d.EndDate))
}

// PercentageToBP converts a percent value with at most two decimals into
// basis points. ok is false when more precision was supplied or pct lies
// outside [0, 100].
func PercentageToBP(pct float64) (bp int32, ok bool) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, false
	}
	scaled := pct * 100
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-6 {
		return 0, false
	}
	return int32(rounded), true
}

// DateOf returns the calendar date of t, as seen in t's location, at
// midnight UTC. Dates compare and subtract without zone or DST effects.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
