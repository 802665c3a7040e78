package utils

import (
	"fmt"
	"math"
	"time"

	"mediarental-backend/internal/domain"
)

const dateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd string into midnight of that day in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	return t, nil
}

// FormatDate renders t as yyyy-mm-dd.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DiscountedRate applies a markdown in basis points to a cent amount,
// rounding half up to the nearest cent.
func DiscountedRate(baseCents, discountBP int32) int32 {
	if discountBP <= 0 {
		return baseCents
	}
	if discountBP >= domain.MaxPercentageBP {
		return 0
	}
	scaled := int64(baseCents)*int64(domain.MaxPercentageBP-discountBP) + int64(domain.MaxPercentageBP)/2
	return int32(scaled / int64(domain.MaxPercentageBP))
}

// RentalCost multiplies the per-day rate by the number of days.
func RentalCost(rateCents, days int32) (int32, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive")
	}
	total := int64(rateCents) * int64(days)
	if total > math.MaxInt32 {
		return 0, fmt.Errorf("rental cost overflows: %d cents", total)
	}
	return int32(total), nil
}

// DueTime is start plus the given number of calendar days.
func DueTime(start time.Time, days int32) time.Time {
	return start.AddDate(0, 0, int(days))
}

// DaysUntil counts whole calendar days from a to b, both truncated to dates.
func DaysUntil(a, b time.Time) int {
	da := domain.DateOf(a)
	db := domain.DateOf(b.In(a.Location()))
	return int(db.Sub(da).Hours() / 24)
}
