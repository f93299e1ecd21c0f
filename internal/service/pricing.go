package service

import (
	"math"
	"time"
)

// BillableMinutes computes how many minutes of a stay are chargeable after
// subtracting the grace period. Rounding direction is a policy input; both
// directions floor at zero. Given identical inputs the result is identical,
// which is what makes duplicate exit scans re-quote the same number.
func BillableMinutes(startedAt, now time.Time, graceMin int, roundUp bool) int {
	total := now.Sub(startedAt).Minutes()
	if total < 0 {
		total = 0
	}
	billable := total - float64(graceMin)
	if billable <= 0 {
		return 0
	}
	if roundUp {
		return int(math.Ceil(billable))
	}
	return int(billable)
}

// ComputeAmountCents returns the charge in minor units and the billable
// minutes it was derived from.
func ComputeAmountCents(startedAt, now time.Time, pricePerMinuteCents int64, graceMin int, roundUp bool) (int64, int) {
	mins := BillableMinutes(startedAt, now, graceMin, roundUp)
	return int64(mins) * pricePerMinuteCents, mins
}
