// Package classifier turns a power snapshot into a loss value, a theft verdict
// and a meter-fleet health verdict.
package classifier

import (
	"math"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

// Tolerance is the share of street input allowed to go unaccounted for.
const Tolerance = 0.05

func Classify(s domain.Snapshot) domain.Classification {
	_, _, theft := TheftCheck(s)
	return domain.Classification{
		PowerLoss: PowerLoss(s),
		Theft:     theft,
		Health:    Health(s.MeterStatus),
	}
}

// PowerLoss is street input minus what went to the next street and the houses,
// with missing fields read as zero.
func PowerLoss(s domain.Snapshot) float64 {
	return value(s.StreetInputPower) - value(s.ToNextPower) - value(s.HouseTotalPower)
}

// TheftCheck compares the day totals when the backend sent them, otherwise the
// instantaneous values. At zero input the threshold is zero, so any imbalance
// is flagged.
func TheftCheck(s domain.Snapshot) (diff, threshold float64, verdict domain.TheftVerdict) {
	total := prefer(s.StreetInputTotalDay, s.StreetInputPower)
	next := prefer(s.ToNextTotalDay, s.ToNextPower)
	house := prefer(s.HouseTotalTotalDay, s.HouseTotalPower)

	diff = math.Abs(total - next - house)
	threshold = total * Tolerance
	if diff > threshold {
		return diff, threshold, domain.TheftDetected
	}
	return diff, threshold, domain.NoTheft
}

func Health(meters []domain.MeterStatus) domain.HealthVerdict {
	total := len(meters)
	online := 0
	for _, m := range meters {
		if m.Status == domain.MeterOnline {
			online++
		}
	}

	switch {
	case total == 0:
		return domain.NoMetersFound
	case online == total:
		return domain.SystemNormal
	case online == 0:
		return domain.PowerOff
	default:
		return domain.SystemFault
	}
}

func prefer(aggregate, instant *float64) float64 {
	if aggregate != nil {
		return *aggregate
	}
	return value(instant)
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
