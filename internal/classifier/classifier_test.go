package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
)

var f = domain.Float

func meters(online, total int) []domain.MeterStatus {
	out := make([]domain.MeterStatus, total)
	for i := range out {
		out[i] = domain.MeterStatus{MeterID: string(rune('a' + i)), Status: domain.MeterOffline}
		if i < online {
			out[i].Status = domain.MeterOnline
		}
	}
	return out
}

func TestPowerLoss(t *testing.T) {
	s := domain.Snapshot{StreetInputPower: f(100), ToNextPower: f(20), HouseTotalPower: f(70)}
	assert.Equal(t, 10.0, PowerLoss(s))

	assert.Equal(t, 100.0, PowerLoss(domain.Snapshot{StreetInputPower: f(100)}))
	assert.Equal(t, -30.0, PowerLoss(domain.Snapshot{ToNextPower: f(10), HouseTotalPower: f(20)}))
	assert.Equal(t, 0.0, PowerLoss(domain.Snapshot{}))
}

func TestTheftBoundary(t *testing.T) {
	s := domain.Snapshot{StreetInputTotalDay: f(1000), ToNextTotalDay: f(500), HouseTotalTotalDay: f(460)}
	diff, threshold, verdict := TheftCheck(s)
	assert.InDelta(t, 40, diff, 1e-9)
	assert.InDelta(t, 50, threshold, 1e-9)
	assert.Equal(t, domain.NoTheft, verdict)

	s.HouseTotalTotalDay = f(440)
	diff, _, verdict = TheftCheck(s)
	assert.InDelta(t, 60, diff, 1e-9)
	assert.Equal(t, domain.TheftDetected, verdict)
}

func TestTheftExactlyAtThresholdIsNotTheft(t *testing.T) {
	s := domain.Snapshot{StreetInputTotalDay: f(1000), ToNextTotalDay: f(500), HouseTotalTotalDay: f(450)}
	_, _, verdict := TheftCheck(s)
	assert.Equal(t, domain.NoTheft, verdict)
}

func TestTheftZeroInputFlags(t *testing.T) {
	s := domain.Snapshot{StreetInputTotalDay: f(0), ToNextTotalDay: f(0), HouseTotalTotalDay: f(5)}
	diff, threshold, verdict := TheftCheck(s)
	assert.Equal(t, 5.0, diff)
	assert.Equal(t, 0.0, threshold)
	assert.Equal(t, domain.TheftDetected, verdict)

	_, _, verdict = TheftCheck(domain.Snapshot{})
	assert.Equal(t, domain.NoTheft, verdict, "all zero is balanced")
}

func TestTheftFallsBackPerField(t *testing.T) {
	// Aggregates win where present, instantaneous values fill the rest.
	s := domain.Snapshot{
		StreetInputPower:    f(10),
		StreetInputTotalDay: f(1000),
		ToNextPower:         f(500),
		HouseTotalPower:     f(480),
	}
	diff, threshold, verdict := TheftCheck(s)
	assert.InDelta(t, 20, diff, 1e-9)
	assert.InDelta(t, 50, threshold, 1e-9)
	assert.Equal(t, domain.NoTheft, verdict)
}

func TestTheftZeroAggregateIsStillUsed(t *testing.T) {
	s := domain.Snapshot{
		StreetInputPower:    f(1000),
		StreetInputTotalDay: f(0),
		ToNextPower:         f(0),
		HouseTotalPower:     f(0),
	}
	_, threshold, verdict := TheftCheck(s)
	assert.Equal(t, 0.0, threshold)
	assert.Equal(t, domain.NoTheft, verdict)
}

func TestHealth(t *testing.T) {
	assert.Equal(t, domain.NoMetersFound, Health(nil))
	assert.Equal(t, domain.SystemNormal, Health(meters(3, 3)))
	assert.Equal(t, domain.PowerOff, Health(meters(0, 3)))
	assert.Equal(t, domain.SystemFault, Health(meters(1, 3)))
}

func TestHealthOnlyExactOnlineCounts(t *testing.T) {
	ms := []domain.MeterStatus{
		{MeterID: "a", Status: "Online"},
		{MeterID: "b", Status: "online"},
		{MeterID: "c", Status: "Unknown"},
	}
	assert.Equal(t, domain.SystemFault, Health(ms))
}

func TestClassify(t *testing.T) {
	s := domain.Snapshot{
		StreetInputPower: f(100),
		ToNextPower:      f(20),
		HouseTotalPower:  f(70),
		MeterStatus:      meters(2, 2),
	}
	got := Classify(s)
	assert.Equal(t, domain.Classification{PowerLoss: 10, Theft: domain.TheftDetected, Health: domain.SystemNormal}, got)
}
