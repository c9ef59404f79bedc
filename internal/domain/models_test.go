package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTheftAlertNormalize(t *testing.T) {
	cases := map[TheftAlert]TheftAlert{
		"Theft Detected": AlertTheftDetected,
		"System Fault":   AlertSystemFault,
		"Light Cut Off":  AlertLightCutOff,
		"No Theft":       AlertNoTheft,
		"":               AlertNoTheft,
		"theft detected": AlertNoTheft,
	}
	for in, want := range cases {
		assert.Equal(t, want, in.Normalize(), "input %q", in)
	}
}

func TestSnapshotDistinguishesMissingFromZero(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"streetInputPower":0,"meterStatus":[{"meterId":"m1","status":"Online"}]}`), &s))

	require.NotNil(t, s.StreetInputPower)
	assert.Equal(t, 0.0, *s.StreetInputPower)
	assert.Nil(t, s.ToNextPower)
	assert.Nil(t, s.StreetInputTotalDay)
	assert.Equal(t, MeterOnline, s.MeterStatus[0].Status)
}

func TestClassificationJSONUsesLabels(t *testing.T) {
	b, err := json.Marshal(Classification{PowerLoss: 10, Theft: TheftDetected, Health: SystemFault})
	require.NoError(t, err)
	assert.JSONEq(t, `{"powerLoss":10,"theftVerdict":"Theft Detected","healthVerdict":"System Fault (Some Meters Offline)"}`, string(b))
}

func TestLogEntryIDField(t *testing.T) {
	var e LogEntry
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","date":"2025-06-01T10:00:00Z","powerLoss":12.5,"theftAlert":"Light Cut Off"}`), &e))
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, AlertLightCutOff, e.TheftAlert)
}

func TestGranularityPolicy(t *testing.T) {
	assert.True(t, Daily.SortsClientSide())
	assert.False(t, Monthly.SortsClientSide())
	assert.False(t, Granularity("weekly").Valid())
}
