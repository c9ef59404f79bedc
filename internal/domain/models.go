package domain

import "time"

type MeterState string

const (
	MeterOnline  MeterState = "Online"
	MeterOffline MeterState = "Offline"
)

type MeterStatus struct {
	MeterID string     `json:"meterId"`
	Status  MeterState `json:"status"`
}

// Snapshot is one polled reading of the street. Pointer fields are nil when the
// backend omitted them.
type Snapshot struct {
	StreetInputPower *float64 `json:"streetInputPower,omitempty"`
	ToNextPower      *float64 `json:"toNextPower,omitempty"`
	HouseTotalPower  *float64 `json:"houseTotalPower,omitempty"`

	StreetInputTotalDay *float64 `json:"streetInputTotalDay,omitempty"`
	ToNextTotalDay      *float64 `json:"toNextTotalDay,omitempty"`
	HouseTotalTotalDay  *float64 `json:"houseTotalTotalDay,omitempty"`

	MeterStatus []MeterStatus `json:"meterStatus"`
	Area        string        `json:"area,omitempty"`
}

type TheftVerdict int

const (
	NoTheft TheftVerdict = iota
	TheftDetected
)

func (v TheftVerdict) String() string {
	if v == TheftDetected {
		return "Theft Detected"
	}
	return "No Theft Detected"
}

func (v TheftVerdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

type HealthVerdict int

const (
	NoMetersFound HealthVerdict = iota
	SystemNormal
	PowerOff
	SystemFault
)

func (v HealthVerdict) String() string {
	switch v {
	case SystemNormal:
		return "System Normal"
	case PowerOff:
		return "Power Off"
	case SystemFault:
		return "System Fault (Some Meters Offline)"
	default:
		return "No Meters Found"
	}
}

func (v HealthVerdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// Classification is derived from exactly one Snapshot and never updated in place.
type Classification struct {
	PowerLoss float64       `json:"powerLoss"`
	Theft     TheftVerdict  `json:"theftVerdict"`
	Health    HealthVerdict `json:"healthVerdict"`
}

type AlertKind string

const (
	AlertInvestigate AlertKind = "investigate"
	AlertFault       AlertKind = "fault"
)

func (k AlertKind) Valid() bool {
	return k == AlertInvestigate || k == AlertFault
}

// UnknownArea is sent when the current snapshot carries no area label.
const UnknownArea = "Unknown Area"

type EmailRequest struct {
	Type AlertKind `json:"type"`
	Area string    `json:"area"`
}

type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// TheftAlert is the label stored on historical log rows. The backend classifier
// is richer than the live verdict, so it has four outcomes.
type TheftAlert string

const (
	AlertTheftDetected TheftAlert = "Theft Detected"
	AlertSystemFault   TheftAlert = "System Fault"
	AlertLightCutOff   TheftAlert = "Light Cut Off"
	AlertNoTheft       TheftAlert = "No Theft"
)

// Normalize maps any unrecognised label to AlertNoTheft.
func (a TheftAlert) Normalize() TheftAlert {
	switch a {
	case AlertTheftDetected, AlertSystemFault, AlertLightCutOff:
		return a
	default:
		return AlertNoTheft
	}
}

type LogEntry struct {
	ID         string     `db:"id" json:"_id"`
	Date       time.Time  `db:"date" json:"date"`
	PowerLoss  float64    `db:"power_loss" json:"powerLoss"`
	TheftAlert TheftAlert `db:"theft_alert" json:"theftAlert"`
}

type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

func (g Granularity) Valid() bool { return g == Daily || g == Monthly }

// DefaultInterval is the refresh cadence each log view uses unless configured.
func (g Granularity) DefaultInterval() time.Duration {
	if g == Monthly {
		return 5 * time.Minute
	}
	return time.Minute
}

// SortsClientSide reports whether entries are re-ordered newest first after a
// fetch. Monthly logs keep the order the server returned.
func (g Granularity) SortsClientSide() bool { return g == Daily }

type HealthSummary struct {
	Network      string  `json:"network"`
	Accuracy     float64 `json:"accuracy"`
	ActiveMeters int     `json:"activeMeters"`
	LastSync     string  `json:"lastSync"`
}

const NetworkOffline = "Offline"

// InitialHealth is shown before the first health poll completes.
func InitialHealth() HealthSummary {
	return HealthSummary{Network: "Checking...", LastSync: "—"}
}

// MeterRole identifies where on the street a meter sits.
type MeterRole string

const (
	RoleStreetInput MeterRole = "street_input"
	RoleToNext      MeterRole = "to_next"
	RoleHouse       MeterRole = "house"
)

func (r MeterRole) Valid() bool {
	return r == RoleStreetInput || r == RoleToNext || r == RoleHouse
}

// Reading is one meter sample as published on MQTT and stored by the backend.
type Reading struct {
	ID        int64     `db:"id" json:"-"`
	MeterID   string    `db:"meter_id" json:"meter_id"`
	Role      MeterRole `db:"role" json:"role"`
	Area      string    `db:"area" json:"area"`
	PowerW    float64   `db:"power_w" json:"power_w"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// Float returns a pointer to v, for building snapshots.
func Float(v float64) *float64 { return &v }

// AlertRecord is the audit row kept for every dispatched email alert.
type AlertRecord struct {
	ID     string    `json:"id"`
	Kind   AlertKind `json:"type"`
	Area   string    `json:"area"`
	SentAt time.Time `json:"sentAt"`
}
