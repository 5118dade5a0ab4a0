package crowd

import (
	"strings"
	"time"
)

// Level is the raw ordinal busyness level carried by a prediction row.
// Only 1..4 are recognized; anything else (including 0 for a missing or
// malformed cell) is unrecognized.
type Level int

const (
	LevelQuiet    Level = 1
	LevelModerate Level = 2
	LevelBusy     Level = 3
	LevelVeryBusy Level = 4
)

// Labels rendered to clients.
const (
	LabelQuiet    = "Quiet"
	LabelModerate = "Moderate"
	LabelBusy     = "Busy"
	LabelVeryBusy = "Very Busy"
)

// An unrecognized level renders as Moderate but scores as Busy.
// Both defaults are kept as-is for parity with the published app.
const (
	DefaultLabel = LabelModerate
	DefaultScore = 3
)

var levelLabels = map[Level]string{
	LevelQuiet:    LabelQuiet,
	LevelModerate: LabelModerate,
	LevelBusy:     LabelBusy,
	LevelVeryBusy: LabelVeryBusy,
}

// Valid reports whether the level is one of the four recognized tiers.
func (l Level) Valid() bool {
	return l >= LevelQuiet && l <= LevelVeryBusy
}

// Label returns the display label, DefaultLabel when unrecognized.
func (l Level) Label() string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return DefaultLabel
}

// Score returns the ranking score, DefaultScore when unrecognized.
func (l Level) Score() int {
	if l.Valid() {
		return int(l)
	}
	return DefaultScore
}

// normalizeLabel folds case and drops spaces so "Very Busy", "VeryBusy"
// and "very busy" compare equal.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// IsBusyLabel reports whether a label is Busy or Very Busy.
func IsBusyLabel(label string) bool {
	switch normalizeLabel(label) {
	case normalizeLabel(LabelBusy), normalizeLabel(LabelVeryBusy):
		return true
	}
	return false
}

// Row is one record of the prediction table. Date and Hour are nil when the
// cell is missing or could not be parsed.
type Row struct {
	Place    string
	Date     *int // days since 1899-12-30
	Hour     *int
	District string
	Level    Level
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is a registry entry.
type Place struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Snapshot is the busyness of one place at the instant of a query.
type Snapshot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	BusyLevel string  `json:"busyLevel"`
}

// ForecastItem is one hour of a place's forecast window.
type ForecastItem struct {
	Timestamp time.Time `json:"iso"`
	Hour      int       `json:"hour"`
	Label     string    `json:"level"`
	Score     int       `json:"score"`
	Date      string    `json:"date"`
}

// Forecast is the forecast window for a single place.
// Coordinates is nil when the place is not in the registry.
type Forecast struct {
	Place       string         `json:"place"`
	Coordinates *Coordinates   `json:"coordinates"`
	Address     string         `json:"address,omitempty"`
	Items       []ForecastItem `json:"forecast"`
	Best        *ForecastItem  `json:"best"`
	BestHint    string         `json:"bestHint"`
}

// SnapshotRecord is a snapshot captured for a region at a point in time.
type SnapshotRecord struct {
	ID      string     `json:"id"`
	Region  string     `json:"region"`
	TakenAt time.Time  `json:"takenAt"`
	Places  []Snapshot `json:"places"`
}
