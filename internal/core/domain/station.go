package domain

// Station is one TRA station. Stations are loaded once and shared read-only.
type Station struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// MatchConfidence grades how a station query was resolved.
type MatchConfidence string

const (
	ConfidenceExact  MatchConfidence = "exact"
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
)

// StationMatch is a successful resolution of a user query to a station.
type StationMatch struct {
	Station    Station
	Confidence MatchConfidence
}

// StationCandidate is a near-miss returned by search and failed resolutions.
type StationCandidate struct {
	Station  Station
	Distance int
}

// BranchLineInfo describes a branch line and its main-line junction.
type BranchLineInfo struct {
	LineID          string
	LineName        string
	JunctionStation string
}
