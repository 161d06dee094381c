package domain

// FareOptionType classifies a TPASS fare split.
type FareOptionType string

const (
	FareDirect       FareOptionType = "direct"
	FareTpassFree    FareOptionType = "tpass_free"
	FareTpassPartial FareOptionType = "tpass_partial"
)

// FareOption is one way to pay for a cross-region trip.
type FareOption struct {
	Type            FareOptionType
	TransferStation string
	TotalFare       int
	Savings         int
	Recommended     bool
}

// Region is a TPASS region with its member and boundary stations.
// BoundaryStations are ordered along the logical direction of travel out of
// the region.
type Region struct {
	ID               string
	Name             string
	Stations         map[string]struct{}
	BoundaryStations []string
}

func (r Region) Contains(stationID string) bool {
	_, ok := r.Stations[stationID]
	return ok
}
