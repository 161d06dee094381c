package domain

// Alert is a normalized service alert. Only active alerts are retained.
type Alert struct {
	ID                   string
	Title                string
	Description          string
	Status               AlertStatus
	AffectedStationIDs   map[string]struct{}
	AffectedLineIDs      map[string]struct{}
	AlternativeTransport string
}

type AlertStatus string

const (
	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"
)

func (a Alert) AffectsStation(id string) bool {
	_, ok := a.AffectedStationIDs[id]
	return ok
}

func (a Alert) AffectsLine(id string) bool {
	_, ok := a.AffectedLineIDs[id]
	return ok
}
