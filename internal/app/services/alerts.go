package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

// AlertSource is the slice of the API client the alert service needs.
type AlertSource interface {
	GetAlerts(ctx context.Context) ([]domain.Alert, error)
}

// alternativeTransportPatterns extract a substitute-transport phrase from
// CJK alert descriptions. Advisory only; the first match wins.
var alternativeTransportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`改搭([^，。,.\s]+)`),
	regexp.MustCompile(`替代運輸[:：]?\s*([^，。,.\s]+)`),
	regexp.MustCompile(`接駁(?:車|公車)?(?:：|:)?\s*([^，。,.\s]+)`),
	regexp.MustCompile(`公路客運([^，。,.\s]*)`),
}

// AlertService answers suspension queries from an hourly in-memory snapshot
// of active alerts.
type AlertService struct {
	source AlertSource
	now    func() time.Time
	ttl    time.Duration

	mu        sync.Mutex
	alerts    []domain.Alert
	fetchedAt time.Time
}

func NewAlertService(source AlertSource) *AlertService {
	return &AlertService{
		source: source,
		ttl:    constants.AlertServiceCacheTTL,
		now:    time.Now,
	}
}

// GetActiveAlerts returns the active alerts, refreshing the snapshot when it
// is older than an hour.
func (s *AlertService) GetActiveAlerts(ctx context.Context) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alerts != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.alerts, nil
	}

	fetched, err := s.source.GetAlerts(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]domain.Alert, 0, len(fetched))
	for _, alert := range fetched {
		if alert.Status != domain.AlertActive {
			continue
		}
		if alert.AlternativeTransport == "" {
			alert.AlternativeTransport = ParseAlternativeTransport(alert.Description)
		}
		active = append(active, alert)
	}

	s.alerts = active
	s.fetchedAt = s.now()
	return active, nil
}

// IsStationSuspended reports whether any active alert names the station.
func (s *AlertService) IsStationSuspended(ctx context.Context, stationID string) (bool, error) {
	alerts, err := s.GetActiveAlerts(ctx)
	if err != nil {
		return false, err
	}

	for _, alert := range alerts {
		if alert.AffectsStation(stationID) {
			return true, nil
		}
	}
	return false, nil
}

// CheckStations maps each affected station id to its alert.
func (s *AlertService) CheckStations(ctx context.Context, stationIDs []string) (map[string]domain.Alert, error) {
	alerts, err := s.GetActiveAlerts(ctx)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]domain.Alert)
	for _, id := range stationIDs {
		for _, alert := range alerts {
			if alert.AffectsStation(id) {
				hits[id] = alert
				break
			}
		}
	}
	return hits, nil
}

// Invalidate drops the snapshot so the next query refetches.
func (s *AlertService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = nil
	s.fetchedAt = time.Time{}
}

// ParseAlternativeTransport extracts a substitute-transport phrase from an
// alert description, empty when none is found.
func ParseAlternativeTransport(description string) string {
	for _, pattern := range alternativeTransportPatterns {
		if match := pattern.FindStringSubmatch(description); match != nil {
			phrase := strings.TrimSpace(match[len(match)-1])
			if phrase != "" {
				return phrase
			}
			// pattern matched with an empty capture; the verb itself is the hint
			return strings.TrimSpace(match[0])
		}
	}
	return ""
}
