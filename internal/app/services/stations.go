// Package services holds the domain services built on the API access layer:
// station resolution, branch-line awareness, journey planning, alerts, TPASS
// fare splitting and the health aggregate.
package services

import (
	"context"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/thushan/traigo/internal/core/domain"
)

// StationSource is the slice of the API client the resolver needs.
type StationSource interface {
	GetStations(ctx context.Context) ([]domain.Station, error)
}

// station name suffixes users commonly append, longest first
var stationSuffixes = []string{"火車站", "車站", "站"}

// StationResolver turns free-form user input into a station. Station data is
// loaded once and the derived indexes are read-only afterwards.
type StationResolver struct {
	byID     map[string]domain.Station
	byName   map[string]domain.Station
	stations []domain.Station

	nicknames   map[string]string
	corrections map[string]string
}

func NewStationResolver(ctx context.Context, source StationSource) (*StationResolver, error) {
	stations, err := source.GetStations(ctx)
	if err != nil {
		return nil, err
	}
	return NewStationResolverFromData(stations), nil
}

func NewStationResolverFromData(stations []domain.Station) *StationResolver {
	r := &StationResolver{
		stations:    stations,
		byID:        make(map[string]domain.Station, len(stations)),
		byName:      make(map[string]domain.Station, len(stations)),
		nicknames:   defaultNicknames,
		corrections: defaultCorrections,
	}
	for _, s := range stations {
		r.byID[s.ID] = s
		r.byName[s.Name] = s
	}
	return r
}

// Resolve runs the resolution ladder: id, nickname, suffix strip, spelling
// correction, exact, 台/臺 variant, then fuzzy. The first rung that matches
// wins.
func (r *StationResolver) Resolve(query string) (domain.StationMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.StationMatch{}, &domain.StationNotFoundError{Query: query}
	}

	if isDigits(query) {
		if station, ok := r.byID[query]; ok {
			return domain.StationMatch{Station: station, Confidence: domain.ConfidenceExact}, nil
		}
		return domain.StationMatch{}, &domain.StationNotFoundError{Query: query}
	}

	if id, ok := r.nicknames[query]; ok {
		if station, ok := r.byID[id]; ok {
			return domain.StationMatch{Station: station, Confidence: domain.ConfidenceExact}, nil
		}
	}

	name := stripStationSuffix(query)
	if corrected, ok := r.corrections[name]; ok {
		name = corrected
	}

	if station, ok := r.byName[name]; ok {
		return domain.StationMatch{Station: station, Confidence: domain.ConfidenceExact}, nil
	}

	if variant := swapTaiwanVariant(name); variant != name {
		if station, ok := r.byName[variant]; ok {
			return domain.StationMatch{Station: station, Confidence: domain.ConfidenceExact}, nil
		}
	}

	if match, ok := r.fuzzyMatch(name); ok {
		return match, nil
	}

	candidates := r.Search(name, suggestionLimit)
	notFound := &domain.StationNotFoundError{Query: query}
	for _, c := range candidates {
		notFound.Candidates = append(notFound.Candidates, c.Station.Name)
	}
	if len(candidates) > 0 {
		notFound.Suggestion = candidates[0].Station.Name
	}
	return domain.StationMatch{}, notFound
}

const (
	suggestionLimit  = 5
	maxFuzzyDistance = 2
)

func (r *StationResolver) fuzzyMatch(name string) (domain.StationMatch, bool) {
	best := domain.Station{}
	bestDistance := maxFuzzyDistance + 1

	for _, station := range r.stations {
		if d := levenshtein.Distance(name, station.Name, nil); d < bestDistance {
			best = station
			bestDistance = d
		}
	}

	switch bestDistance {
	case 1:
		return domain.StationMatch{Station: best, Confidence: domain.ConfidenceHigh}, true
	case 2:
		return domain.StationMatch{Station: best, Confidence: domain.ConfidenceMedium}, true
	default:
		return domain.StationMatch{}, false
	}
}

// Search returns the closest stations by edit distance without asserting a
// successful resolution.
func (r *StationResolver) Search(query string, limit int) []domain.StationCandidate {
	query = stripStationSuffix(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	candidates := make([]domain.StationCandidate, 0, len(r.stations))
	for _, station := range r.stations {
		candidates = append(candidates, domain.StationCandidate{
			Station:  station,
			Distance: levenshtein.Distance(query, station.Name, nil),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (r *StationResolver) GetByID(id string) (domain.Station, bool) {
	station, ok := r.byID[id]
	return station, ok
}

func (r *StationResolver) GetAllStations() []domain.Station {
	return r.stations
}

func stripStationSuffix(name string) string {
	for _, suffix := range stationSuffixes {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != name && trimmed != "" {
			return trimmed
		}
	}
	return name
}

// swapTaiwanVariant flips 台 and 臺, which upstream data uses inconsistently.
func swapTaiwanVariant(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '台':
			b.WriteRune('臺')
		case '臺':
			b.WriteRune('台')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
