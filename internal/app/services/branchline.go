package services

import (
	"context"
	"sort"

	"github.com/thushan/traigo/internal/core/domain"
)

// BranchLineIDs are the six TRA branch lines whose stations have no OD-pair
// timetables upstream.
var BranchLineIDs = []string{"PX", "SA", "JJ", "NW", "LJ", "SH"}

// LineSource is the slice of the API client the branch-line resolver needs.
type LineSource interface {
	GetStationsOfLine(ctx context.Context, lineID string) ([]domain.LineStation, error)
	GetLines(ctx context.Context) ([]domain.Line, error)
}

// BranchLineResolver knows which stations sit on branch lines and where each
// branch joins the main line. Built once at startup, read-only afterwards.
type BranchLineResolver struct {
	byStation map[string]domain.BranchLineInfo
	junctions map[string]struct{}
}

func NewBranchLineResolver(ctx context.Context, source LineSource) (*BranchLineResolver, error) {
	lineNames := make(map[string]string)
	if lines, err := source.GetLines(ctx); err == nil {
		for _, line := range lines {
			lineNames[line.ID] = line.NameZh
		}
	}

	r := &BranchLineResolver{
		byStation: make(map[string]domain.BranchLineInfo),
		junctions: make(map[string]struct{}),
	}

	for _, lineID := range BranchLineIDs {
		stations, err := source.GetStationsOfLine(ctx, lineID)
		if err != nil {
			// a missing branch line degrades that line only
			if domain.CodeOf(err) == domain.CodeNotFound {
				continue
			}
			return nil, err
		}
		r.addLine(lineID, lineNames[lineID], stations)
	}
	return r, nil
}

// NewBranchLineResolverFromData builds the resolver from preloaded tables.
func NewBranchLineResolverFromData(lines map[string][]domain.LineStation) *BranchLineResolver {
	r := &BranchLineResolver{
		byStation: make(map[string]domain.BranchLineInfo),
		junctions: make(map[string]struct{}),
	}
	for lineID, stations := range lines {
		r.addLine(lineID, "", stations)
	}
	return r
}

// addLine indexes one branch line. The lowest-sequence station is the
// junction where the branch meets the main line.
func (r *BranchLineResolver) addLine(lineID, lineName string, stations []domain.LineStation) {
	if len(stations) == 0 {
		return
	}

	ordered := make([]domain.LineStation, len(stations))
	copy(ordered, stations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Sequence < ordered[j].Sequence })

	junction := ordered[0].StationID
	r.junctions[junction] = struct{}{}

	info := domain.BranchLineInfo{LineID: lineID, LineName: lineName, JunctionStation: junction}
	for _, station := range ordered {
		r.byStation[station.StationID] = info
	}
}

func (r *BranchLineResolver) IsBranchLineStation(id string) bool {
	_, ok := r.byStation[id]
	return ok
}

// GetJunctionStation returns the main-line junction for a branch-line
// station, or empty for junctions themselves and main-line stations.
func (r *BranchLineResolver) GetJunctionStation(id string) string {
	if _, isJunction := r.junctions[id]; isJunction {
		return ""
	}
	if info, ok := r.byStation[id]; ok {
		return info.JunctionStation
	}
	return ""
}

func (r *BranchLineResolver) GetBranchLineInfo(id string) (domain.BranchLineInfo, bool) {
	info, ok := r.byStation[id]
	return info, ok
}

func (r *BranchLineResolver) GetAllJunctionStations() []string {
	junctions := make([]string, 0, len(r.junctions))
	for id := range r.junctions {
		junctions = append(junctions, id)
	}
	sort.Strings(junctions)
	return junctions
}
