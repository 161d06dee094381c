package services

import (
	"context"
	"sort"

	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/util"
)

// TimetableSource is the slice of the API client the timetable service needs.
type TimetableSource interface {
	GetDailyTimetableOD(ctx context.Context, from, to, date string) ([]domain.TrainTimetable, error)
	GetStationTimetable(ctx context.Context, stationID string) ([]domain.StationTimetable, error)
}

// Query strategies reported alongside results so the CLI can label them.
const (
	StrategyOD           = "od"
	StrategyStationMatch = "station-match"
)

// TimetableService answers origin/destination queries. Main-line pairs use
// the OD endpoint; pairs touching a branch line have no OD timetable
// upstream, so their station timetables are intersected instead.
type TimetableService struct {
	source TimetableSource
	branch *BranchLineResolver
}

func NewTimetableService(source TimetableSource, branch *BranchLineResolver) *TimetableService {
	return &TimetableService{source: source, branch: branch}
}

// QueryOD returns the day's segments from origin to destination plus the
// strategy that produced them.
func (s *TimetableService) QueryOD(ctx context.Context, from, to domain.Station, date string) ([]domain.JourneySegment, string, error) {
	if s.branch != nil && (s.branch.IsBranchLineStation(from.ID) || s.branch.IsBranchLineStation(to.ID)) {
		segments, err := s.matchStationTimetables(ctx, from, to)
		return segments, StrategyStationMatch, err
	}

	timetables, err := s.source.GetDailyTimetableOD(ctx, from.ID, to.ID, date)
	if err != nil {
		return nil, StrategyOD, err
	}
	return odSegments(timetables, from.ID, to.ID), StrategyOD, nil
}

// odSegments lifts OD timetables into segments, keeping only trains that
// call at the origin before the destination.
func odSegments(timetables []domain.TrainTimetable, fromID, toID string) []domain.JourneySegment {
	segments := make([]domain.JourneySegment, 0, len(timetables))

	for _, tt := range timetables {
		var fromStop, toStop *domain.StopTime
		for i := range tt.Stops {
			switch tt.Stops[i].StationID {
			case fromID:
				fromStop = &tt.Stops[i]
			case toID:
				toStop = &tt.Stops[i]
			}
		}
		if fromStop == nil || toStop == nil || fromStop.Sequence >= toStop.Sequence {
			continue
		}

		segments = append(segments, domain.JourneySegment{
			TrainNo:         tt.TrainNo,
			TrainType:       tt.TrainType,
			TrainTypeCode:   tt.TrainTypeCode,
			FromStationID:   fromStop.StationID,
			FromStationName: fromStop.StationName,
			ToStationID:     toStop.StationID,
			ToStationName:   toStop.StationName,
			Departure:       fromStop.Departure,
			Arrival:         toStop.Arrival,
			BikeFlag:        tt.BikeFlag,
			WheelchairFlag:  tt.WheelchairFlag,
		})
	}

	sortSegmentsByDeparture(segments)
	return segments
}

func (s *TimetableService) matchStationTimetables(ctx context.Context, from, to domain.Station) ([]domain.JourneySegment, error) {
	originTrains, err := s.stationTrains(ctx, from.ID)
	if err != nil {
		return nil, err
	}
	destTrains, err := s.stationTrains(ctx, to.ID)
	if err != nil {
		return nil, err
	}

	return MatchStationTimetables(from, to, originTrains, destTrains), nil
}

func (s *TimetableService) stationTrains(ctx context.Context, stationID string) (map[string]domain.TrainEntry, error) {
	timetables, err := s.source.GetStationTimetable(ctx, stationID)
	if err != nil {
		return nil, err
	}

	trains := make(map[string]domain.TrainEntry)
	for _, timetable := range timetables {
		for _, train := range timetable.Trains {
			trains[train.TrainNo] = train
		}
	}
	return trains, nil
}

// MatchStationTimetables intersects two stations' daily timetables by train
// number and keeps trains genuinely travelling origin to destination under
// the overnight rule.
func MatchStationTimetables(from, to domain.Station, originTrains, destTrains map[string]domain.TrainEntry) []domain.JourneySegment {
	segments := make([]domain.JourneySegment, 0)

	for trainNo, origin := range originTrains {
		dest, ok := destTrains[trainNo]
		if !ok {
			continue
		}
		if !validateTrainDirection(origin.Departure, dest.Arrival) {
			continue
		}

		segments = append(segments, domain.JourneySegment{
			TrainNo:         trainNo,
			TrainType:       origin.TrainType,
			TrainTypeCode:   origin.TrainTypeCode,
			FromStationID:   from.ID,
			FromStationName: from.Name,
			ToStationID:     to.ID,
			ToStationName:   to.Name,
			Departure:       origin.Departure,
			Arrival:         dest.Arrival,
			BikeFlag:        origin.BikeFlag,
			WheelchairFlag:  origin.WheelchairFlag,
		})
	}

	sortSegmentsByDeparture(segments)
	return segments
}

// validateTrainDirection accepts a pre-dawn arrival after a late-night
// departure as overnight service; a daytime regression means the train runs
// the other way.
func validateTrainDirection(departure, arrival string) bool {
	minutes, err := util.MinutesBetween(departure, arrival)
	return err == nil && minutes > 0
}

func sortSegmentsByDeparture(segments []domain.JourneySegment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return clockLess(segments[i].Departure, segments[j].Departure)
	})
}
