package tdx

import (
	"strings"
	"time"

	"github.com/thushan/traigo/internal/core/domain"
)

// SimplifyTrainType strips trailing parenthetical qualifiers from a train
// type name: "自強(3000)(EMU3000型電車)" becomes "自強". Both ASCII and
// fullwidth parentheses appear in upstream data.
func SimplifyTrainType(name string) string {
	name = strings.TrimSpace(name)
	for {
		trimmed := stripTrailingParen(name)
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

func stripTrailingParen(name string) string {
	for _, pair := range [...][2]string{{"(", ")"}, {"（", "）"}} {
		if !strings.HasSuffix(name, pair[1]) {
			continue
		}
		if open := strings.LastIndex(name, pair[0]); open >= 0 {
			return strings.TrimSpace(name[:open])
		}
	}
	return name
}

func parseUpdateTime(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toStation(dto stationDTO) domain.Station {
	return domain.Station{
		ID:   dto.StationID,
		Name: dto.StationName.ZhTw,
		Lat:  dto.StationPosition.PositionLat,
		Lon:  dto.StationPosition.PositionLon,
	}
}

func toTrainTimetable(dto trainTimetableDTO) domain.TrainTimetable {
	tt := domain.TrainTimetable{
		TrainNo:        dto.TrainInfo.TrainNo,
		TrainType:      SimplifyTrainType(dto.TrainInfo.TrainTypeName.ZhTw),
		TrainTypeCode:  dto.TrainInfo.TrainTypeCode,
		BikeFlag:       dto.TrainInfo.BikeFlag == 1,
		WheelchairFlag: dto.TrainInfo.WheelChairFlag == 1,
		Stops:          make([]domain.StopTime, 0, len(dto.StopTimes)),
	}
	for _, stop := range dto.StopTimes {
		tt.Stops = append(tt.Stops, domain.StopTime{
			StationID:   stop.StationID,
			StationName: stop.StationName.ZhTw,
			Arrival:     stop.ArrivalTime,
			Departure:   stop.DepartureTime,
			Sequence:    stop.StopSequence,
		})
	}
	return tt
}

func toStationTimetable(dto stationTimetableDTO) domain.StationTimetable {
	st := domain.StationTimetable{
		StationID: dto.StationID,
		Direction: dto.Direction,
		Trains:    make([]domain.TrainEntry, 0, len(dto.TimeTables)),
	}
	for _, row := range dto.TimeTables {
		st.Trains = append(st.Trains, domain.TrainEntry{
			TrainNo:       row.TrainNo,
			TrainType:     SimplifyTrainType(row.TrainTypeName.ZhTw),
			TrainTypeCode: row.TrainTypeCode,
			Departure:     row.DepartureTime,
			Arrival:       row.ArrivalTime,
		})
	}
	return st
}

func toAlert(dto alertDTO) domain.Alert {
	alert := domain.Alert{
		ID:                 dto.AlertID,
		Title:              dto.Title,
		Description:        dto.Description,
		Status:             domain.AlertResolved,
		AffectedStationIDs: make(map[string]struct{}, len(dto.Scope.Stations)),
		AffectedLineIDs:    make(map[string]struct{}, len(dto.Scope.Lines)),
	}
	if dto.Status == alertStatusActive {
		alert.Status = domain.AlertActive
	}
	for _, s := range dto.Scope.Stations {
		alert.AffectedStationIDs[s.StationID] = struct{}{}
	}
	for _, l := range dto.Scope.Lines {
		alert.AffectedLineIDs[l.LineID] = struct{}{}
	}
	return alert
}

const alertStatusActive = 2
