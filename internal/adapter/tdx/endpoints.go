package tdx

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

const dateLayout = "2006-01-02"

// GetStations fetches every TRA station.
func (c *Client) GetStations(ctx context.Context) ([]domain.Station, error) {
	var envelope stationsEnvelope
	if err := c.fetch(ctx, c.cache, keyStations(), constants.TTLStations, "/v3/Rail/TRA/Station", nil, &envelope); err != nil {
		return nil, err
	}

	stations := make([]domain.Station, 0, len(envelope.Stations))
	for _, dto := range envelope.Stations {
		stations = append(stations, toStation(dto))
	}
	return stations, nil
}

// GetDailyTimetableOD fetches the origin/destination daily timetable. Only
// valid for main-line pairs; branch-line pairs go through the station
// timetable matcher instead.
func (c *Client) GetDailyTimetableOD(ctx context.Context, from, to, date string) ([]domain.TrainTimetable, error) {
	if from == "" || to == "" {
		return nil, domain.NewError(domain.CodeBadInput, "origin and destination station ids are required")
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v3/Rail/TRA/DailyTrainTimetable/OD/%s/to/%s/%s", from, to, date)
	var envelope trainTimetablesEnvelope
	if err := c.fetch(ctx, c.cache, keyODTimetable(from, to, date), constants.TTLTimetable, path, nil, &envelope); err != nil {
		return nil, err
	}

	timetables := make([]domain.TrainTimetable, 0, len(envelope.TrainTimetables))
	for _, dto := range envelope.TrainTimetables {
		timetables = append(timetables, toTrainTimetable(dto))
	}
	return timetables, nil
}

// GetTrainTimetable fetches one train's full schedule by number.
func (c *Client) GetTrainTimetable(ctx context.Context, trainNo string) (domain.TrainTimetable, error) {
	if trainNo == "" {
		return domain.TrainTimetable{}, domain.NewError(domain.CodeBadInput, "train number is required")
	}

	path := "/v3/Rail/TRA/GeneralTrainTimetable/TrainNo/" + url.PathEscape(trainNo)
	var envelope trainTimetablesEnvelope
	if err := c.fetch(ctx, c.cache, keyTrainTimetable(trainNo), constants.TTLTimetable, path, nil, &envelope); err != nil {
		return domain.TrainTimetable{}, err
	}

	if len(envelope.TrainTimetables) == 0 {
		return domain.TrainTimetable{}, domain.NewError(domain.CodeNotFound,
			fmt.Sprintf("no timetable for train %s", trainNo)).WithContext("train_no", trainNo)
	}
	return toTrainTimetable(envelope.TrainTimetables[0]), nil
}

// GetStationTimetable fetches today's timetable for one station, both
// directions.
func (c *Client) GetStationTimetable(ctx context.Context, stationID string) ([]domain.StationTimetable, error) {
	if stationID == "" {
		return nil, domain.NewError(domain.CodeBadInput, "station id is required")
	}

	date := c.now().Format(dateLayout)
	path := "/v3/Rail/TRA/DailyStationTimetable/Today/Station/" + url.PathEscape(stationID)
	var envelope stationTimetablesEnvelope
	if err := c.fetch(ctx, c.cache, keyStationTimetable(stationID, date), constants.TTLTimetable, path, nil, &envelope); err != nil {
		return nil, err
	}

	timetables := make([]domain.StationTimetable, 0, len(envelope.StationTimetables))
	for _, dto := range envelope.StationTimetables {
		timetables = append(timetables, toStationTimetable(dto))
	}
	return timetables, nil
}

// GetTrainLiveBoard fetches the live position of one train. Never cached.
func (c *Client) GetTrainLiveBoard(ctx context.Context, trainNo string) ([]domain.TrainLiveStatus, error) {
	if trainNo == "" {
		return nil, domain.NewError(domain.CodeBadInput, "train number is required")
	}

	path := "/v3/Rail/TRA/TrainLiveBoard/TrainNo/" + url.PathEscape(trainNo)
	var envelope trainLiveBoardsEnvelope
	if err := c.fetch(ctx, nil, "", 0, path, nil, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.TrainLiveBoards) == 0 {
		return nil, domain.NewError(domain.CodeNotFound,
			fmt.Sprintf("train %s is not currently running", trainNo)).WithContext("train_no", trainNo)
	}

	statuses := make([]domain.TrainLiveStatus, 0, len(envelope.TrainLiveBoards))
	for _, dto := range envelope.TrainLiveBoards {
		statuses = append(statuses, domain.TrainLiveStatus{
			TrainNo:      dto.TrainNo,
			StationID:    dto.StationID,
			StationName:  dto.StationName.ZhTw,
			Status:       trainStationStatus(dto.TrainStationStatus),
			DelayMinutes: dto.DelayTime,
			UpdatedAt:    parseUpdateTime(dto.UpdateTime),
		})
	}
	return statuses, nil
}

// GetLiveTrainDelays fetches v2 live delay records for a set of trains using
// an OData filter. Never cached.
func (c *Client) GetLiveTrainDelays(ctx context.Context, trainNos []string) ([]domain.TrainDelay, error) {
	if len(trainNos) == 0 {
		return nil, domain.NewError(domain.CodeBadInput, "at least one train number is required")
	}

	clauses := make([]string, 0, len(trainNos))
	for _, no := range trainNos {
		clauses = append(clauses, fmt.Sprintf("TrainNo eq '%s'", no))
	}
	query := url.Values{"$filter": {strings.Join(clauses, " or ")}}

	var rows []liveTrainDelayDTO
	if err := c.fetch(ctx, nil, "", 0, "/v2/Rail/TRA/LiveTrainDelay", query, &rows); err != nil {
		return nil, err
	}

	delays := make([]domain.TrainDelay, 0, len(rows))
	for _, dto := range rows {
		delays = append(delays, domain.TrainDelay{
			TrainNo:      dto.TrainNo,
			StationID:    dto.StationID,
			DelayMinutes: dto.DelayTime,
			UpdatedAt:    parseUpdateTime(dto.UpdateTime),
		})
	}
	return delays, nil
}

// GetODFare fetches the adult full fare between two stations.
func (c *Client) GetODFare(ctx context.Context, from, to string) (domain.ODFare, error) {
	if from == "" || to == "" {
		return domain.ODFare{}, domain.NewError(domain.CodeBadInput, "origin and destination station ids are required")
	}

	path := fmt.Sprintf("/v3/Rail/TRA/ODFare/%s/to/%s", from, to)
	var envelope odFaresEnvelope
	if err := c.fetch(ctx, c.cache, keyODFare(from, to), constants.TTLFare, path, nil, &envelope); err != nil {
		return domain.ODFare{}, err
	}

	if len(envelope.ODFares) == 0 {
		return domain.ODFare{}, domain.NewError(domain.CodeNotFound,
			fmt.Sprintf("no fare between %s and %s", from, to))
	}

	dto := envelope.ODFares[0]
	return domain.ODFare{
		OriginID:      dto.OriginStationID,
		DestinationID: dto.DestinationStationID,
		Price:         adultFullFare(dto.Fares),
	}, nil
}

// GetLines fetches every TRA line.
func (c *Client) GetLines(ctx context.Context) ([]domain.Line, error) {
	var envelope linesEnvelope
	if err := c.fetch(ctx, c.cache, keyLines(), constants.TTLLines, "/v3/Rail/TRA/Line", nil, &envelope); err != nil {
		return nil, err
	}

	lines := make([]domain.Line, 0, len(envelope.Lines))
	for _, dto := range envelope.Lines {
		lines = append(lines, domain.Line{ID: dto.LineID, NameZh: dto.LineName.ZhTw, NameEn: dto.LineName.En})
	}
	return lines, nil
}

// GetStationsOfLine fetches the ordered stations of one line.
func (c *Client) GetStationsOfLine(ctx context.Context, lineID string) ([]domain.LineStation, error) {
	if lineID == "" {
		return nil, domain.NewError(domain.CodeBadInput, "line id is required")
	}

	query := url.Values{"$filter": {fmt.Sprintf("LineID eq '%s'", lineID)}}
	var envelope stationOfLinesEnvelope
	if err := c.fetch(ctx, c.cache, keyLineStations(lineID), constants.TTLLineStations, "/v3/Rail/TRA/StationOfLine", query, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.StationOfLines) == 0 {
		return nil, domain.NewError(domain.CodeNotFound, fmt.Sprintf("no such line %s", lineID))
	}

	entry := envelope.StationOfLines[0]
	stations := make([]domain.LineStation, 0, len(entry.Stations))
	for _, dto := range entry.Stations {
		stations = append(stations, domain.LineStation{
			LineID:      entry.LineID,
			StationID:   dto.StationID,
			StationName: dto.StationName.ZhTw,
			Sequence:    dto.Sequence,
		})
	}
	return stations, nil
}

// GetLineTransfers fetches the transfer-time table between lines.
func (c *Client) GetLineTransfers(ctx context.Context) ([]domain.LineTransfer, error) {
	var envelope lineTransfersEnvelope
	if err := c.fetch(ctx, c.cache, keyLineTransfers(), constants.TTLLineTransfers, "/v3/Rail/TRA/LineTransfer", nil, &envelope); err != nil {
		return nil, err
	}

	transfers := make([]domain.LineTransfer, 0, len(envelope.LineTransfers))
	for _, dto := range envelope.LineTransfers {
		transfers = append(transfers, domain.LineTransfer{
			FromStationID:      dto.FromStationID,
			ToStationID:        dto.ToStationID,
			FromLineID:         dto.FromLineID,
			ToLineID:           dto.ToLineID,
			MinTransferMinutes: dto.MinTransferTime,
		})
	}
	return transfers, nil
}

// GetAlerts fetches current service alerts. Cached in the memory tier only;
// alerts are too volatile for the disk tier.
func (c *Client) GetAlerts(ctx context.Context) ([]domain.Alert, error) {
	var envelope alertsEnvelope
	if err := c.fetch(ctx, c.alertCache, keyAlerts(), constants.TTLAlerts, "/v3/Rail/TRA/Alert", nil, &envelope); err != nil {
		return nil, err
	}

	alerts := make([]domain.Alert, 0, len(envelope.Alerts))
	for _, dto := range envelope.Alerts {
		alerts = append(alerts, toAlert(dto))
	}
	return alerts, nil
}

// GetStationExits fetches the exits of one station.
func (c *Client) GetStationExits(ctx context.Context, stationID string) ([]domain.StationExit, error) {
	if stationID == "" {
		return nil, domain.NewError(domain.CodeBadInput, "station id is required")
	}

	query := url.Values{"$filter": {fmt.Sprintf("StationID eq '%s'", stationID)}}
	var envelope stationExitsEnvelope
	if err := c.fetch(ctx, c.cache, keyStationExits(stationID), constants.TTLStationExits, "/v3/Rail/TRA/StationExit", query, &envelope); err != nil {
		return nil, err
	}

	exits := make([]domain.StationExit, 0, len(envelope.StationExits))
	for _, dto := range envelope.StationExits {
		exits = append(exits, domain.StationExit{
			StationID: dto.StationID,
			ExitID:    dto.ExitID,
			ExitName:  dto.ExitName.ZhTw,
		})
	}
	return exits, nil
}

// GetStationLiveBoard fetches the live departure board of one station. Never
// cached.
func (c *Client) GetStationLiveBoard(ctx context.Context, stationID string) ([]domain.StationLiveEntry, error) {
	if stationID == "" {
		return nil, domain.NewError(domain.CodeBadInput, "station id is required")
	}

	path := "/v3/Rail/TRA/StationLiveBoard/Station/" + url.PathEscape(stationID)
	var envelope stationLiveBoardsEnvelope
	if err := c.fetch(ctx, nil, "", 0, path, nil, &envelope); err != nil {
		return nil, err
	}

	entries := make([]domain.StationLiveEntry, 0, len(envelope.StationLiveBoards))
	for _, dto := range envelope.StationLiveBoards {
		entries = append(entries, domain.StationLiveEntry{
			StationID:          dto.StationID,
			TrainNo:            dto.TrainNo,
			TrainType:          SimplifyTrainType(dto.TrainTypeName.ZhTw),
			TrainTypeCode:      dto.TrainTypeCode,
			EndingStationName:  dto.EndingStationName.ZhTw,
			ScheduledArrival:   dto.ScheduledArrivalTime,
			ScheduledDeparture: dto.ScheduledDepartureTime,
			Direction:          dto.Direction,
			DelayMinutes:       dto.DelayTime,
		})
	}
	return entries, nil
}

// FareSource adapts GetODFare to the narrow function type the TPASS
// calculator consumes.
func (c *Client) FareSource() func(ctx context.Context, fromID, toID string) (int, error) {
	return func(ctx context.Context, fromID, toID string) (int, error) {
		fare, err := c.GetODFare(ctx, fromID, toID)
		if err != nil {
			return 0, err
		}
		return fare.Price, nil
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.WrapError(domain.CodeBadInput,
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}
	return nil
}

// adultFullFare picks the standard adult fare (ticket type 1, fare class 1),
// falling back to the first listed price.
func adultFullFare(fares []fareDTO) int {
	for _, fare := range fares {
		if fare.TicketType == 1 && fare.FareClass == 1 {
			return fare.Price
		}
	}
	if len(fares) > 0 {
		return fares[0].Price
	}
	return 0
}

func trainStationStatus(code int) string {
	switch code {
	case 0:
		return "at_station"
	case 1:
		return "departed"
	case 2:
		return "arriving"
	default:
		return "unknown"
	}
}
