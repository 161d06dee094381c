package tdx

// Wire DTOs for the TDX v2/v3 rail endpoints. Field names mirror the upstream
// JSON; mapping into domain types happens in normalize.go.

type nameType struct {
	ZhTw string `json:"Zh_tw"`
	En   string `json:"En"`
}

type stationPosition struct {
	PositionLat float64 `json:"PositionLat"`
	PositionLon float64 `json:"PositionLon"`
}

type stationDTO struct {
	StationID       string          `json:"StationID"`
	StationName     nameType        `json:"StationName"`
	StationPosition stationPosition `json:"StationPosition"`
}

type stationsEnvelope struct {
	Stations []stationDTO `json:"Stations"`
}

type trainInfoDTO struct {
	TrainNo        string   `json:"TrainNo"`
	TrainTypeName  nameType `json:"TrainTypeName"`
	TrainTypeCode  string   `json:"TrainTypeCode"`
	BikeFlag       int      `json:"BikeFlag"`
	WheelChairFlag int      `json:"WheelChairFlag"`
}

type stopTimeDTO struct {
	StopSequence  int      `json:"StopSequence"`
	StationID     string   `json:"StationID"`
	StationName   nameType `json:"StationName"`
	ArrivalTime   string   `json:"ArrivalTime"`
	DepartureTime string   `json:"DepartureTime"`
}

type trainTimetableDTO struct {
	TrainInfo trainInfoDTO  `json:"TrainInfo"`
	StopTimes []stopTimeDTO `json:"StopTimes"`
}

type trainTimetablesEnvelope struct {
	TrainTimetables []trainTimetableDTO `json:"TrainTimetables"`
}

type stationTimetableRowDTO struct {
	TrainNo       string   `json:"TrainNo"`
	TrainTypeName nameType `json:"TrainTypeName"`
	TrainTypeCode string   `json:"TrainTypeCode"`
	ArrivalTime   string   `json:"ArrivalTime"`
	DepartureTime string   `json:"DepartureTime"`
}

type stationTimetableDTO struct {
	StationID  string                   `json:"StationID"`
	Direction  int                      `json:"Direction"`
	TimeTables []stationTimetableRowDTO `json:"TimeTables"`
}

type stationTimetablesEnvelope struct {
	StationTimetables []stationTimetableDTO `json:"StationTimetables"`
}

type trainLiveBoardDTO struct {
	TrainNo            string   `json:"TrainNo"`
	StationID          string   `json:"StationID"`
	StationName        nameType `json:"StationName"`
	TrainStationStatus int      `json:"TrainStationStatus"`
	DelayTime          int      `json:"DelayTime"`
	UpdateTime         string   `json:"UpdateTime"`
}

type trainLiveBoardsEnvelope struct {
	TrainLiveBoards []trainLiveBoardDTO `json:"TrainLiveBoards"`
}

// v2 live delay endpoint returns a bare array.
type liveTrainDelayDTO struct {
	TrainNo    string `json:"TrainNo"`
	StationID  string `json:"StationID"`
	DelayTime  int    `json:"DelayTime"`
	UpdateTime string `json:"UpdateTime"`
}

type fareDTO struct {
	TicketType int `json:"TicketType"`
	FareClass  int `json:"FareClass"`
	Price      int `json:"Price"`
}

type odFareDTO struct {
	OriginStationID      string    `json:"OriginStationID"`
	DestinationStationID string    `json:"DestinationStationID"`
	Fares                []fareDTO `json:"Fares"`
}

type odFaresEnvelope struct {
	ODFares []odFareDTO `json:"ODFares"`
}

type lineDTO struct {
	LineID   string   `json:"LineID"`
	LineName nameType `json:"LineName"`
}

type linesEnvelope struct {
	Lines []lineDTO `json:"Lines"`
}

type lineStationDTO struct {
	StationID   string   `json:"StationID"`
	StationName nameType `json:"StationName"`
	Sequence    int      `json:"Sequence"`
}

type stationOfLineDTO struct {
	LineID   string           `json:"LineID"`
	Stations []lineStationDTO `json:"Stations"`
}

type stationOfLinesEnvelope struct {
	StationOfLines []stationOfLineDTO `json:"StationOfLines"`
}

type lineTransferDTO struct {
	FromStationID   string `json:"FromStationID"`
	ToStationID     string `json:"ToStationID"`
	FromLineID      string `json:"FromLineID"`
	ToLineID        string `json:"ToLineID"`
	MinTransferTime int    `json:"MinTransferTime"`
}

type lineTransfersEnvelope struct {
	LineTransfers []lineTransferDTO `json:"LineTransfers"`
}

type alertDTO struct {
	AlertID     string `json:"AlertID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Status      int    `json:"Status"`
	Scope       struct {
		Stations []struct {
			StationID string `json:"StationID"`
		} `json:"Stations"`
		Lines []struct {
			LineID string `json:"LineID"`
		} `json:"Lines"`
	} `json:"Scope"`
}

type alertsEnvelope struct {
	Alerts []alertDTO `json:"Alerts"`
}

type stationExitDTO struct {
	StationID string   `json:"StationID"`
	ExitID    string   `json:"ExitID"`
	ExitName  nameType `json:"ExitName"`
}

type stationExitsEnvelope struct {
	StationExits []stationExitDTO `json:"StationExits"`
}

type stationLiveBoardDTO struct {
	StationID              string   `json:"StationID"`
	TrainNo                string   `json:"TrainNo"`
	TrainTypeName          nameType `json:"TrainTypeName"`
	TrainTypeCode          string   `json:"TrainTypeCode"`
	EndingStationName      nameType `json:"EndingStationName"`
	ScheduledArrivalTime   string   `json:"ScheduledArrivalTime"`
	ScheduledDepartureTime string   `json:"ScheduledDepartureTime"`
	Direction              int      `json:"Direction"`
	DelayTime              int      `json:"DelayTime"`
}

type stationLiveBoardsEnvelope struct {
	StationLiveBoards []stationLiveBoardDTO `json:"StationLiveBoards"`
}
