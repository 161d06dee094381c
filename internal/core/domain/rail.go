package domain

import "time"

// StopTime is one scheduled stop of a train.
type StopTime struct {
	StationID   string
	StationName string
	Arrival     string
	Departure   string
	Sequence    int
}

// TrainTimetable is one train's schedule over its stops.
type TrainTimetable struct {
	TrainNo        string
	TrainType      string
	TrainTypeCode  string
	Stops          []StopTime
	BikeFlag       bool
	WheelchairFlag bool
}

// StationTimetable lists the trains calling at one station for one direction.
type StationTimetable struct {
	StationID string
	Direction int
	Trains    []TrainEntry
}

// TrainLiveStatus is one live-board row for a running train.
type TrainLiveStatus struct {
	UpdatedAt    time.Time
	TrainNo      string
	StationID    string
	StationName  string
	Status       string
	DelayMinutes int
}

// TrainDelay is a minimal live delay record.
type TrainDelay struct {
	UpdatedAt    time.Time
	TrainNo      string
	StationID    string
	DelayMinutes int
}

// Line is one TRA line.
type Line struct {
	ID     string
	NameZh string
	NameEn string
}

// LineStation is one station's position on a line.
type LineStation struct {
	LineID      string
	StationID   string
	StationName string
	Sequence    int
}

// LineTransfer is the walking link between two stations on different lines.
type LineTransfer struct {
	FromStationID      string
	ToStationID        string
	FromLineID         string
	ToLineID           string
	MinTransferMinutes int
}

// ODFare is the adult full fare between two stations.
type ODFare struct {
	OriginID      string
	DestinationID string
	Price         int
}

// StationExit is one exit of a station.
type StationExit struct {
	StationID string
	ExitID    string
	ExitName  string
}

// StationLiveEntry is one row on a station's live departure board.
type StationLiveEntry struct {
	StationID          string
	TrainNo            string
	TrainType          string
	TrainTypeCode      string
	EndingStationName  string
	ScheduledArrival   string
	ScheduledDeparture string
	Direction          int
	DelayMinutes       int
}
