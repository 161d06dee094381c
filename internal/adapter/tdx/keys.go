package tdx

import "fmt"

// Cache keys are deterministic, whitespace-free strings. The disk tier
// percent-encodes them into filenames; these stay stable across releases so
// tier-2 entries survive upgrades.

func keyStations() string                { return "stations/all" }
func keyLines() string                   { return "lines/all" }
func keyLineTransfers() string           { return "lines/transfers" }
func keyLineStations(line string) string { return "lines/stations-" + line }
func keyStationExits(id string) string   { return "stations/exits-" + id }

func keyODTimetable(from, to, date string) string {
	return fmt.Sprintf("timetable/od-%s-%s-%s", from, to, date)
}

func keyTrainTimetable(trainNo string) string {
	return "timetable/train-" + trainNo
}

func keyStationTimetable(id, date string) string {
	return fmt.Sprintf("timetable/station-%s-%s", id, date)
}

func keyODFare(from, to string) string {
	return fmt.Sprintf("fare/od-%s-%s", from, to)
}

func keyAlerts() string { return "alerts/all" }
