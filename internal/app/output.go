package app

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"

	"github.com/thushan/traigo/internal/adapter/breaker"
	"github.com/thushan/traigo/internal/app/services"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/pkg/format"
)

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// RenderError writes the failure in the caller's chosen format. JSON callers
// get the structured envelope on stdout, everyone else a line on stderr.
func (a *App) RenderError(err error) {
	if a.jsonOut {
		_ = printJSON(map[string]any{
			"success": false,
			"error": map[string]any{
				"code":    string(ErrorCodeFor(err)),
				"message": err.Error(),
			},
		})
		return
	}
	a.logger.Error(err.Error())
}

type segmentJSON struct {
	TrainNo    string `json:"train_no"`
	TrainType  string `json:"train_type"`
	From       string `json:"from"`
	To         string `json:"to"`
	Departure  string `json:"departure"`
	Arrival    string `json:"arrival"`
	Bike       bool   `json:"bike"`
	Wheelchair bool   `json:"wheelchair"`
}

func toSegmentJSON(segment domain.JourneySegment) segmentJSON {
	return segmentJSON{
		TrainNo:    segment.TrainNo,
		TrainType:  segment.TrainType,
		From:       segment.FromStationName,
		To:         segment.ToStationName,
		Departure:  segment.Departure,
		Arrival:    segment.Arrival,
		Bike:       segment.BikeFlag,
		Wheelchair: segment.WheelchairFlag,
	}
}

func (a *App) renderJourneys(from, to domain.Station, date, strategy string, options []domain.JourneyOption) error {
	if a.jsonOut {
		type optionJSON struct {
			Type            string        `json:"type"`
			Departure       string        `json:"departure"`
			Arrival         string        `json:"arrival"`
			DurationMin     int           `json:"duration_min"`
			Transfers       int           `json:"transfers"`
			TransferStation string        `json:"transfer_station,omitempty"`
			WaitMin         int           `json:"wait_min,omitempty"`
			Segments        []segmentJSON `json:"segments"`
		}
		payload := make([]optionJSON, 0, len(options))
		for _, option := range options {
			row := optionJSON{
				Type:            string(option.Type),
				Departure:       option.Departure,
				Arrival:         option.Arrival,
				DurationMin:     option.TotalDurationMin,
				Transfers:       option.Transfers,
				TransferStation: option.TransferStation,
				WaitMin:         option.WaitTimeMin,
			}
			for _, segment := range option.Segments {
				row.Segments = append(row.Segments, toSegmentJSON(segment))
			}
			payload = append(payload, row)
		}
		return printJSON(map[string]any{
			"success":  true,
			"from":     from.Name,
			"to":       to.Name,
			"date":     date,
			"strategy": strategy,
			"options":  payload,
		})
	}

	pterm.DefaultSection.Printf("%s → %s on %s", from.Name, to.Name, date)
	if len(options) == 0 {
		pterm.Println("No journeys found.")
		return nil
	}

	rows := pterm.TableData{{"Dep", "Arr", "Duration", "Via", "Trains"}}
	for _, option := range options {
		trains := make([]string, 0, len(option.Segments))
		for _, segment := range option.Segments {
			trains = append(trains, fmt.Sprintf("%s %s", segment.TrainType, segment.TrainNo))
		}
		via := "direct"
		if option.Type == domain.JourneyTransfer {
			via = fmt.Sprintf("%s (%dm wait)", option.TransferStation, option.WaitTimeMin)
		}
		rows = append(rows, []string{
			option.Departure,
			option.Arrival,
			fmt.Sprintf("%dm", option.TotalDurationMin),
			via,
			joinTrains(trains),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func joinTrains(trains []string) string {
	out := ""
	for i, t := range trains {
		if i > 0 {
			out += " + "
		}
		out += t
	}
	return out
}

func (a *App) renderSegments(from, to domain.Station, date, strategy string, segments []domain.JourneySegment) error {
	if a.jsonOut {
		payload := make([]segmentJSON, 0, len(segments))
		for _, segment := range segments {
			payload = append(payload, toSegmentJSON(segment))
		}
		return printJSON(map[string]any{
			"success":  true,
			"from":     from.Name,
			"to":       to.Name,
			"date":     date,
			"strategy": strategy,
			"trains":   payload,
		})
	}

	pterm.DefaultSection.Printf("%s → %s on %s (%s)", from.Name, to.Name, date, strategy)
	rows := pterm.TableData{{"Train", "Type", "Dep", "Arr", "Bike", "Access"}}
	for _, segment := range segments {
		rows = append(rows, []string{
			segment.TrainNo,
			segment.TrainType,
			segment.Departure,
			segment.Arrival,
			flagMark(segment.BikeFlag),
			flagMark(segment.WheelchairFlag),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func flagMark(on bool) string {
	if on {
		return "✓"
	}
	return ""
}

func (a *App) renderTrainTimetable(timetable domain.TrainTimetable) error {
	if a.jsonOut {
		type stopJSON struct {
			StationID string `json:"station_id"`
			Station   string `json:"station"`
			Arrival   string `json:"arrival"`
			Departure string `json:"departure"`
		}
		stops := make([]stopJSON, 0, len(timetable.Stops))
		for _, stop := range timetable.Stops {
			stops = append(stops, stopJSON{
				StationID: stop.StationID,
				Station:   stop.StationName,
				Arrival:   stop.Arrival,
				Departure: stop.Departure,
			})
		}
		return printJSON(map[string]any{
			"success":        true,
			"train_no":       timetable.TrainNo,
			"train_type":     timetable.TrainType,
			"tpass_eligible": services.IsTpassEligible(timetable.TrainTypeCode),
			"stops":          stops,
		})
	}

	pterm.DefaultSection.Printf("%s %s", timetable.TrainType, timetable.TrainNo)
	if !services.IsTpassEligible(timetable.TrainTypeCode) {
		pterm.Println(a.logger.Theme.Warn.Sprint("Premium service, not TPASS eligible"))
	}
	rows := pterm.TableData{{"Station", "Arr", "Dep"}}
	for _, stop := range timetable.Stops {
		rows = append(rows, []string{stop.StationName, stop.Arrival, stop.Departure})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (a *App) renderLiveStatuses(statuses []domain.TrainLiveStatus) error {
	if a.jsonOut {
		type liveJSON struct {
			TrainNo   string `json:"train_no"`
			Station   string `json:"station"`
			Status    string `json:"status"`
			DelayMin  int    `json:"delay_min"`
			UpdatedAt string `json:"updated_at"`
		}
		payload := make([]liveJSON, 0, len(statuses))
		for _, status := range statuses {
			payload = append(payload, liveJSON{
				TrainNo:   status.TrainNo,
				Station:   status.StationName,
				Status:    status.Status,
				DelayMin:  status.DelayMinutes,
				UpdatedAt: status.UpdatedAt.Format(time.RFC3339),
			})
		}
		return printJSON(map[string]any{"success": true, "statuses": payload})
	}

	for _, status := range statuses {
		delay := "on time"
		if status.DelayMinutes > 0 {
			delay = a.logger.Theme.Warn.Sprintf("+%dm", status.DelayMinutes)
		}
		pterm.Printf("Train %s %s %s (%s, updated %s)\n",
			a.logger.Theme.Train.Sprint(status.TrainNo),
			status.Status,
			a.logger.Theme.Station.Sprint(status.StationName),
			delay,
			format.TimeAgo(status.UpdatedAt))
	}
	return nil
}

func (a *App) renderDelays(delays []domain.TrainDelay) error {
	if a.jsonOut {
		type delayJSON struct {
			TrainNo   string `json:"train_no"`
			StationID string `json:"station_id"`
			DelayMin  int    `json:"delay_min"`
		}
		payload := make([]delayJSON, 0, len(delays))
		for _, delay := range delays {
			payload = append(payload, delayJSON{TrainNo: delay.TrainNo, StationID: delay.StationID, DelayMin: delay.DelayMinutes})
		}
		return printJSON(map[string]any{"success": true, "delays": payload})
	}

	if len(delays) == 0 {
		pterm.Println("No live delay records.")
		return nil
	}
	rows := pterm.TableData{{"Train", "At station", "Delay"}}
	for _, delay := range delays {
		rows = append(rows, []string{delay.TrainNo, delay.StationID, fmt.Sprintf("%dm", delay.DelayMinutes)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (a *App) renderStationBoard(station domain.Station, entries []domain.StationLiveEntry) error {
	if a.jsonOut {
		type boardJSON struct {
			TrainNo   string `json:"train_no"`
			TrainType string `json:"train_type"`
			Towards   string `json:"towards"`
			Departure string `json:"departure"`
			DelayMin  int    `json:"delay_min"`
		}
		payload := make([]boardJSON, 0, len(entries))
		for _, entry := range entries {
			payload = append(payload, boardJSON{
				TrainNo:   entry.TrainNo,
				TrainType: entry.TrainType,
				Towards:   entry.EndingStationName,
				Departure: entry.ScheduledDeparture,
				DelayMin:  entry.DelayMinutes,
			})
		}
		return printJSON(map[string]any{"success": true, "station": station.Name, "board": payload})
	}

	pterm.DefaultSection.Printf("Live board: %s", station.Name)
	rows := pterm.TableData{{"Dep", "Train", "Type", "Towards", "Delay"}}
	for _, entry := range entries {
		delay := ""
		if entry.DelayMinutes > 0 {
			delay = fmt.Sprintf("+%dm", entry.DelayMinutes)
		}
		rows = append(rows, []string{
			entry.ScheduledDeparture,
			entry.TrainNo,
			entry.TrainType,
			entry.EndingStationName,
			delay,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (a *App) renderStationMatch(match domain.StationMatch) error {
	if a.jsonOut {
		return printJSON(map[string]any{
			"success":    true,
			"id":         match.Station.ID,
			"name":       match.Station.Name,
			"confidence": string(match.Confidence),
		})
	}

	line := fmt.Sprintf("%s %s", match.Station.ID, a.logger.Theme.Station.Sprint(match.Station.Name))
	if match.Confidence != domain.ConfidenceExact {
		line += a.logger.Theme.Muted.Sprintf(" (%s confidence)", match.Confidence)
	}
	pterm.Println(line)
	return nil
}

func (a *App) renderStationCandidates(candidates []domain.StationCandidate) error {
	if a.jsonOut {
		type candidateJSON struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Distance int    `json:"distance"`
		}
		payload := make([]candidateJSON, 0, len(candidates))
		for _, candidate := range candidates {
			payload = append(payload, candidateJSON{
				ID:       candidate.Station.ID,
				Name:     candidate.Station.Name,
				Distance: candidate.Distance,
			})
		}
		return printJSON(map[string]any{"success": true, "matches": payload})
	}

	for _, candidate := range candidates {
		pterm.Printf("%s %s\n", candidate.Station.ID, candidate.Station.Name)
	}
	return nil
}

func (a *App) renderFare(from, to domain.Station, fare domain.ODFare) error {
	if a.jsonOut {
		return printJSON(map[string]any{
			"success": true,
			"from":    from.Name,
			"to":      to.Name,
			"fare":    fare.Price,
		})
	}
	pterm.Printf("%s → %s: NT$%d\n", from.Name, to.Name, fare.Price)
	return nil
}

func (a *App) renderFareOptions(resolver *services.StationResolver, from, to domain.Station, options []domain.FareOption) error {
	if a.jsonOut {
		type fareOptionJSON struct {
			Type            string `json:"type"`
			TransferStation string `json:"transfer_station,omitempty"`
			TotalFare       int    `json:"total_fare"`
			Savings         int    `json:"savings"`
			Recommended     bool   `json:"recommended"`
		}
		payload := make([]fareOptionJSON, 0, len(options))
		for _, option := range options {
			payload = append(payload, fareOptionJSON{
				Type:            string(option.Type),
				TransferStation: option.TransferStation,
				TotalFare:       option.TotalFare,
				Savings:         option.Savings,
				Recommended:     option.Recommended,
			})
		}
		return printJSON(map[string]any{"success": true, "from": from.Name, "to": to.Name, "options": payload})
	}

	pterm.DefaultSection.Printf("TPASS options %s → %s", from.Name, to.Name)
	rows := pterm.TableData{{"", "Option", "Fare", "Savings"}}
	for _, option := range options {
		mark := ""
		if option.Recommended {
			mark = a.logger.Theme.Success.Sprint("★")
		}
		label := describeFareOption(resolver, option)
		rows = append(rows, []string{mark, label, fmt.Sprintf("NT$%d", option.TotalFare), fmt.Sprintf("NT$%d", option.Savings)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func describeFareOption(resolver *services.StationResolver, option domain.FareOption) string {
	switch option.Type {
	case domain.FareTpassFree:
		return "entirely within region, free on TPASS"
	case domain.FareTpassPartial:
		name := option.TransferStation
		if station, ok := resolver.GetByID(option.TransferStation); ok {
			name = station.Name
		}
		return fmt.Sprintf("TPASS to %s, ticket beyond", name)
	default:
		return "direct ticket, no TPASS"
	}
}

func (a *App) renderSuspension(station domain.Station, suspended bool) error {
	if a.jsonOut {
		return printJSON(map[string]any{"success": true, "station": station.Name, "suspended": suspended})
	}
	if suspended {
		pterm.Println(a.logger.Theme.Error.Sprintf("%s is affected by an active service alert", station.Name))
	} else {
		pterm.Printf("%s has no active alerts\n", station.Name)
	}
	return nil
}

func (a *App) renderAlerts(alerts []domain.Alert) error {
	if a.jsonOut {
		type alertJSON struct {
			ID                   string `json:"id"`
			Title                string `json:"title"`
			Description          string `json:"description"`
			AlternativeTransport string `json:"alternative_transport,omitempty"`
		}
		payload := make([]alertJSON, 0, len(alerts))
		for _, alert := range alerts {
			payload = append(payload, alertJSON{
				ID:                   alert.ID,
				Title:                alert.Title,
				Description:          alert.Description,
				AlternativeTransport: alert.AlternativeTransport,
			})
		}
		return printJSON(map[string]any{"success": true, "alerts": payload})
	}

	if len(alerts) == 0 {
		pterm.Println("No active service alerts.")
		return nil
	}
	for _, alert := range alerts {
		pterm.Println(a.logger.Theme.Warn.Sprint(alert.Title))
		if alert.Description != "" {
			pterm.Println("  " + alert.Description)
		}
		if alert.AlternativeTransport != "" {
			pterm.Println("  Alternative: " + alert.AlternativeTransport)
		}
	}
	return nil
}

func (a *App) renderExits(station domain.Station, exits []domain.StationExit) error {
	if a.jsonOut {
		type exitJSON struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		payload := make([]exitJSON, 0, len(exits))
		for _, exit := range exits {
			payload = append(payload, exitJSON{ID: exit.ExitID, Name: exit.ExitName})
		}
		return printJSON(map[string]any{"success": true, "station": station.Name, "exits": payload})
	}

	pterm.DefaultSection.Printf("Exits: %s", station.Name)
	for _, exit := range exits {
		pterm.Printf("%s %s\n", exit.ExitID, exit.ExitName)
	}
	return nil
}

func (a *App) renderMetrics(slots []domain.SlotMetrics, capacity domain.PoolCapacity, cb breaker.Metrics, stats domain.CacheStats) error {
	if a.jsonOut {
		type slotJSON struct {
			ID           string `json:"id"`
			Label        string `json:"label"`
			State        string `json:"state"`
			Requests     int64  `json:"requests"`
			Failures     int64  `json:"failures"`
			Tokens       int    `json:"tokens"`
			LastError    string `json:"last_error,omitempty"`
			LastUsed     string `json:"last_used,omitempty"`
			DisabledUnti string `json:"disabled_until,omitempty"`
		}
		payload := make([]slotJSON, 0, len(slots))
		for _, slot := range slots {
			row := slotJSON{
				ID:        slot.ID,
				Label:     slot.Label,
				State:     string(slot.State),
				Requests:  slot.TotalRequests,
				Failures:  slot.FailedRequests,
				Tokens:    slot.AvailableTokens,
				LastError: slot.LastError,
			}
			if !slot.LastUsed.IsZero() {
				row.LastUsed = slot.LastUsed.Format(time.RFC3339)
			}
			if !slot.DisabledUntil.IsZero() {
				row.DisabledUnti = slot.DisabledUntil.Format(time.RFC3339)
			}
			payload = append(payload, row)
		}
		return printJSON(map[string]any{
			"success": true,
			"slots":   payload,
			"capacity": map[string]int{
				"available_per_second": capacity.Available,
				"max_per_second":       capacity.Max,
			},
			"breaker": map[string]any{
				"state":    string(cb.State),
				"requests": cb.TotalRequests,
				"failed":   cb.FailedRequests,
				"rejected": cb.RejectedRequests,
			},
			"cache": map[string]any{
				"memory": stats.Memory,
				"disk":   stats.Disk,
			},
		})
	}

	active := 0
	for _, slot := range slots {
		if slot.State == domain.SlotActive {
			active++
		}
	}

	pterm.DefaultSection.Println("Credential slots")
	rows := pterm.TableData{{"Slot", "State", "Tokens", "Requests", "OK", "Last used"}}
	for _, slot := range slots {
		rows = append(rows, []string{
			slot.Label,
			string(slot.State),
			fmt.Sprintf("%d", slot.AvailableTokens),
			fmt.Sprintf("%d", slot.TotalRequests),
			format.Percentage(slot.SuccessRate()),
			format.TimeAgo(slot.LastUsed),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	pterm.Printf("Slots up: %s, capacity %d/%d req/s\n",
		format.SlotsUp(active, len(slots)), capacity.Available, capacity.Max)
	pterm.Printf("Breaker: %s (%d requests, %d failed, %d rejected)\n",
		string(cb.State), cb.TotalRequests, cb.FailedRequests, cb.RejectedRequests)
	pterm.Printf("Cache: memory %d entries (%s), disk %d entries (%s)\n",
		stats.Memory.Entries, format.Bytes(uint64(stats.Memory.Bytes)),
		stats.Disk.Entries, format.Bytes(uint64(stats.Disk.Bytes)))
	return nil
}

func (a *App) renderHealth(report domain.HealthReport) error {
	if a.jsonOut {
		type componentJSON struct {
			Name      string `json:"name"`
			Status    string `json:"status"`
			Detail    string `json:"detail"`
			LatencyMs int64  `json:"latency_ms,omitempty"`
		}
		payload := make([]componentJSON, 0, len(report.Components))
		for _, component := range report.Components {
			payload = append(payload, componentJSON{
				Name:      component.Name,
				Status:    string(component.Status),
				Detail:    component.Detail,
				LatencyMs: component.Latency.Milliseconds(),
			})
		}
		return printJSON(map[string]any{
			"success":    true,
			"status":     string(report.Status),
			"components": payload,
		})
	}

	pterm.DefaultSection.Printf("Health: %s", a.healthStyle(report.Status).Sprint(string(report.Status)))
	for _, component := range report.Components {
		line := fmt.Sprintf("%-16s %s", component.Name, a.healthStyle(component.Status).Sprint(string(component.Status)))
		if component.Detail != "" {
			line += a.logger.Theme.Muted.Sprintf("  %s", component.Detail)
		}
		if component.Latency > 0 {
			line += a.logger.Theme.Muted.Sprintf("  %s", format.Latency(component.Latency.Milliseconds()))
		}
		pterm.Println(line)
	}
	return nil
}

func (a *App) healthStyle(status domain.ComponentStatus) *pterm.Style {
	switch status {
	case domain.ComponentUnhealthy:
		return a.logger.Theme.Error
	case domain.ComponentDegraded:
		return a.logger.Theme.Warn
	default:
		return a.logger.Theme.Success
	}
}

func (a *App) renderCacheStats(stats domain.CacheStats) error {
	if a.jsonOut {
		return printJSON(map[string]any{"success": true, "memory": stats.Memory, "disk": stats.Disk})
	}

	rows := pterm.TableData{
		{"Tier", "Entries", "Size", "Hits", "Misses"},
		{"memory", fmt.Sprintf("%d", stats.Memory.Entries), format.Bytes(uint64(stats.Memory.Bytes)),
			fmt.Sprintf("%d", stats.Memory.Hits), fmt.Sprintf("%d", stats.Memory.Misses)},
		{"disk", fmt.Sprintf("%d", stats.Disk.Entries), format.Bytes(uint64(stats.Disk.Bytes)),
			fmt.Sprintf("%d", stats.Disk.Hits), fmt.Sprintf("%d", stats.Disk.Misses)},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
