package services

import (
	"sort"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/core/ports"
	"github.com/thushan/traigo/internal/util"
)

// JourneyOptions tunes the planner. A TransferTimes resolver, when present,
// overrides MinTransferTime per station.
type JourneyOptions struct {
	TransferTimes   ports.TransferTimes
	MinTransferTime int
	MaxTransferTime int
}

func DefaultJourneyOptions() JourneyOptions {
	return JourneyOptions{
		MinTransferTime: constants.DefaultMinTransferMinutes,
		MaxTransferTime: constants.DefaultMaxTransferMinutes,
	}
}

// JourneyPlanner composes direct segments and one-transfer legs into ranked
// journey options.
type JourneyPlanner struct {
	opts JourneyOptions
}

func NewJourneyPlanner(opts JourneyOptions) *JourneyPlanner {
	if opts.MinTransferTime <= 0 {
		opts.MinTransferTime = constants.DefaultMinTransferMinutes
	}
	if opts.MaxTransferTime <= 0 {
		opts.MaxTransferTime = constants.DefaultMaxTransferMinutes
	}
	return &JourneyPlanner{opts: opts}
}

// FindJourneyOptions emits one option per direct segment and one per valid
// first/second leg pairing. Pairings whose wait falls outside the transfer
// window are dropped; unparsable times drop just that candidate.
func (p *JourneyPlanner) FindJourneyOptions(direct []domain.JourneySegment, transfers []domain.TransferLeg) []domain.JourneyOption {
	options := make([]domain.JourneyOption, 0, len(direct))

	for _, segment := range direct {
		duration, err := util.MinutesBetween(segment.Departure, segment.Arrival)
		if err != nil || duration <= 0 {
			continue
		}
		options = append(options, domain.JourneyOption{
			Type:             domain.JourneyDirect,
			Transfers:        0,
			Departure:        segment.Departure,
			Arrival:          segment.Arrival,
			TotalDurationMin: duration,
			Segments:         []domain.JourneySegment{segment},
		})
	}

	for _, leg := range transfers {
		minWait := p.effectiveMinTransferTime(leg.TransferStationID)
		for _, first := range leg.FirstLeg {
			for _, second := range leg.SecondLeg {
				if option, ok := p.pairLegs(leg.TransferStationID, first, second, minWait); ok {
					options = append(options, option)
				}
			}
		}
	}

	return options
}

func (p *JourneyPlanner) pairLegs(transferStation string, first, second domain.JourneySegment, minWait int) (domain.JourneyOption, bool) {
	wait, err := util.MinutesBetween(first.Arrival, second.Departure)
	if err != nil || wait < minWait || wait > p.opts.MaxTransferTime {
		return domain.JourneyOption{}, false
	}

	firstRide, err := util.MinutesBetween(first.Departure, first.Arrival)
	if err != nil || firstRide <= 0 {
		return domain.JourneyOption{}, false
	}
	secondRide, err := util.MinutesBetween(second.Departure, second.Arrival)
	if err != nil || secondRide <= 0 {
		return domain.JourneyOption{}, false
	}

	return domain.JourneyOption{
		Type:             domain.JourneyTransfer,
		Transfers:        1,
		Departure:        first.Departure,
		Arrival:          second.Arrival,
		TransferStation:  transferStation,
		WaitTimeMin:      wait,
		TotalDurationMin: firstRide + wait + secondRide,
		Segments:         []domain.JourneySegment{first, second},
	}, true
}

func (p *JourneyPlanner) effectiveMinTransferTime(stationID string) int {
	if p.opts.TransferTimes != nil {
		return p.opts.TransferTimes.MinTransferTime(stationID)
	}
	return p.opts.MinTransferTime
}

// SortJourneys orders options in place by the chosen key, ascending.
func SortJourneys(options []domain.JourneyOption, key domain.JourneySortKey) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		switch key {
		case domain.SortByTransfers:
			if a.Transfers != b.Transfers {
				return a.Transfers < b.Transfers
			}
			return a.TotalDurationMin < b.TotalDurationMin
		case domain.SortByDuration:
			return a.TotalDurationMin < b.TotalDurationMin
		case domain.SortByArrival:
			return clockLess(a.Arrival, b.Arrival)
		default:
			return clockLess(a.Departure, b.Departure)
		}
	})
}

func clockLess(a, b string) bool {
	am, errA := util.ParseClock(a)
	bm, errB := util.ParseClock(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return am < bm
}
