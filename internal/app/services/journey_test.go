package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/core/domain"
)

func seg(trainNo, from, to, dep, arr string) domain.JourneySegment {
	return domain.JourneySegment{
		TrainNo:       trainNo,
		FromStationID: from,
		ToStationID:   to,
		Departure:     dep,
		Arrival:       arr,
	}
}

func TestDirectSegmentsBecomeOptions(t *testing.T) {
	p := NewJourneyPlanner(DefaultJourneyOptions())

	options := p.FindJourneyOptions([]domain.JourneySegment{
		seg("101", "1000", "1150", "08:00", "09:10"),
	}, nil)

	require.Len(t, options, 1)
	assert.Equal(t, domain.JourneyDirect, options[0].Type)
	assert.Equal(t, 0, options[0].Transfers)
	assert.Equal(t, 70, options[0].TotalDurationMin)
	assert.Equal(t, 0, options[0].WaitTimeMin)
}

func TestTransferPairing(t *testing.T) {
	p := NewJourneyPlanner(JourneyOptions{MinTransferTime: 10, MaxTransferTime: 120})

	transfers := []domain.TransferLeg{{
		TransferStationID: "2000",
		FirstLeg: []domain.JourneySegment{
			seg("201", "1000", "2000", "07:00", "07:45"),
			seg("203", "1000", "2000", "07:30", "08:30"),
		},
		SecondLeg: []domain.JourneySegment{
			seg("301", "2000", "7000", "08:00", "12:30"),
			seg("303", "2000", "7000", "09:00", "12:00"),
		},
	}}

	options := p.FindJourneyOptions(nil, transfers)
	require.Len(t, options, 3)

	waits := map[string]int{}
	for _, option := range options {
		require.Equal(t, domain.JourneyTransfer, option.Type)
		require.Len(t, option.Segments, 2)
		pairing := option.Segments[0].TrainNo + "-" + option.Segments[1].TrainNo
		waits[pairing] = option.WaitTimeMin
	}

	// (203,301) has wait -30 and is rejected
	assert.Equal(t, map[string]int{
		"201-301": 15,
		"201-303": 75,
		"203-303": 30,
	}, waits)
}

func TestTransferDurationComposition(t *testing.T) {
	p := NewJourneyPlanner(JourneyOptions{MinTransferTime: 10, MaxTransferTime: 120})

	options := p.FindJourneyOptions(nil, []domain.TransferLeg{{
		TransferStationID: "2000",
		FirstLeg:          []domain.JourneySegment{seg("201", "1000", "2000", "07:00", "07:45")},
		SecondLeg:         []domain.JourneySegment{seg("301", "2000", "7000", "08:00", "12:30")},
	}})

	require.Len(t, options, 1)
	// 45 ride + 15 wait + 270 ride
	assert.Equal(t, 330, options[0].TotalDurationMin)
	assert.Equal(t, "07:00", options[0].Departure)
	assert.Equal(t, "12:30", options[0].Arrival)
	assert.Equal(t, "2000", options[0].TransferStation)
}

func TestOvernightTransferAccepted(t *testing.T) {
	p := NewJourneyPlanner(JourneyOptions{MinTransferTime: 10, MaxTransferTime: 120})

	options := p.FindJourneyOptions(nil, []domain.TransferLeg{{
		TransferStationID: "2000",
		FirstLeg:          []domain.JourneySegment{seg("651", "1000", "2000", "22:30", "23:30")},
		SecondLeg:         []domain.JourneySegment{seg("653", "2000", "7000", "00:30", "05:00")},
	}})

	require.Len(t, options, 1)
	assert.Equal(t, 60, options[0].WaitTimeMin)
}

func TestMaxTransferTimeRejectsLongWaits(t *testing.T) {
	p := NewJourneyPlanner(JourneyOptions{MinTransferTime: 10, MaxTransferTime: 60})

	options := p.FindJourneyOptions(nil, []domain.TransferLeg{{
		TransferStationID: "2000",
		FirstLeg:          []domain.JourneySegment{seg("201", "1000", "2000", "07:00", "07:45")},
		SecondLeg:         []domain.JourneySegment{seg("303", "2000", "7000", "09:00", "12:00")},
	}})

	assert.Empty(t, options, "75 minute wait exceeds the 60 minute window")
}

type fixedTransferTimes struct{ minutes int }

func (f fixedTransferTimes) MinTransferTime(string) int          { return f.minutes }
func (f fixedTransferTimes) TransferTimeBetween(_, _ string) int { return f.minutes }

func TestResolverOverridesMinTransferTime(t *testing.T) {
	p := NewJourneyPlanner(JourneyOptions{
		MinTransferTime: 10,
		MaxTransferTime: 120,
		TransferTimes:   fixedTransferTimes{minutes: 20},
	})

	options := p.FindJourneyOptions(nil, []domain.TransferLeg{{
		TransferStationID: "2000",
		FirstLeg:          []domain.JourneySegment{seg("201", "1000", "2000", "07:00", "07:45")},
		SecondLeg:         []domain.JourneySegment{seg("301", "2000", "7000", "08:00", "12:30")},
	}})

	assert.Empty(t, options, "15 minute wait is under the station's 20 minute minimum")
}

func TestSortJourneys(t *testing.T) {
	options := []domain.JourneyOption{
		{Type: domain.JourneyTransfer, Transfers: 1, Departure: "07:00", Arrival: "12:30", TotalDurationMin: 330},
		{Type: domain.JourneyDirect, Transfers: 0, Departure: "09:00", Arrival: "13:30", TotalDurationMin: 270},
		{Type: domain.JourneyDirect, Transfers: 0, Departure: "08:00", Arrival: "14:00", TotalDurationMin: 360},
	}

	SortJourneys(options, domain.SortByTransfers)
	assert.Equal(t, 0, options[0].Transfers)
	assert.Equal(t, 270, options[0].TotalDurationMin, "ties on transfers break by duration")

	SortJourneys(options, domain.SortByDeparture)
	assert.Equal(t, "07:00", options[0].Departure)

	SortJourneys(options, domain.SortByArrival)
	assert.Equal(t, "12:30", options[0].Arrival)

	SortJourneys(options, domain.SortByDuration)
	assert.Equal(t, 270, options[0].TotalDurationMin)
}
