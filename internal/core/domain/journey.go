package domain

// TrainEntry is the filter view of one train at a station pair.
type TrainEntry struct {
	TrainNo        string
	TrainType      string
	TrainTypeCode  string
	Departure      string
	Arrival        string
	BikeFlag       bool
	WheelchairFlag bool
}

// JourneySegment is one ride on one train between two stations.
// Times are "HH:MM"; arrival may land on the next day under the overnight rule.
type JourneySegment struct {
	TrainNo         string
	TrainType       string
	TrainTypeCode   string
	FromStationID   string
	FromStationName string
	ToStationID     string
	ToStationName   string
	Departure       string
	Arrival         string
	BikeFlag        bool
	WheelchairFlag  bool
}

// JourneyType distinguishes direct rides from one-transfer compositions.
type JourneyType string

const (
	JourneyDirect   JourneyType = "direct"
	JourneyTransfer JourneyType = "transfer"
)

// JourneyOption is one way to make the trip, direct or via one transfer.
type JourneyOption struct {
	Type             JourneyType
	Departure        string
	Arrival          string
	TransferStation  string
	Segments         []JourneySegment
	Transfers        int
	TotalDurationMin int
	WaitTimeMin      int
}

// TransferLeg pairs candidate first and second legs through one transfer station.
type TransferLeg struct {
	TransferStationID string
	FirstLeg          []JourneySegment
	SecondLeg         []JourneySegment
}

// JourneySortKey selects the ordering for journey options.
type JourneySortKey string

const (
	SortByTransfers JourneySortKey = "transfers"
	SortByDuration  JourneySortKey = "duration"
	SortByDeparture JourneySortKey = "departure"
	SortByArrival   JourneySortKey = "arrival"
)
