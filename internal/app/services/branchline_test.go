package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thushan/traigo/internal/core/domain"
)

func newTestBranchResolver() *BranchLineResolver {
	return NewBranchLineResolverFromData(map[string][]domain.LineStation{
		// 平溪線: junction at 三貂嶺
		"PX": {
			{LineID: "PX", StationID: "7330", StationName: "三貂嶺", Sequence: 1},
			{LineID: "PX", StationID: "7331", StationName: "大華", Sequence: 2},
			{LineID: "PX", StationID: "7332", StationName: "十分", Sequence: 3},
			{LineID: "PX", StationID: "7336", StationName: "菁桐", Sequence: 7},
		},
		// 集集線: junction at 二水
		"JJ": {
			{LineID: "JJ", StationID: "3430", StationName: "二水", Sequence: 1},
			{LineID: "JJ", StationID: "3431", StationName: "源泉", Sequence: 2},
			{LineID: "JJ", StationID: "3434", StationName: "集集", Sequence: 5},
		},
	})
}

func TestIsBranchLineStation(t *testing.T) {
	r := newTestBranchResolver()

	assert.True(t, r.IsBranchLineStation("7332"))
	assert.True(t, r.IsBranchLineStation("7330"), "junction counts as on the branch")
	assert.False(t, r.IsBranchLineStation("1000"))
}

func TestGetJunctionStation(t *testing.T) {
	r := newTestBranchResolver()

	assert.Equal(t, "7330", r.GetJunctionStation("7332"))
	assert.Equal(t, "3430", r.GetJunctionStation("3434"))
	assert.Empty(t, r.GetJunctionStation("7330"), "junctions map to nothing")
	assert.Empty(t, r.GetJunctionStation("1000"), "main-line stations map to nothing")
}

func TestGetBranchLineInfo(t *testing.T) {
	r := newTestBranchResolver()

	info, ok := r.GetBranchLineInfo("7336")
	assert.True(t, ok)
	assert.Equal(t, "PX", info.LineID)
	assert.Equal(t, "7330", info.JunctionStation)

	_, ok = r.GetBranchLineInfo("1000")
	assert.False(t, ok)
}

func TestGetAllJunctionStations(t *testing.T) {
	r := newTestBranchResolver()

	assert.Equal(t, []string{"3430", "7330"}, r.GetAllJunctionStations())
}

func TestTransferTimesSymmetric(t *testing.T) {
	r := NewTransferTimeResolverFromData([]domain.LineTransfer{
		{FromStationID: "7330", ToStationID: "7320", MinTransferMinutes: 15},
		{FromStationID: "3430", ToStationID: "3432", MinTransferMinutes: 8},
	})

	assert.Equal(t, 15, r.TransferTimeBetween("7330", "7320"))
	assert.Equal(t, 15, r.TransferTimeBetween("7320", "7330"))
	assert.Equal(t, 8, r.MinTransferTime("3430"))
}

func TestTransferTimeDefaults(t *testing.T) {
	r := NewTransferTimeResolverFromData(nil)

	assert.Equal(t, 10, r.MinTransferTime("1000"))
	assert.Equal(t, 10, r.TransferTimeBetween("1000", "1020"))
}
