package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thushan/traigo/internal/core/domain"
)

func fareTable(fares map[[2]string]int) func(ctx context.Context, from, to string) (int, error) {
	return func(_ context.Context, from, to string) (int, error) {
		if fare, ok := fares[[2]string{from, to}]; ok {
			return fare, nil
		}
		return 0, errors.New("no fare data")
	}
}

func TestCrossRegionRecommendsCheapestSplit(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(map[[2]string]int{
		{"1000", "1150"}: 160,
		{"1100", "1150"}: 52,
		{"1080", "1150"}: 68,
	}), nil, nil)

	options, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "1000", "1150")
	require.NoError(t, err)
	require.Len(t, options, 3)

	best := options[0]
	assert.True(t, best.Recommended)
	assert.Equal(t, domain.FareTpassPartial, best.Type)
	assert.Equal(t, "1100", best.TransferStation)
	assert.Equal(t, 52, best.TotalFare)
	assert.Equal(t, 108, best.Savings)

	assert.Equal(t, 68, options[1].TotalFare)
	assert.Equal(t, domain.FareDirect, options[2].Type)
	assert.Equal(t, 160, options[2].TotalFare)
	assert.False(t, options[1].Recommended)
}

func TestSameRegionIsFree(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(nil), nil, nil)

	options, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "1000", "1020")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, domain.FareTpassFree, options[0].Type)
	assert.True(t, options[0].Recommended)
	assert.Zero(t, options[0].TotalFare)
}

func TestFailingBoundaryLookupIsSkipped(t *testing.T) {
	// 1080 lookup missing from the table; only 1100 split survives
	calc := NewTpassFareCalculator(fareTable(map[[2]string]int{
		{"1000", "1150"}: 160,
		{"1100", "1150"}: 52,
	}), nil, nil)

	options, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "1000", "1150")
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "1100", options[0].TransferStation)
}

func TestDirectFareFailurePropagates(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(nil), nil, nil)

	_, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "1000", "1150")
	require.Error(t, err)
}

func TestUnknownRegionRejected(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(nil), nil, nil)

	_, err := calc.CalculateCrossRegionOptions(context.Background(), "nowhere", "1000", "1150")
	require.Error(t, err)
	assert.Equal(t, domain.CodeBadInput, domain.CodeOf(err))
}

func TestOriginOutsideRegionRejected(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(nil), nil, nil)

	_, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "4400", "1150")
	require.Error(t, err)
	assert.Equal(t, domain.CodeBadInput, domain.CodeOf(err))
}

func TestTpassEligibility(t *testing.T) {
	assert.False(t, IsTpassEligible("3"), "EMU3000 is premium despite the 自強 name")
	assert.False(t, IsTpassEligible("1"))
	assert.False(t, IsTpassEligible("2"))
	assert.True(t, IsTpassEligible("6"))
	assert.True(t, IsTpassEligible(""))
}

func TestTieBreakFavoursPartialSplit(t *testing.T) {
	calc := NewTpassFareCalculator(fareTable(map[[2]string]int{
		{"1000", "1150"}: 52,
		{"1100", "1150"}: 52,
		{"1080", "1150"}: 90,
	}), nil, nil)

	options, err := calc.CalculateCrossRegionOptions(context.Background(), "kpnt", "1000", "1150")
	require.NoError(t, err)
	assert.Equal(t, domain.FareTpassPartial, options[0].Type)
	assert.True(t, options[0].Recommended)
}
