package services

import (
	"context"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

// TransferSource is the slice of the API client the transfer-time resolver
// needs.
type TransferSource interface {
	GetLineTransfers(ctx context.Context) ([]domain.LineTransfer, error)
}

// TransferTimeResolver answers minimum transfer minutes per station and per
// station pair. Data is symmetric; unknown stations get the default.
type TransferTimeResolver struct {
	byPair    map[[2]string]int
	byStation map[string]int
}

func NewTransferTimeResolver(ctx context.Context, source TransferSource) (*TransferTimeResolver, error) {
	transfers, err := source.GetLineTransfers(ctx)
	if err != nil {
		return nil, err
	}
	return NewTransferTimeResolverFromData(transfers), nil
}

func NewTransferTimeResolverFromData(transfers []domain.LineTransfer) *TransferTimeResolver {
	r := &TransferTimeResolver{
		byPair:    make(map[[2]string]int, len(transfers)),
		byStation: make(map[string]int),
	}

	for _, t := range transfers {
		minutes := t.MinTransferMinutes
		if minutes <= 0 {
			continue
		}
		r.byPair[pairKey(t.FromStationID, t.ToStationID)] = minutes

		for _, id := range [2]string{t.FromStationID, t.ToStationID} {
			if current, ok := r.byStation[id]; !ok || minutes < current {
				r.byStation[id] = minutes
			}
		}
	}
	return r
}

func (r *TransferTimeResolver) MinTransferTime(stationID string) int {
	if minutes, ok := r.byStation[stationID]; ok {
		return minutes
	}
	return constants.DefaultMinTransferMinutes
}

func (r *TransferTimeResolver) TransferTimeBetween(a, b string) int {
	if minutes, ok := r.byPair[pairKey(a, b)]; ok {
		return minutes
	}
	return constants.DefaultMinTransferMinutes
}

// pairKey normalizes the pair ordering so lookups are symmetric.
func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
