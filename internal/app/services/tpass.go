package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/core/ports"
)

// premiumTrainTypeCodes are not TPASS-eligible. EMU3000 (code 3) is premium
// even though its name reads 自強.
var premiumTrainTypeCodes = map[string]struct{}{
	"1": {}, // 太魯閣
	"2": {}, // 普悠瑪
	"3": {}, // 自強 EMU3000
}

// IsTpassEligible reports whether a train type may be ridden on a TPASS.
func IsTpassEligible(trainTypeCode string) bool {
	_, premium := premiumTrainTypeCodes[trainTypeCode]
	return !premium
}

// TpassFareCalculator splits cross-region fares at a home region's boundary
// stations: ride free to the boundary on the pass, pay only the remainder.
type TpassFareCalculator struct {
	getFare ports.FareSource
	regions map[string]domain.Region
	logger  *slog.Logger
}

func NewTpassFareCalculator(getFare ports.FareSource, regions map[string]domain.Region, log *slog.Logger) *TpassFareCalculator {
	if regions == nil {
		regions = DefaultRegions()
	}
	return &TpassFareCalculator{getFare: getFare, regions: regions, logger: log}
}

// CalculateCrossRegionOptions enumerates fare splits for a trip starting in
// the holder's home region. Boundary stations whose fare lookup fails are
// skipped; the direct fare is the primary query and its failure propagates.
func (c *TpassFareCalculator) CalculateCrossRegionOptions(ctx context.Context, regionID, originID, destID string) ([]domain.FareOption, error) {
	region, ok := c.regions[regionID]
	if !ok {
		return nil, domain.NewError(domain.CodeBadInput, fmt.Sprintf("unknown region %q", regionID))
	}
	if !region.Contains(originID) {
		return nil, domain.NewError(domain.CodeBadInput,
			fmt.Sprintf("origin %s is not in region %s", originID, region.Name))
	}

	if region.Contains(destID) {
		return []domain.FareOption{{Type: domain.FareTpassFree, Recommended: true}}, nil
	}

	directFare, err := c.getFare(ctx, originID, destID)
	if err != nil {
		return nil, err
	}

	options := []domain.FareOption{{Type: domain.FareDirect, TotalFare: directFare}}

	for _, boundary := range region.BoundaryStations {
		if boundary == originID {
			continue
		}
		remainder, err := c.getFare(ctx, boundary, destID)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("Skipping boundary station, fare lookup failed",
					"boundary", boundary, "error", err)
			}
			continue
		}
		options = append(options, domain.FareOption{
			Type:            domain.FareTpassPartial,
			TransferStation: boundary,
			TotalFare:       remainder,
			Savings:         directFare - remainder,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].TotalFare != options[j].TotalFare {
			return options[i].TotalFare < options[j].TotalFare
		}
		// ties favour the partial split
		return options[i].Type == domain.FareTpassPartial && options[j].Type != domain.FareTpassPartial
	})
	options[0].Recommended = true

	return options, nil
}

// DefaultRegions is the TPASS region table: member stations by id range plus
// the boundary stations along the direction of travel out of the region.
func DefaultRegions() map[string]domain.Region {
	return map[string]domain.Region{
		"kpnt": {
			ID:               "kpnt",
			Name:             "基北北桃",
			Stations:         stationRange(900, 1100),
			BoundaryStations: []string{"1080", "1100"},
		},
		"chu": {
			ID:               "chu",
			Name:             "竹竹苗",
			Stations:         stationRange(1110, 1250),
			BoundaryStations: []string{"1110", "1250"},
		},
		"chung": {
			ID:               "chung",
			Name:             "中彰投苗",
			Stations:         stationRange(1500, 3430),
			BoundaryStations: []string{"1500", "3430"},
		},
		"south": {
			ID:               "south",
			Name:             "南高屏",
			Stations:         stationRange(4080, 5160),
			BoundaryStations: []string{"4080", "5160"},
		},
	}
}

// stationRange builds a membership set over the numeric id interval, both
// ends inclusive. TRA ids are four-digit strings.
func stationRange(from, to int) map[string]struct{} {
	stations := make(map[string]struct{}, to-from+1)
	for id := from; id <= to; id++ {
		stations[fmt.Sprintf("%04d", id)] = struct{}{}
	}
	return stations
}
