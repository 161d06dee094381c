package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, constants.ExitOK},
		{"bad input", domain.NewError(domain.CodeBadInput, "bad date"), constants.ExitBadInput},
		{"station not found", &domain.StationNotFoundError{Query: "臺光"}, constants.ExitBadInput},
		{"api error", domain.NewError(domain.CodeAPIError, "upstream returned 500"), constants.ExitUpstreamError},
		{"auth error", domain.NewError(domain.CodeAuthError, "rejected"), constants.ExitUpstreamError},
		{"breaker open", domain.NewError(domain.CodeCircuitBreakerOpen, "open"), constants.ExitUpstreamError},
		{"missing credentials", errNoCredentials, constants.ExitMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestErrorCodeForMissingCredentials(t *testing.T) {
	assert.Equal(t, domain.CodeAuthError, ErrorCodeFor(errNoCredentials))
	assert.Equal(t, domain.CodeBadInput, ErrorCodeFor(domain.NewError(domain.CodeBadInput, "nope")))
}

func TestJourneySortKeyDefaultsToDeparture(t *testing.T) {
	assert.Equal(t, domain.SortByDeparture, journeySortKey("departure"))
	assert.Equal(t, domain.SortByDeparture, journeySortKey("whatever"))
	assert.Equal(t, domain.SortByDuration, journeySortKey("duration"))
	assert.Equal(t, domain.SortByTransfers, journeySortKey("transfers"))
	assert.Equal(t, domain.SortByArrival, journeySortKey("arrival"))
}

func TestJSONFlagDetection(t *testing.T) {
	assert.True(t, hasJSONFlag([]string{"fare", "1000", "4400", "--json"}))
	assert.False(t, hasJSONFlag([]string{"fare", "1000", "4400"}))
}
