package config

import (
	"fmt"
	"os"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

// LoadCredentials reads TDX credential pairs from the environment.
// Slot 1 is TDX_CLIENT_ID / TDX_CLIENT_SECRET, slots 2..10 carry a numeric
// suffix. Incomplete pairs are skipped silently so a half-set slot never
// poisons the pool.
func LoadCredentials() []domain.Credential {
	creds := make([]domain.Credential, 0, constants.MaxKeySlots)

	for n := 1; n <= constants.MaxKeySlots; n++ {
		suffix := ""
		if n > 1 {
			suffix = fmt.Sprintf("_%d", n)
		}

		clientID := os.Getenv("TDX_CLIENT_ID" + suffix)
		clientSecret := os.Getenv("TDX_CLIENT_SECRET" + suffix)
		if clientID == "" || clientSecret == "" {
			continue
		}

		label := os.Getenv("TDX_KEY_LABEL" + suffix)

		creds = append(creds, domain.Credential{
			ID:           fmt.Sprintf("slot-%d", n),
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Label:        label,
		})
	}

	return creds
}
