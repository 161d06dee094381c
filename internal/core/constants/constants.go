package constants

import "time"

const (
	// TDX upstream endpoints
	DefaultTokenURL = "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"
	DefaultBaseURL  = "https://tdx.transportdata.tw/api/basic"

	DefaultRequestTimeout = 30 * time.Second
	DefaultUserAgent      = "traigo"
)

// Rate limiting defaults encode the upstream contract of 5 req/s per
// credential with a small burst allowance.
const (
	DefaultBucketCapacity  = 50
	DefaultRefillPerSecond = 5
	DefaultAcquireInterval = 100 * time.Millisecond
	DefaultAcquireRetries  = 50

	// Global politeness cap across all slots, operator overridable.
	DefaultGlobalRequestsPerSecond = 20
	DefaultGlobalBurst             = 50
)

const (
	TokenSafetyBuffer = 60 * time.Second

	DefaultSlotFailureThreshold = 3
	DefaultSlotFailureCooldown  = 30 * time.Second
	DefaultSlotRecoveryTime     = 60 * time.Second
	MaxKeySlots                 = 10
)

const (
	DefaultBreakerFailureThreshold = 3
	DefaultBreakerSuccessThreshold = 2
	DefaultBreakerOpenTimeout      = 30 * time.Second
	BreakerTransitionLogSize       = 32
)

const (
	DefaultMaxRetries        = 3
	DefaultRetryBaseDelay    = 500 * time.Millisecond
	DefaultRetryMaxDelay     = 10 * time.Second
	DefaultBackoffMultiplier = 2
	DefaultJitterPercentage  = 0.1
)

// Cache TTLs per endpoint category. Live endpoints are never cached.
const (
	TTLStations      = 7 * 24 * time.Hour
	TTLLines         = 7 * 24 * time.Hour
	TTLLineStations  = 7 * 24 * time.Hour
	TTLLineTransfers = 24 * time.Hour
	TTLStationExits  = 24 * time.Hour
	TTLTimetable     = 24 * time.Hour
	TTLFare          = 7 * 24 * time.Hour
	TTLAlerts        = 15 * time.Minute

	AlertServiceCacheTTL = time.Hour
)

const (
	DefaultMinTransferMinutes = 10
	DefaultMaxTransferMinutes = 120
	OvernightThresholdMinutes = 12 * 60
	MinutesPerDay             = 24 * 60
)

// Exit codes consumed by the CLI layer.
const (
	ExitOK                 = 0
	ExitBadInput           = 1
	ExitUpstreamError      = 2
	ExitMissingCredentials = 3
)
