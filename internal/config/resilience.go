package config

import "time"

// Settle pauses around browser actions. These tolerate destination-side rendering
// and processing latency and are not operator settings.
const (
	PageLoadSettle    = 2 * time.Second
	FieldInputSettle  = 300 * time.Millisecond
	SubmitClickSettle = 1500 * time.Millisecond
)

// Retry configuration constants
const (
	// Google Sheets read retry configuration
	SheetReadMaxAttempts       = 3
	SheetReadInitialWait       = 500 * time.Millisecond
	SheetReadMaxWait           = 5 * time.Second
	SheetReadBackoffMultiplier = 2.0
	SheetReadTimeout           = 30 * time.Second

	// SSH spreadsheet fetch retry configuration
	RemoteFetchMaxAttempts       = 3
	RemoteFetchInitialWait       = 1 * time.Second
	RemoteFetchMaxWait           = 10 * time.Second
	RemoteFetchBackoffMultiplier = 2.0
	RemoteFetchTimeout           = 30 * time.Second
)

// RetryConfig defines retry behavior for operations
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Timeout     time.Duration
}

// Backoff returns the wait before the given retry (1 for the first retry),
// capped at MaxWait.
func (r RetryConfig) Backoff(retry int) time.Duration {
	wait := r.InitialWait
	for i := 1; i < retry; i++ {
		wait = time.Duration(float64(wait) * r.Multiplier)
		if wait >= r.MaxWait {
			return r.MaxWait
		}
	}
	if wait > r.MaxWait {
		return r.MaxWait
	}
	return wait
}

// ResilienceConfig contains all retry configurations
type ResilienceConfig struct {
	SheetRead   RetryConfig
	RemoteFetch RetryConfig
}

// DefaultResilienceConfig provides sensible defaults
var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: RetryConfig{
		MaxAttempts: SheetReadMaxAttempts,
		InitialWait: SheetReadInitialWait,
		MaxWait:     SheetReadMaxWait,
		Multiplier:  SheetReadBackoffMultiplier,
		Timeout:     SheetReadTimeout,
	},
	RemoteFetch: RetryConfig{
		MaxAttempts: RemoteFetchMaxAttempts,
		InitialWait: RemoteFetchInitialWait,
		MaxWait:     RemoteFetchMaxWait,
		Multiplier:  RemoteFetchBackoffMultiplier,
		Timeout:     RemoteFetchTimeout,
	},
}
