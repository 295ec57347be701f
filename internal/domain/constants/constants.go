package constants

import "time"

// AI model constants
const (
	// GeminiModelName default Gemini model variant
	GeminiModelName = "gemini-2.0-flash"

	// DefaultGenerationTimeout upper bound for a single generation call
	DefaultGenerationTimeout = 60 * time.Second
)

// Response constants
const (
	// BadResponseMessage value of the "error" key in the sentinel result
	BadResponseMessage = "bad response"

	// CurrencyCode currency every price in a recommendation is quoted in
	CurrencyCode = "CAD"
)

// Storage constants
const (
	// DefaultHistoryLimit number of saved builds returned per user
	DefaultHistoryLimit = 20

	// DefaultMaxBuildsPerUser builds kept per user by the in-memory repository
	DefaultMaxBuildsPerUser = 100

	// PostgresConnectAttempts connection attempts before giving up
	PostgresConnectAttempts = 20

	// PostgresConnectDelay pause between connection attempts
	PostgresConnectDelay = 2 * time.Second
)

// HTTP constants
const (
	// DefaultHTTPAddr listen address of the JSON API
	DefaultHTTPAddr = ":8080"

	// MaxRequestBodySize largest accepted build request body (bytes)
	MaxRequestBodySize = 64 * 1024
)
