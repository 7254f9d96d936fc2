package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 20
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Meet & greet tracking sessions
const (
	TrackingSessionTTL     = 24 * time.Hour
	TrackingCodeLength     = 6
	TrackingInitialPlace   = "Check-in"
	MaxTrackingCodeRetries = 5
)

const APIVersion = "1.0.0"
