package httpapi

import "time"

// readyWaitMax caps the ?wait= parameter of /readyz. Zero means no cap.
var readyWaitMax = 30 * time.Second

// SetReadyWaitMax sets the /readyz wait cap. Negative values disable the cap.
func SetReadyWaitMax(d time.Duration) {
	if d < 0 {
		d = 0
	}
	readyWaitMax = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
