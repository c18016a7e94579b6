package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: not ready
	Error string `json:"error" example:"not ready"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Instance identifier, unique per process start.
	// example: 7f1d0c8e-2f0b-4c43-9a55-5d8f6a0b1e2c
	ID string `json:"id" example:"7f1d0c8e-2f0b-4c43-9a55-5d8f6a0b1e2c"`
	// Lifecycle state: pending, ready or failed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Convenience flag, true only in the ready state.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Environment name used to pick the configuration override.
	// example: production
	Env string `json:"env" example:"production"`
	// Phase currently running while pending, or the phase that failed.
	// example: resources
	Phase string `json:"phase,omitempty" example:"resources"`
	// Derived directory layout.
	Paths Paths `json:"paths"`
	// Provisioned resources in provisioning order.
	Resources []Resource `json:"resources"`
	// Initialization error, when failed.
	Error string `json:"error,omitempty"`
	// Time spent initializing in milliseconds (0 while pending).
	// example: 42
	InitDurationMs int64 `json:"init_duration_ms" example:"42"`
	// Uptime of the instance in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
