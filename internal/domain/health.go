package domain

import "time"

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Service   string       `json:"service"`
	Message   string       `json:"message,omitempty"`
}

// TargetStats counts what happened to records sent to one target.
type TargetStats struct {
	Written  uint64 `json:"written"`
	Filtered uint64 `json:"filtered"`
	Failed   uint64 `json:"failed"`
	Routed   bool   `json:"routed"`
}

type StatusResponse struct {
	Service  string                    `json:"service"`
	Running  bool                      `json:"running"`
	MinLevel LogLevel                  `json:"min_level"`
	Targets  map[LogTarget]TargetStats `json:"targets"`
}
