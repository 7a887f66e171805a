package models

import "time"

// DashboardSummary aggregates headline counts for the admin dashboard.
type DashboardSummary struct {
	TotalUsers       int           `json:"total_users"`
	TotalVehicles    int           `json:"total_vehicles"`
	SlotsAvailable   int           `json:"slots_available"`
	SlotsUnavailable int           `json:"slots_unavailable"`
	RequestsPending  int           `json:"requests_pending"`
	RequestsApproved int           `json:"requests_approved"`
	RequestsRejected int           `json:"requests_rejected"`
	RequestsCanceled int           `json:"requests_cancelled"`
	System           SystemMetrics `json:"system"`
	GeneratedAt      time.Time     `json:"generated_at"`
}

// SystemMetrics is a lightweight aggregate snapshot exposed on the dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
