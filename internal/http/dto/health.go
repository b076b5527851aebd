package dto

type HealthResponse struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Uptime     float64           `json:"uptime"`
	Timestamp  string            `json:"timestamp"`
	Database   string            `json:"database,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Cache      *CacheStats       `json:"cache,omitempty"`
}

type CacheStats struct {
	Driver     string `json:"driver"`
	Keys       int64  `json:"keys"`
	UsedMemory string `json:"usedMemory,omitempty"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
}
