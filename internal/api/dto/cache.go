package dto

type CacheStatsResponse struct {
	TotalEntries   int     `json:"total_entries"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	TotalSizeMB    float64 `json:"total_size_mb"`
	Backend        string  `json:"backend"`
}

type CacheClearResponse struct {
	Message        string `json:"message"`
	RemovedEntries int    `json:"removed_entries"`
}

type HealthResponse struct {
	Status           string              `json:"status"`
	APIKeyConfigured bool                `json:"api_key_configured"`
	Cache            *CacheStatsResponse `json:"cache,omitempty"`
}

type TravelModeResponse struct {
	Mode     string `json:"mode"`
	Label    string `json:"label"`
	SpeedKmh int    `json:"speed_kmh"`
}

type ListTravelModesResponse struct {
	TravelModes []TravelModeResponse `json:"travel_modes"`
}
