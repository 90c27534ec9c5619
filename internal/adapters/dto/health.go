package dto

// HealthResponse reports dispatcher and queue state.
type HealthResponse struct {
	Status             string `json:"status"`
	InFlight           int    `json:"in_flight"`
	PendingSubmissions int    `json:"pending_submissions"`
	QueueReady         int    `json:"queue_ready"`
	QueueUnacked       int    `json:"queue_unacked"`
}
