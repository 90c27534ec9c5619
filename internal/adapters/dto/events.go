package dto

// EventRequest is an entity-changed notification posted to the webhook.
type EventRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// EventResponse acknowledges a queued event.
type EventResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
	ID     string `json:"id"`
}
