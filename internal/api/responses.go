package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// WebhookAck is the only shape the vendor callback ever receives,
// regardless of what happened internally.
type WebhookAck struct {
	OK bool `json:"ok"`
}
