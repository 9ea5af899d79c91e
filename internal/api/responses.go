package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	// Code is a stable machine-readable reason, e.g. "slot_unavailable".
	Code string `json:"code,omitempty" example:"slot_unavailable"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
