package dto

// HealthResponse es la respuesta de /readyz.
type HealthResponse struct {
	Status     string            `json:"status"` // ready | degraded | unavailable
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components"`
}
