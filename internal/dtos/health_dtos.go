package dtos

// HealthCheckResponse is returned by the health endpoint.
type HealthCheckResponse struct {
	Status string `json:"status"`
}
