// Package reportapi talks to the reporting backend that owns workflows,
// uploads and persisted charts. The chart builder consumes it through the
// ChartStore and DatasetSource interfaces.
package reportapi

import "fmt"

// APIError is a non-2xx response from the reporting API, with the message
// the backend chose to surface.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reportapi: %s (status %d)", e.Message, e.Status)
}

// errorBody is the shape the backend uses for failures. Some endpoints emit
// "error", others "message"; both are honored in that order.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
