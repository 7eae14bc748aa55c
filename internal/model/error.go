package model

// ErrorResponse is the JSON body of every error the gateway writes itself.
type ErrorResponse struct {
	Error         string `json:"error"`
	Details       any    `json:"details,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}
