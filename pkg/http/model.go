package http

// APIResponse is the envelope for every JSON response. RequestID echoes the
// X-Request-ID header.
type APIResponse struct {
	Status    int         `json:"status" example:"200"`
	Message   string      `json:"message" example:"OK"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_TICKER"`
	Field   string                 `json:"field,omitempty" example:"symbol"`
	Message string                 `json:"message,omitempty" example:"symbol must be a ticker symbol of at most 12 characters"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
