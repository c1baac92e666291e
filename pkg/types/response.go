package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ListEnvelope is the shape used by the filtered list endpoints
// (udhar, followup): a total count plus the current page of records.
type ListEnvelope[T any] struct {
	Count   int64 `json:"count"`
	Records []T   `json:"records"`
}
