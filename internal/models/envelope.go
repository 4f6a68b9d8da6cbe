package models

const (
	StatusOK = "OK"
	StatusKO = "KO"
)

// Envelope wraps every response body exchanged with the backend.
// When Status is StatusKO, Result holds an ErrorBody.
type Envelope[T any] struct {
	Status string `json:"status"`
	Result T      `json:"result"`
}

type ErrorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK[T any](result T) Envelope[T] {
	return Envelope[T]{Status: StatusOK, Result: result}
}

func KO(code, message string) Envelope[ErrorBody] {
	return Envelope[ErrorBody]{Status: StatusKO, Result: ErrorBody{Code: code, Message: message}}
}
