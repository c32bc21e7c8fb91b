package model

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform response wrapper every endpoint returns.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func Success(message string, data any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

func Error(message string) Envelope {
	return Envelope{Status: StatusError, Message: message}
}
