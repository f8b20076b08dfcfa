package dto

// Response is the API envelope: {status, message?, data?}
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func OK(data any) Response {
	return Response{Status: true, Data: data}
}

func Message(message string) Response {
	return Response{Status: true, Message: message}
}

func Fail(message string) Response {
	return Response{Status: false, Message: message}
}
