package types

// StatusSuccess is the status value carried by every success envelope.
const StatusSuccess = "success"

// SuccessEnvelope is the wire shape for successful API responses.
type SuccessEnvelope struct {
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	NumOfCartItems *int   `json:"numOfCartItems,omitempty"`
	Data           any    `json:"data,omitempty"`
}

// ErrorEnvelope is the wire shape for failed API responses.
type ErrorEnvelope struct {
	Error string `json:"error"`
}
