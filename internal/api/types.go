package api

// GenerateAudioRequest represents the request payload for audio generation
type GenerateAudioRequest struct {
	Language  string `json:"language" validate:"required"`
	VoiceName string `json:"voice_name,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
