package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage represents a generic WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage carries a process-state update for one submission
type WSStatusMessage struct {
	Type         string       `json:"type"`
	SubmissionID string       `json:"submissionId"`
	Phase        ProcessPhase `json:"phase"`
	StatusText   string       `json:"statusText,omitempty"`
}

// WSCompleteMessage signals terminal success and where to navigate
type WSCompleteMessage struct {
	Type         string `json:"type"`
	SubmissionID string `json:"submissionId"`
	Redirect     string `json:"redirect"`
}

// WSErrorMessage signals a terminal failure of the attempt
type WSErrorMessage struct {
	Type         string  `json:"type"`
	SubmissionID string  `json:"submissionId"`
	Error        WSError `json:"error"`
}

// WSError represents error details
type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
