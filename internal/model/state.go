package model

// Stage labels shown to the caller while a submission is running. The
// pipeline advances through them in order.
const (
	StatusUploadingResume = "Uploading resume..."
	StatusConvertingPDF   = "Converting PDF to image..."
	StatusUploadingImage  = "Uploading image..."
	StatusSavingData      = "Saving data..."
	StatusAnalyzing       = "Analyzing resume..."
	StatusComplete        = "Analysis complete! Redirecting..."
)

// ProcessPhase identifies where a submission attempt is in its lifecycle
type ProcessPhase string

const (
	PhaseIdle     ProcessPhase = "idle"
	PhaseRunning  ProcessPhase = "running"
	PhaseError    ProcessPhase = "error"
	PhaseComplete ProcessPhase = "complete"
)

// ProcessState is the transient status of one submission attempt. It is
// never persisted; unknown submissions report the idle state.
type ProcessState struct {
	Phase      ProcessPhase `json:"phase"`
	StatusText string       `json:"statusText,omitempty"`
	Error      string       `json:"error,omitempty"`
	Redirect   string       `json:"redirect,omitempty"`
}

// IdleState is what observers see before a submission starts or after a reset.
func IdleState() ProcessState {
	return ProcessState{Phase: PhaseIdle}
}
