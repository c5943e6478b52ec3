package domain

type CreationState string

const (
	CreationIdle       CreationState = "idle"
	CreationEditing    CreationState = "editing"
	CreationSubmitting CreationState = "submitting"
)

type AnalysisState string

const (
	AnalysisIdle       AnalysisState = "idle"
	AnalysisRequesting AnalysisState = "requesting"
)

type TrainingState string

const (
	TrainingIdle       TrainingState = "idle"
	TrainingRunning    TrainingState = "running"
	TrainingDisplaying TrainingState = "displaying"
)

type CreationStatus struct {
	State CreationState
	Draft TransactionDraft
	Error string
}

func (s CreationStatus) Loading() bool {
	return s.State == CreationSubmitting
}

type AnalysisStatus struct {
	State         AnalysisState
	TransactionID string
	Result        *AnalysisResult
	Error         string
}

func (s AnalysisStatus) Loading() bool {
	return s.State == AnalysisRequesting
}

type TrainingStatus struct {
	State    TrainingState
	Progress int
	Result   *TrainingResult
	Error    string
}

func (s TrainingStatus) Loading() bool {
	return s.State != TrainingIdle
}
