package orchestration

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStarted    EventType = "run_start"
	EventRunCompleted  EventType = "run_complete"
	EventCaseStarted   EventType = "case_start"
	EventCaseCompleted EventType = "case_complete"
	EventCaseFailed    EventType = "case_failed"
	EventRunError      EventType = "error"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	RunID      string
	CaseID     string
	AgentName  string
	CaseNum    int
	TotalCases int
	Passed     bool
	Composite  float64
	DurationMs int64
	Details    map[string]any
}
