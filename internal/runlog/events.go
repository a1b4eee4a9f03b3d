package runlog

import "time"

// EventType identifies the kind of run log event.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventRunComplete  EventType = "run_complete"
	EventCaseStart    EventType = "case_start"
	EventCaseComplete EventType = "case_complete"
	EventCaseFailed   EventType = "case_failed"
	EventError        EventType = "error"
)

// Event is a single timestamped entry in a run log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	RunID     string         `json:"runId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for a run start.
func RunStartData(model, judgeModel string, caseCount int) map[string]any {
	return map[string]any{
		"model":       model,
		"judge_model": judgeModel,
		"case_count":  caseCount,
	}
}

// RunCompleteData returns event data for a run end.
func RunCompleteData(totalCases, passed, failed int, stopped bool, durationMs int64) map[string]any {
	return map[string]any{
		"total_cases": totalCases,
		"passed":      passed,
		"failed":      failed,
		"stopped":     stopped,
		"duration_ms": durationMs,
	}
}

// CaseStartData returns event data for a case start.
func CaseStartData(caseID, agent string, caseNum, totalCases int) map[string]any {
	return map[string]any{
		"case_id":     caseID,
		"agent":       agent,
		"case_num":    caseNum,
		"total_cases": totalCases,
	}
}

// CaseCompleteData returns event data for a scored case.
func CaseCompleteData(caseID, agent string, passed bool, composite float64, scores map[string]float64, durationMs int64) map[string]any {
	d := map[string]any{
		"case_id":     caseID,
		"agent":       agent,
		"passed":      passed,
		"composite":   composite,
		"duration_ms": durationMs,
	}
	if len(scores) > 0 {
		d["scores"] = scores
	}
	return d
}

// CaseFailedData returns event data for a case that failed before scoring.
func CaseFailedData(caseID, agent, message string, durationMs int64) map[string]any {
	return map[string]any{
		"case_id":     caseID,
		"agent":       agent,
		"message":     message,
		"duration_ms": durationMs,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string, details map[string]any) map[string]any {
	d := map[string]any{"message": message}
	for k, v := range details {
		d[k] = v
	}
	return d
}
