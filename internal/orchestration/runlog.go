package orchestration

import (
	"log/slog"

	"github.com/agentsleague/prepeval/internal/runlog"
	"github.com/agentsleague/prepeval/internal/validation"
)

// LogListener writes progress events to a run log. Write failures are
// reported through slog and never stop the run.
func LogListener(logger runlog.Logger) ProgressListener {
	return func(e ProgressEvent) {
		ev, ok := toRunLogEvent(e)
		if !ok {
			return
		}
		if err := logger.Log(ev); err != nil {
			slog.Warn("writing run log", "event", e.EventType, "error", err)
		}
	}
}

func toRunLogEvent(e ProgressEvent) (runlog.Event, bool) {
	var ev runlog.Event
	switch e.EventType {
	case EventRunStarted:
		model, _ := validation.TryString(e.Details, "model")
		judgeModel, _ := validation.TryString(e.Details, "judge_model")
		ev = runlog.NewEvent(runlog.EventRunStart, runlog.RunStartData(model, judgeModel, e.TotalCases))
	case EventCaseStarted:
		ev = runlog.NewEvent(runlog.EventCaseStart, runlog.CaseStartData(e.CaseID, e.AgentName, e.CaseNum, e.TotalCases))
	case EventCaseCompleted:
		scores, _ := e.Details["scores"].(map[string]float64) //nolint:errcheck
		ev = runlog.NewEvent(runlog.EventCaseComplete, runlog.CaseCompleteData(e.CaseID, e.AgentName, e.Passed, e.Composite, scores, e.DurationMs))
	case EventCaseFailed:
		msg, _ := validation.TryString(e.Details, "error")
		ev = runlog.NewEvent(runlog.EventCaseFailed, runlog.CaseFailedData(e.CaseID, e.AgentName, msg, e.DurationMs))
	case EventRunError:
		msg, _ := validation.TryString(e.Details, "error")
		details := make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			if k != "error" {
				details[k] = v
			}
		}
		ev = runlog.NewEvent(runlog.EventError, runlog.ErrorData(msg, details))
	case EventRunCompleted:
		passed, _ := e.Details["passed"].(int)    //nolint:errcheck
		failed, _ := e.Details["failed"].(int)    //nolint:errcheck
		stopped, _ := e.Details["stopped"].(bool) //nolint:errcheck
		ev = runlog.NewEvent(runlog.EventRunComplete, runlog.RunCompleteData(e.TotalCases, passed, failed, stopped, e.DurationMs))
	default:
		return runlog.Event{}, false
	}
	ev.RunID = e.RunID
	return ev, true
}
