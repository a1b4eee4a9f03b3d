package runlog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	data := map[string]any{"key": "value"}
	ev := NewEvent(EventRunStart, data)

	if ev.Type != EventRunStart {
		t.Errorf("Type = %q, want %q", ev.Type, EventRunStart)
	}
	if ev.Data["key"] != "value" {
		t.Errorf("Data[key] = %v, want %q", ev.Data["key"], "value")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestEventJSON(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	ev := Event{
		Timestamp: ts,
		Type:      EventCaseStart,
		RunID:     "run-1",
		Data:      CaseStartData("c1", "engagement-agent", 1, 3),
	}

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Type != EventCaseStart {
		t.Errorf("decoded.Type = %q, want %q", decoded.Type, EventCaseStart)
	}
	if decoded.RunID != "run-1" {
		t.Errorf("decoded.RunID = %q, want run-1", decoded.RunID)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("decoded.Timestamp = %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Data["case_id"] != "c1" {
		t.Errorf("case_id = %v, want %q", decoded.Data["case_id"], "c1")
	}
}

func TestRunStartData(t *testing.T) {
	d := RunStartData("gpt-4o", "gpt-4o-mini", 5)
	if d["model"] != "gpt-4o" {
		t.Errorf("model = %v", d["model"])
	}
	if d["judge_model"] != "gpt-4o-mini" {
		t.Errorf("judge_model = %v", d["judge_model"])
	}
	if d["case_count"] != 5 {
		t.Errorf("case_count = %v", d["case_count"])
	}
}

func TestCaseCompleteData(t *testing.T) {
	d := CaseCompleteData("c1", "engagement-agent", true, 4.2, map[string]float64{"CoherenceExplain": 4}, 120)
	if d["passed"] != true {
		t.Errorf("passed = %v", d["passed"])
	}
	if d["composite"] != 4.2 {
		t.Errorf("composite = %v", d["composite"])
	}
	if _, ok := d["scores"]; !ok {
		t.Error("scores missing")
	}

	d = CaseCompleteData("c2", "engagement-agent", false, 0, nil, 0)
	if _, ok := d["scores"]; ok {
		t.Error("scores should be omitted when empty")
	}
}

func TestErrorData(t *testing.T) {
	d := ErrorData("timeout exceeded", map[string]any{"case": "foo"})
	if d["message"] != "timeout exceeded" {
		t.Errorf("message = %v", d["message"])
	}
	if d["case"] != "foo" {
		t.Errorf("case = %v", d["case"])
	}
}

func TestJSONLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-run.jsonl")

	logger, err := NewJSONLogger(path, "run-1")
	if err != nil {
		t.Fatalf("NewJSONLogger: %v", err)
	}

	events := []Event{
		NewEvent(EventRunStart, RunStartData("gpt-4o", "gpt-4o", 2)),
		NewEvent(EventCaseStart, CaseStartData("c1", "engagement-agent", 1, 2)),
		NewEvent(EventCaseComplete, CaseCompleteData("c1", "engagement-agent", true, 4.1, nil, 500)),
		NewEvent(EventRunComplete, RunCompleteData(2, 2, 0, false, 1000)),
	}

	for _, ev := range events {
		if err := logger.Log(ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}

	var first Event
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("Unmarshal line 0: %v", err)
	}
	if first.Type != EventRunStart {
		t.Errorf("first event type = %q, want %q", first.Type, EventRunStart)
	}
	if first.RunID != "run-1" {
		t.Errorf("first event run id = %q, want run-1", first.RunID)
	}
}

func TestJSONLoggerPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "test.jsonl")

	logger, err := NewJSONLogger(path, "")
	if err != nil {
		t.Fatalf("NewJSONLogger with subdirectory: %v", err)
	}
	defer logger.Close() //nolint:errcheck

	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	if err := logger.Log(NewEvent(EventRunStart, nil)); err != nil {
		t.Errorf("NopLogger.Log should not error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NopLogger.Close should not error: %v", err)
	}
}

func TestDefaultLogPath(t *testing.T) {
	p := DefaultLogPath("/tmp/runs")
	if filepath.Dir(p) != "/tmp/runs" {
		t.Errorf("dir = %q, want /tmp/runs", filepath.Dir(p))
	}
	if ext := filepath.Ext(p); ext != ".jsonl" {
		t.Errorf("ext = %q, want .jsonl", ext)
	}
}

func TestListLogs(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"20250115T100000Z-run.jsonl",
		"20250116T100000Z-run.jsonl",
		"not-a-run.txt",
	} {
		os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644) //nolint:errcheck
	}

	files, err := ListLogs(dir)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
}

func TestListLogsNoDir(t *testing.T) {
	_, err := ListLogs("/nonexistent/dir")
	if err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestReadEventsSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test-run.jsonl")

	content := `{"timestamp":"2025-01-15T10:00:00Z","type":"run_start","data":{}}
not valid json
{"timestamp":"2025-01-15T10:00:01Z","type":"run_complete","data":{}}
`
	os.WriteFile(path, []byte(content), 0644) //nolint:errcheck

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestRenderTimeline(t *testing.T) {
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Type: EventRunStart, RunID: "run-1", Data: RunStartData("gpt-4o", "gpt-4o-mini", 2)},
		{Timestamp: base.Add(100 * time.Millisecond), Type: EventCaseStart, Data: CaseStartData("case-1", "engagement-agent", 1, 2)},
		{Timestamp: base.Add(300 * time.Millisecond), Type: EventCaseComplete, Data: CaseCompleteData("case-1", "engagement-agent", true, 4.25, nil, 200)},
		{Timestamp: base.Add(400 * time.Millisecond), Type: EventCaseFailed, Data: CaseFailedData("case-2", "mystery", "Unsupported agent", 5)},
		{Timestamp: base.Add(450 * time.Millisecond), Type: EventError, Data: ErrorData("something broke", nil)},
		{Timestamp: base.Add(500 * time.Millisecond), Type: EventRunComplete, Data: RunCompleteData(2, 1, 1, true, 500)},
	}

	var buf bytes.Buffer
	RenderTimeline(&buf, events)

	output := buf.String()
	for _, want := range []string{
		"RUN TIMELINE",
		"run-1",
		"gpt-4o-mini",
		"Case 1/2: case-1 (engagement-agent)",
		"composite=4.25",
		"Case failed: case-2: Unsupported agent",
		"something broke",
		"Run stopped  1/2 passed  1 failed",
	} {
		if !bytes.Contains([]byte(output), []byte(want)) {
			t.Errorf("output should contain %q:\n%s", want, output)
		}
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTimeline(&buf, nil)
	if !bytes.Contains(buf.Bytes(), []byte("No events found.")) {
		t.Error("empty events should print 'No events found.'")
	}
}
