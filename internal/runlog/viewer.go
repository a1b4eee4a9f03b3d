package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogFile represents a run log file on disk.
type LogFile struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	NumEvents int
}

// ListLogs finds run log files in dir, newest first.
func ListLogs(dir string) ([]LogFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading run log directory: %w", err)
	}

	var files []LogFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), "-run.jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, e.Name())
		n, _ := countLines(path) //nolint:errcheck
		files = append(files, LogFile{
			Path:      path,
			Name:      e.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			NumEvents: n,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// ReadEvents parses all events from a run log file.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	// Increase buffer for large lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue // skip malformed lines
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}
	return events, nil
}

// RenderTimeline writes a human-readable run timeline to w.
//
//nolint:errcheck // display-only writes; errors are not actionable
func RenderTimeline(w io.Writer, events []Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w, " RUN TIMELINE")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════")
	fmt.Fprintln(w)

	start := events[0].Timestamp
	for _, ev := range events {
		elapsed := ev.Timestamp.Sub(start)
		ts := formatDuration(elapsed)

		switch ev.Type {
		case EventRunStart:
			model, _ := ev.Data["model"].(string)            //nolint:errcheck
			judgeModel, _ := ev.Data["judge_model"].(string) //nolint:errcheck
			caseCount := jsonNumber(ev.Data["case_count"])
			fmt.Fprintf(w, "[%s] 🚀 Run started  %s  model=%s  judge=%s  cases=%d\n", ts, ev.RunID, model, judgeModel, caseCount)

		case EventCaseStart:
			id, _ := ev.Data["case_id"].(string)  //nolint:errcheck
			agent, _ := ev.Data["agent"].(string) //nolint:errcheck
			num := jsonNumber(ev.Data["case_num"])
			total := jsonNumber(ev.Data["total_cases"])
			fmt.Fprintf(w, "[%s] ▶  Case %d/%d: %s (%s)\n", ts, num, total, id, agent)

		case EventCaseComplete:
			id, _ := ev.Data["case_id"].(string)  //nolint:errcheck
			passed, _ := ev.Data["passed"].(bool) //nolint:errcheck
			composite := jsonFloat(ev.Data["composite"])
			dur := jsonNumber(ev.Data["duration_ms"])
			icon, status := "✓", "passed"
			if !passed {
				icon, status = "✗", "failed"
			}
			fmt.Fprintf(w, "[%s] %s  Case complete: %s [%s] composite=%.2f (%dms)\n", ts, icon, id, status, composite, dur)

		case EventCaseFailed:
			id, _ := ev.Data["case_id"].(string)  //nolint:errcheck
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ✗  Case failed: %s: %s\n", ts, id, msg)

		case EventError:
			msg, _ := ev.Data["message"].(string) //nolint:errcheck
			fmt.Fprintf(w, "[%s] ❌ Error: %s\n", ts, msg)

		case EventRunComplete:
			total := jsonNumber(ev.Data["total_cases"])
			passed := jsonNumber(ev.Data["passed"])
			failed := jsonNumber(ev.Data["failed"])
			dur := jsonNumber(ev.Data["duration_ms"])
			label := "Run complete"
			if stopped, _ := ev.Data["stopped"].(bool); stopped { //nolint:errcheck
				label = "Run stopped"
			}
			fmt.Fprintf(w, "[%s] 🏁 %s  %d/%d passed  %d failed  (%dms)\n",
				ts, label, passed, total, failed, dur)

		default:
			fmt.Fprintf(w, "[%s] %s %v\n", ts, ev.Type, ev.Data)
		}
	}
	fmt.Fprintln(w)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%6dms", d.Milliseconds())
	}
	return fmt.Sprintf("%6.1fs", d.Seconds())
}

// jsonNumber extracts a number from a JSON-decoded interface{} (float64 or json.Number).
func jsonNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64() //nolint:errcheck
		return int(i)
	}
	return 0
}

func jsonFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64() //nolint:errcheck
		return f
	}
	return 0
}
