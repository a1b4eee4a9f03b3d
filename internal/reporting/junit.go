package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one agent.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one dataset case.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test assertion failure.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error during test execution.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a run report to JUnit XML: one suite per agent and
// one test case per dataset case. Cases that never reached scoring are
// reported as errors, scored cases that failed as failures.
func ConvertToJUnit(report *models.EvalRunReport) *JUnitTestSuites {
	byAgent := map[string][]models.CaseEvaluationResult{}
	for _, c := range report.Cases {
		name := agentKey(report, c.AgentName)
		byAgent[name] = append(byAgent[name], c)
	}

	out := &JUnitTestSuites{}
	for _, agent := range sortedKeys(report.PerAgent) {
		summary := report.PerAgent[agent]
		suite := JUnitTestSuite{
			Name:      agent,
			Timestamp: report.GeneratedAtUTC.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "runId", Value: report.RunID},
				{Name: "compositeAverage", Value: fmt.Sprintf("%.4f", summary.CompositeAverage)},
				{Name: "passRate", Value: fmt.Sprintf("%.4f", summary.PassRate)},
			},
		}
		for _, c := range byAgent[agent] {
			tc := convertCase(agent, c)
			suite.Tests++
			suite.Time += tc.Time
			switch {
			case tc.Error != nil:
				suite.Errors++
			case tc.Failure != nil:
				suite.Failures++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.Time += suite.Time
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

// agentKey maps a case's agent name onto the per-agent key it was grouped
// under.
func agentKey(report *models.EvalRunReport, agent string) string {
	if _, ok := report.PerAgent[agent]; ok {
		return agent
	}
	for name := range report.PerAgent {
		if strings.EqualFold(name, agent) {
			return name
		}
	}
	return agent
}

func convertCase(agent string, c models.CaseEvaluationResult) JUnitTestCase {
	name := c.CaseID
	if c.ScenarioID != "" {
		name = fmt.Sprintf("%s (%s)", c.CaseID, c.ScenarioID)
	}
	tc := JUnitTestCase{
		Name:      name,
		Classname: agent,
		Time:      float64(c.DurationMs) / 1000.0,
	}
	if c.Passed {
		return tc
	}
	if len(c.Metrics) == 0 {
		tc.Error = &JUnitError{
			Message: c.FailureReason,
			Type:    "ExecutionError",
		}
		return tc
	}
	tc.Failure = &JUnitFailure{
		Message: fmt.Sprintf("composite=%.2f: %s", c.CompositeScore, c.FailureReason),
		Type:    "ScoringFailure",
		Body:    formatMetrics(c.Metrics),
	}
	return tc
}

func formatMetrics(metrics []models.MetricEvaluationResult) string {
	var b strings.Builder
	for _, m := range metrics {
		fmt.Fprintf(&b, "%s (%s): score=%.2f prob=%.2f - %s\n", m.MetricName, m.EvalName, m.Score, m.ProbScore, m.Reasoning)
	}
	return b.String()
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *models.EvalRunReport, path string) error {
	suites := ConvertToJUnit(report)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
