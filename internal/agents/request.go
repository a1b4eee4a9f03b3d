package agents

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// Defaults applied when a question does not state its study parameters.
const (
	DefaultWeeklyHours   = 6
	DefaultDurationWeeks = 8
)

var (
	topicsPattern    = regexp.MustCompile(`(?i)Student topics:\s*(.+)`)
	weeklyPattern    = regexp.MustCompile(`(?i)Weekly study hours:\s*(\d+)`)
	durationPattern  = regexp.MustCompile(`(?i)Duration in weeks:\s*(\d+)`)
	narrativePattern = regexp.MustCompile(`(?i)with\s+(\d+)\s+hours/week\s+over\s+(\d+)\s+weeks`)
)

// ParseRequest recovers the preparation request encoded in a case question.
// Labelled fields are read first; the narrative "with N hours/week over M
// weeks" phrasing overrides them when present.
func ParseRequest(c models.DatasetCase) models.PreparationRequest {
	req := models.PreparationRequest{
		Topics:        c.Question,
		WeeklyHours:   DefaultWeeklyHours,
		DurationWeeks: DefaultDurationWeeks,
	}

	if m := topicsPattern.FindStringSubmatch(c.Question); m != nil {
		req.Topics = m[1]
	}
	if n, ok := matchInt(weeklyPattern, c.Question, 1); ok {
		req.WeeklyHours = n
	}
	if n, ok := matchInt(durationPattern, c.Question, 1); ok {
		req.DurationWeeks = n
	}
	if n, ok := matchInt(narrativePattern, c.Question, 1); ok {
		req.WeeklyHours = n
	}
	if n, ok := matchInt(narrativePattern, c.Question, 2); ok {
		req.DurationWeeks = n
	}

	req.Topics = strings.TrimSpace(req.Topics)
	req.StudentEmail = studentEmail(c)
	return req
}

func studentEmail(c models.DatasetCase) string {
	if strings.TrimSpace(c.ScenarioID) == "" {
		return c.AgentName + "@eval.local"
	}
	return c.ScenarioID + "@eval.local"
}

func matchInt(re *regexp.Regexp, s string, group int) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[group])
	if err != nil {
		return 0, false
	}
	return n, true
}
