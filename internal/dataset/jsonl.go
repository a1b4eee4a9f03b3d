// Package dataset loads evaluation cases from JSON Lines files.
package dataset

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/utils"
	"github.com/agentsleague/prepeval/internal/validation"
	"github.com/bytedance/sonic"
	"github.com/go-viper/mapstructure/v2"
)

const (
	// DefaultSkipLines is the number of leading lines of every case file that
	// hold examples rather than cases.
	DefaultSkipLines = 10

	// DefaultMaxCasesPerAgent caps the cases taken per agent from one file.
	DefaultMaxCasesPerAgent = 10

	maxLineBytes = 4 << 20
)

// ErrNoCases is returned when filtering leaves nothing to evaluate.
var ErrNoCases = errors.New("No dataset cases found to evaluate.")

// LoadOptions selects which records of a case file become cases.
type LoadOptions struct {
	// SkipLines leading lines are ignored in every file.
	SkipLines int
	// MaxCasesPerAgent caps cases per agent within one file. Zero means no cap.
	MaxCasesPerAgent int
	// Agents, when non-empty, keeps only cases for these agents. Names match
	// ignoring letter case.
	Agents []string
}

// DefaultLoadOptions returns the options used by a standard run.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{SkipLines: DefaultSkipLines, MaxCasesPerAgent: DefaultMaxCasesPerAgent}
}

// DefaultFiles returns the per-agent case files under root, in pipeline order.
func DefaultFiles(root string) []string {
	return []string{
		filepath.Join(root, "curator", "learning-path-curator.explain.jsonl"),
		filepath.Join(root, "planner", "study-plan-generator.explain.jsonl"),
		filepath.Join(root, "engagement", "engagement-agent.explain.jsonl"),
		filepath.Join(root, "assessment", "readiness-assessment-agent.explain.jsonl"),
	}
}

// LoadCases reads every file in order. A missing or unreadable file is an
// error; malformed lines are skipped.
func LoadCases(paths []string, opts LoadOptions) ([]models.DatasetCase, error) {
	var all []models.DatasetCase
	for _, path := range paths {
		cases, err := LoadFile(path, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}

// LoadFile reads one case file. The agent filter is applied before the
// per-agent cap, and the cap counts only cases from this file.
func LoadFile(path string, opts LoadOptions) ([]models.DatasetCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	allowed := make(map[string]struct{}, len(opts.Agents))
	for _, a := range opts.Agents {
		allowed[utils.FoldKey(a)] = struct{}{}
	}
	perAgent := map[string]int{}

	var cases []models.DatasetCase
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= opts.SkipLines {
			continue
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		item, err := parseCase(line)
		if err != nil {
			slog.Debug("skipping malformed dataset line", "path", path, "line", lineNo, "error", err)
			continue
		}

		agentKey := utils.FoldKey(item.AgentName)
		if len(allowed) > 0 {
			if _, ok := allowed[agentKey]; !ok {
				continue
			}
		}
		if opts.MaxCasesPerAgent > 0 && perAgent[agentKey] >= opts.MaxCasesPerAgent {
			continue
		}
		perAgent[agentKey]++

		item.SourceFile = path
		cases = append(cases, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return cases, nil
}

// parseCase decodes one record. Field names match ignoring letter case.
func parseCase(line []byte) (models.DatasetCase, error) {
	var doc any
	if err := sonic.ConfigStd.Unmarshal(line, &doc); err != nil {
		return models.DatasetCase{}, err
	}
	if errs := validation.DatasetCase.Validate(doc); len(errs) > 0 {
		return models.DatasetCase{}, fmt.Errorf("schema: %s", strings.Join(errs, "; "))
	}

	var item models.DatasetCase
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &item,
	})
	if err != nil {
		return models.DatasetCase{}, err
	}
	if err := dec.Decode(doc); err != nil {
		return models.DatasetCase{}, err
	}
	return item, nil
}
