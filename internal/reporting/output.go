package reporting

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/klauspost/compress/gzip"
)

// DefaultReportPath is the timestamped report location under root.
func DefaultReportPath(root string, now time.Time) string {
	return filepath.Join(root, "reports", fmt.Sprintf("eval-report-%s.json", now.UTC().Format("20060102-150405")))
}

// MarshalReport renders the report as indented JSON.
func MarshalReport(report *models.EvalRunReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

// WriteReport writes the report to path, creating parent directories. Paths
// ending in .gz are gzip-compressed.
func WriteReport(path string, report *models.EvalRunReport) error {
	data, err := MarshalReport(report)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		if data, err = gzipBytes(data); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteReport, compressed or not.
func ReadReport(path string) (*models.EvalRunReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close() //nolint:errcheck

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, _ := br.Peek(2); bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip report: %w", err)
		}
		defer zr.Close() //nolint:errcheck
		r = zr
	}

	var report models.EvalRunReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return &report, nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing report: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing report: %w", err)
	}
	return buf.Bytes(), nil
}
