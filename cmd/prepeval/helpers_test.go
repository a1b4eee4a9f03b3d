package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no endpoint settings in
// the environment, so neither .prepeval.yaml nor .env from the repo leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_DEPLOYMENT", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
	return dir
}

// executeRoot runs the root command with args and returns its combined output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func caseLine(id, agent string, evals ...string) string {
	quoted := make([]string, len(evals))
	for i, e := range evals {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	return fmt.Sprintf(`{"case_id":%q,"scenario_id":"s-%s","agent_name":%q,"question":"Student topics: AZ-900. Weekly hours: 4. Duration: 6 weeks.","required_evals":[%s]}`,
		id, id, agent, strings.Join(quoted, ","))
}

// writeDataset writes a case file with no header lines and returns its path.
func writeDataset(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return p
}
