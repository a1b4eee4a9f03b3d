package main

import (
	"path/filepath"
	"testing"

	"github.com/agentsleague/prepeval/internal/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommands(t *testing.T) {
	dir := isolate(t)
	logDir := filepath.Join(dir, "logs")
	path := filepath.Join(logDir, "20250615T120000Z-run.jsonl")

	logger, err := runlog.NewJSONLogger(path, "run-42")
	require.NoError(t, err)
	require.NoError(t, logger.Log(runlog.NewEvent(runlog.EventRunStart, runlog.RunStartData("gpt-4o", "gpt-4o", 1))))
	require.NoError(t, logger.Log(runlog.NewEvent(runlog.EventRunComplete, runlog.RunCompleteData(1, 1, 0, false, 1500))))
	require.NoError(t, logger.Close())

	out, err := executeRoot(t, "log", "list", "--dir", logDir)
	require.NoError(t, err)
	assert.Contains(t, out, "20250615T120000Z-run.jsonl")

	out, err = executeRoot(t, "log", "view", path)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN TIMELINE")
	assert.Contains(t, out, "run-42")
}

func TestLogList_Empty(t *testing.T) {
	dir := isolate(t)

	out, err := executeRoot(t, "log", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No run logs found.")
}

func TestCacheClear(t *testing.T) {
	dir := isolate(t)

	out, err := executeRoot(t, "cache", "clear", "--cache-dir", filepath.Join(dir, "missing-cache"))
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared:")
}
