package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) Node {
	t.Helper()
	n, err := Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

func toolNames(t *testing.T, root Node) []string {
	t.Helper()
	var names []string
	for _, tool := range ExtractInvokedTools(root) {
		names = append(names, tool.Tool)
	}
	return names
}

func TestExtractInvokedTools_ResultsBeforeCalls(t *testing.T) {
	doc := `{
		"messages": [
			{"contents": [{"$type": "functionCall", "callId": "A", "name": "searchPaths", "arguments": {"q": "az-104"}}]},
			{"contents": [
				{"$type": "functionResult", "callId": "B", "result": "modules"},
				{"$type": "functionResult", "callId": "C", "result": {"count": 3}}
			]},
			{"contents": [
				{"$type": "functionCall", "callId": "B", "name": "listModules"},
				{"$type": "functionCall", "callId": "C", "name": "countUnits", "arguments": null}
			]}
		]
	}`

	tools := ExtractInvokedTools(mustParse(t, doc))
	require.Len(t, tools, 3)

	assert.Equal(t, "searchPaths", tools[0].Tool)
	assert.False(t, tools[0].HasOutcome)
	assert.Equal(t, map[string]any{"q": "az-104"}, tools[0].Arguments.(Node).Interface())

	assert.Equal(t, "listModules", tools[1].Tool)
	require.True(t, tools[1].HasOutcome)
	assert.Equal(t, "modules", tools[1].Outcome.(Node).Interface())
	assert.Equal(t, map[string]any{}, tools[1].Arguments.(Node).Interface())

	assert.Equal(t, "countUnits", tools[2].Tool)
	assert.Equal(t, map[string]any{"count": 3.0}, tools[2].Outcome.(Node).Interface())
	assert.Equal(t, map[string]any{}, tools[2].Arguments.(Node).Interface())
}

func TestExtractInvokedTools_OrphanResultDropped(t *testing.T) {
	doc := `[
		{"$type": "functionResult", "callId": "ghost", "result": "nobody asked"},
		{"$type": "functionCall", "callId": "real", "name": "fetchPlan"}
	]`

	assert.Equal(t, []string{"fetchPlan"}, toolNames(t, mustParse(t, doc)))
}

func TestExtractInvokedTools_Idempotent(t *testing.T) {
	doc := `{"a": {"b": [{"$type": "functionCall", "callId": "1", "name": "x", "arguments": {"k": [1, 2]}}]},
		"c": {"$type": "functionResult", "callId": "1", "result": {"ok": true}}}`
	root := mustParse(t, doc)

	first := ExtractInvokedTools(root)
	second := ExtractInvokedTools(root)
	assert.Equal(t, first, second)

	reparsed := ExtractInvokedTools(mustParse(t, doc))
	assert.Equal(t, first, reparsed)
}

func TestExtractInvokedTools_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "primitive root",
			doc:  `"just text"`,
		},
		{
			name: "call without name is ignored",
			doc:  `[{"$type": "functionCall", "callId": "1"}, {"$type": "functionCall", "callId": "2", "name": "ok"}]`,
			want: []string{"ok"},
		},
		{
			name: "call without id is ignored",
			doc:  `[{"$type": "functionCall", "name": "lost"}, {"$type": "functionCall", "callId": " ", "name": "blank"}]`,
		},
		{
			name: "discriminator is case-insensitive",
			doc:  `[{"$type": "FUNCTIONCALL", "callId": "1", "name": "upper"}]`,
			want: []string{"upper"},
		},
		{
			name: "duplicate call id keeps first position and last name",
			doc:  `[{"$type": "functionCall", "callId": "1", "name": "first"}, {"$type": "functionCall", "callId": "2", "name": "second"}, {"$type": "functionCall", "callId": "1", "name": "again"}]`,
			want: []string{"again", "second"},
		},
		{
			name: "call ids compare case-insensitively",
			doc:  `[{"$type": "functionCall", "callId": "Abc", "name": "one"}, {"$type": "functionCall", "callId": "aBC", "name": "two"}]`,
			want: []string{"two"},
		},
		{
			name: "nested call is discovered before its parent",
			doc:  `{"$type": "functionCall", "callId": "outer", "name": "parent", "arguments": {"inner": {"$type": "functionCall", "callId": "inner", "name": "child"}}}`,
			want: []string{"child", "parent"},
		},
		{
			name: "non-string discriminator is not a call",
			doc:  `[{"$type": 7, "callId": "1", "name": "weird"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toolNames(t, mustParse(t, tt.doc)))
		})
	}
}

func TestExtractInvokedTools_ResultMatchedCaseInsensitively(t *testing.T) {
	doc := `[{"$type": "functionCall", "callId": "Call-1", "name": "lookup"}, {"$type": "functionResult", "callId": "call-1", "result": 42}]`

	tools := ExtractInvokedTools(mustParse(t, doc))
	require.Len(t, tools, 1)
	require.True(t, tools[0].HasOutcome)
	assert.Equal(t, 42.0, tools[0].Outcome.(Node).Interface())
}

func TestAvailableTools(t *testing.T) {
	doc := `[
		{"$type": "functionCall", "callId": "1", "name": "Search"},
		{"$type": "functionCall", "callId": "2", "name": "fetch"},
		{"$type": "functionCall", "callId": "3", "name": "search"}
	]`

	assert.Equal(t, []string{"Search", "fetch"}, AvailableTools(ExtractInvokedTools(mustParse(t, doc))))
}
