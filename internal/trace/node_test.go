package trace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsMemberOrder(t *testing.T) {
	n, err := Parse([]byte(`{"z": 1, "a": [true, null, "s"], "m": {"y": 2.5, "b": -1}}`))
	require.NoError(t, err)
	require.Equal(t, KindObject, n.Kind())

	var keys []string
	for _, m := range n.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":[true,null,"s"],"m":{"y":2.5,"b":-1}}`, string(out))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`{"a": `))
	require.Error(t, err)

	_, err = Parse([]byte(`{} {}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing data")
}

func TestFromValue(t *testing.T) {
	n, err := FromValue(map[string]any{"$type": "functionCall", "callId": "1", "name": "go"})
	require.NoError(t, err)

	v, ok := n.Get("name")
	require.True(t, ok)
	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, "go", s)

	same, err := FromValue(n)
	require.NoError(t, err)
	assert.Equal(t, n, same)
}

func TestWalk_VisitsObjectsAfterChildren(t *testing.T) {
	n, err := Parse([]byte(`{"id": "root", "kids": [{"id": "a", "kid": {"id": "a1"}}, {"id": "b"}]}`))
	require.NoError(t, err)

	var seen []string
	Walk(n, func(obj Node) {
		seen = append(seen, memberString(obj, "id"))
	})
	assert.Equal(t, []string{"a1", "a", "b", "root"}, seen)
}
