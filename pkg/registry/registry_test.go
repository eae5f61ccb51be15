package registry

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoRegistryPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs", "activity-registry.json")
}

func TestLoadRegistry_ShippedFileIsValid(t *testing.T) {
	reg, err := LoadRegistry(repoRegistryPath(t))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{"compute-waitlist-ranking", "calculate-priority-score", "lookup-waitlist-position"} {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, activity.ErrorCodes)
	}
}

func TestValidate_ReportsProblems(t *testing.T) {
	reg, err := Parse([]byte(`{
		"version": "1.0.0",
		"activities": [
			{"id": "a", "taskType": "t1", "inputSchema": {"type": "object"}},
			{"id": "a", "taskType": "t1", "inputSchema": {"type": "object"}},
			{"id": "b", "taskType": "", "inputSchema": {"type": "object"}},
			{"id": "c", "taskType": "t3"},
			{"id": "d", "taskType": "t4", "inputSchema": {"type": 12}}
		]
	}`))
	require.NoError(t, err)

	err = reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate activity id: a")
	assert.Contains(t, err.Error(), "duplicate taskType: t1")
	assert.Contains(t, err.Error(), "activity b: missing taskType")
	assert.Contains(t, err.Error(), "activity c: missing inputSchema")
	assert.Contains(t, err.Error(), "activity d: invalid inputSchema")
}

func TestValidate_Empty(t *testing.T) {
	reg, err := Parse([]byte(`{"activities": []}`))
	require.NoError(t, err)
	assert.EqualError(t, reg.Validate(), "registry contains no activities")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestFind_Missing(t *testing.T) {
	reg := &ActivityRegistry{}
	_, ok := reg.Find("nope")
	assert.False(t, ok)
}
