package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabCommand(t *testing.T) {
	out, err := execute(t, "vocab")
	require.NoError(t, err)
	assert.Contains(t, out, "exists")
	assert.Contains(t, out, "25000")
	assert.Contains(t, out, "solves")
}

func TestVocabCommand_JSON(t *testing.T) {
	out, err := execute(t, "vocab", "--format", "json")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, entries, 32)
}
