package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure,
		GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "inner"))))
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := WrapExitError(ExitFailure, "swarm run failed", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "swarm run failed")
	assert.Contains(t, err.Error(), "socket closed")
}

func TestOutputFormatter_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]int{"agents": 10}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	// Printf must not corrupt the JSON stream.
	f.Printf("stray text\n")
	assert.NotContains(t, buf.String(), "stray")
}

func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("ignored in text mode"))
	f.Printf("synced %d/%d\n", 9, 10)
	assert.Equal(t, "synced 9/10\n", buf.String())
}
