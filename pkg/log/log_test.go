package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("INFO"), "case-insensitive")
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"), "unknown degrades to info")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	lg.Info().Msg("dropped")
	lg.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestContextHelpersTagInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: DebugLevel, JSONOutput: true, Output: &buf})

	tagged := WithTopic(WithJob(WithWorker(base, "batch-1"), "job-9"), "user.created")
	tagged.Debug().Msg("tagged")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "batch-1", line["worker"])
	assert.Equal(t, "job-9", line["job_id"])
	assert.Equal(t, "user.created", line["topic"])
}
