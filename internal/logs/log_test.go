package logs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChildLogger(t *testing.T) {
	prev := Root()
	defer Init(prev)

	buf := bytes.NewBuffer(nil)
	Init(zerolog.New(buf))

	logger := NewChildLogger("notifier")
	logger.Debug().Str("uri", "file:///a.css").Msg("checked")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "notifier", entry[SOURCE_LOG_FIELD_NAME])
	assert.Equal(t, "file:///a.css", entry["uri"])
	assert.Equal(t, "checked", entry["message"])
}

func TestPrintln(t *testing.T) {
	prev := Root()
	defer Init(prev)

	buf := bytes.NewBuffer(nil)
	Init(zerolog.New(buf))

	Println("session", 3, "closed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session 3 closed", entry["message"])
}
