// FILE: ziplog/src/internal/transport/codec_test.go
package transport

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEntry(t *testing.T) {
	entry := core.Entry{
		Time:      time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
		App:       "test-app",
		Subsystem: "billing",
		Level:     "warn",
		Message:   "Disk low",
		Data:      map[string]any{"freeMB": 12.0},
		KeepDays:  core.KeepDays{"main": 0},
	}

	line, err := EncodeEntry(entry)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(line, []byte("\n")))
	assert.Equal(t, 1, bytes.Count(line, []byte("\n")))
	assert.Contains(t, string(line), `"keepDays":{"main":0}`)

	decoded, err := DecodeEntry(line)
	require.NoError(t, err)
	assert.True(t, entry.Time.Equal(decoded.Time))
	decoded.Time = entry.Time
	assert.Equal(t, entry, decoded)
}

func TestEncodeEntry_Unserializable(t *testing.T) {
	_, err := EncodeEntry(core.Entry{Data: map[string]any{"ratio": math.NaN()}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestEncodeEntry_TooLong(t *testing.T) {
	_, err := EncodeEntry(core.Entry{Message: strings.Repeat("x", core.MaxLineLength)})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	line, err := EncodeEntry(core.Entry{Message: strings.Repeat("x", core.MaxLineLength/2)})
	require.NoError(t, err)
	assert.Less(t, len(line), core.MaxLineLength)
}

func TestDecodeEntry_Malformed(t *testing.T) {
	for _, line := range []string{"", "garbage", "[1,2]", `{"level":`, `{"timestamp":"yesterday"}`} {
		_, err := DecodeEntry([]byte(line))
		assert.ErrorIs(t, err, core.ErrParse, "line %q", line)
	}
}
