// FILE: ziplog/src/internal/format/line_test.go
package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormatter_Format(t *testing.T) {
	f := NewLineFormatter(newTestLogger())

	t.Run("Basic", func(t *testing.T) {
		output, err := f.Format(testEntry())
		require.NoError(t, err)
		assert.Equal(t,
			`2023-01-01T12:00:00.000Z ERROR [test-app/general] this is a test {"key":"some data"}`+"\n",
			string(output))
	})

	t.Run("SingleLine", func(t *testing.T) {
		e := testEntry()
		e.Message = "first\nsecond"
		output, err := f.Format(e)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(output), "\n"))
		assert.Contains(t, string(output), `first\nsecond`)
	})

	t.Run("NoMessageNoApp", func(t *testing.T) {
		e := testEntry()
		e.Message = ""
		e.App = ""
		e.Data = nil
		output, err := f.Format(e)
		require.NoError(t, err)
		assert.Equal(t, "2023-01-01T12:00:00.000Z ERROR [general]\n", string(output))
	})
}
