// FILE: ziplog/src/internal/format/line.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
)

// LineFormatter produces one human-readable line per entry: timestamp, level,
// origin, message and the compact data object. Details are never included.
type LineFormatter struct {
	logger *log.Logger
}

// NewLineFormatter creates a line formatter
func NewLineFormatter(logger *log.Logger) *LineFormatter {
	return &LineFormatter{logger: logger}
}

// Format renders the entry as a single line
func (f *LineFormatter) Format(entry core.Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(entry.Time.Format(TimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(strings.ToUpper(entry.Level))
	buf.WriteString(" [")
	buf.WriteString(origin(entry))
	buf.WriteByte(']')

	if entry.Message != "" {
		buf.WriteByte(' ')
		// Keep the record on one line
		buf.WriteString(strings.ReplaceAll(entry.Message, "\n", `\n`))
	}

	if len(entry.Data) > 0 {
		data, err := json.Marshal(entry.Data)
		if err != nil {
			f.logger.Debug("msg", "Data not serializable, using fallback",
				"component", "line_formatter",
				"error", err)
			data = []byte(fmt.Sprintf("%v", entry.Data))
		}
		buf.WriteByte(' ')
		buf.Write(data)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Name returns the formatter name
func (f *LineFormatter) Name() string {
	return NameLine
}

func origin(entry core.Entry) string {
	if entry.App == "" {
		return entry.Subsystem
	}
	return entry.App + "/" + entry.Subsystem
}
