// FILE: ziplog/src/internal/format/block.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
)

const blockSeparator = "--------------------------------------------------------------------------------"

// BlockFormatter produces a multi-line block per entry including details.
// String values spanning several lines, such as stack traces, are printed
// verbatim with indentation.
type BlockFormatter struct {
	logger *log.Logger
}

// NewBlockFormatter creates a block formatter
func NewBlockFormatter(logger *log.Logger) *BlockFormatter {
	return &BlockFormatter{logger: logger}
}

// Format renders the entry as a block terminated by a separator line
func (f *BlockFormatter) Format(entry core.Entry) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s %s [%s]\n",
		entry.Time.Format(TimestampLayout),
		strings.ToUpper(entry.Level),
		origin(entry))

	if entry.Message != "" {
		buf.WriteString("message: ")
		buf.WriteString(entry.Message)
		buf.WriteByte('\n')
	}

	if len(entry.Data) > 0 {
		buf.WriteString("data:\n")
		f.writeMap(&buf, entry.Data, "  ")
	}

	if len(entry.Details) > 0 {
		buf.WriteString("details:\n")
		f.writeMap(&buf, entry.Details, "  ")
	}

	buf.WriteString(blockSeparator)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Name returns the formatter name
func (f *BlockFormatter) Name() string {
	return NameBlock
}

func (f *BlockFormatter) writeMap(buf *bytes.Buffer, m map[string]any, indent string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.Contains(v, "\n") {
				fmt.Fprintf(buf, "%s%s:\n", indent, k)
				for _, line := range strings.Split(strings.TrimRight(v, "\n"), "\n") {
					buf.WriteString(indent + "  " + line + "\n")
				}
				continue
			}
			fmt.Fprintf(buf, "%s%s: %s\n", indent, k, v)
		case map[string]any:
			fmt.Fprintf(buf, "%s%s:\n", indent, k)
			f.writeMap(buf, v, indent+"  ")
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				f.logger.Debug("msg", "Value not serializable, using fallback",
					"component", "block_formatter",
					"key", k,
					"error", err)
				encoded = []byte(fmt.Sprintf("%v", v))
			}
			fmt.Fprintf(buf, "%s%s: %s\n", indent, k, encoded)
		}
	}
}
