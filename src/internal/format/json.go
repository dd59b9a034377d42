// FILE: ziplog/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter produces one JSON object per line
type JSONFormatter struct {
	includeDetails bool
	logger         *log.Logger
}

type jsonRecord struct {
	Timestamp string         `json:"timestamp"`
	App       string         `json:"app,omitempty"`
	Subsystem string         `json:"subsystem"`
	Level     string         `json:"level"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewJSONFormatter creates a JSON formatter, optionally carrying the details object.
func NewJSONFormatter(includeDetails bool, logger *log.Logger) *JSONFormatter {
	return &JSONFormatter{
		includeDetails: includeDetails,
		logger:         logger,
	}
}

// Format transforms a single Entry into a JSON line.
func (f *JSONFormatter) Format(entry core.Entry) ([]byte, error) {
	rec := jsonRecord{
		Timestamp: entry.Time.Format(time.RFC3339Nano),
		App:       entry.App,
		Subsystem: entry.Subsystem,
		Level:     entry.Level,
		Message:   entry.Message,
		Data:      entry.Data,
	}
	if f.includeDetails {
		rec.Details = entry.Details
	}

	result, err := json.Marshal(rec)
	if err != nil {
		// Values such as NaN cannot be encoded; keep the record with stringified payloads
		f.logger.Debug("msg", "Entry not serializable, using fallback",
			"component", "json_formatter",
			"error", err)
		rec.Data = stringify(rec.Data)
		rec.Details = stringify(rec.Details)
		if result, err = json.Marshal(rec); err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	if f.includeDetails {
		return NameJSONDetails
	}
	return NameJSON
}

func stringify(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, err := json.Marshal(v); err != nil {
			out[k] = fmt.Sprintf("%v", v)
			continue
		}
		out[k] = v
	}
	return out
}
