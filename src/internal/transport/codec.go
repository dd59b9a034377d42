// FILE: ziplog/src/internal/transport/codec.go
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zipscene/ziplog/src/internal/core"
)

// EncodeEntry renders one wire line: the JSON entry followed by a newline.
// Entries longer than core.MaxLineLength are rejected, the server would drop
// the connection on them.
func EncodeEntry(entry core.Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: entry is not serializable: %w", core.ErrInvalidArgument, err)
	}
	if len(data) > core.MaxLineLength {
		return nil, fmt.Errorf("%w: encoded entry is %d bytes, limit is %d",
			core.ErrInvalidArgument, len(data), core.MaxLineLength)
	}
	return append(data, '\n'), nil
}

// DecodeEntry parses one wire line. Anything but a JSON object is an ErrParse.
func DecodeEntry(line []byte) (core.Entry, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return core.Entry{}, fmt.Errorf("%w: not a JSON object", core.ErrParse)
	}

	var entry core.Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	return entry, nil
}
