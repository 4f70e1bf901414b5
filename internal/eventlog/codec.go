package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormatVersion is the version written into serialized logs.
const FormatVersion = 1

type envelope struct {
	Version int     `json:"v"`
	Events  []Event `json:"events"`
}

// Serialize encodes the log as a compact JSON string suitable for a key-value
// store or the clipboard.
func (l *Log) Serialize() (string, error) {
	data, err := json.Marshal(envelope{Version: FormatVersion, Events: l.events})
	if err != nil {
		return "", fmt.Errorf("eventlog: serialize: %w", err)
	}
	return string(data), nil
}

// Deserialize decodes a blob produced by Serialize. It returns a
// *MalformedLogError when the blob is not a valid replayable log.
func Deserialize(blob string) (*Log, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimSpace([]byte(blob))))
	dec.DisallowUnknownFields()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, &MalformedLogError{Reason: "not a serialized event log", Index: -1, Err: err}
	}
	if dec.More() {
		return nil, malformed(-1, "trailing data after log")
	}
	if env.Version != FormatVersion {
		return nil, malformed(-1, "unsupported format version %d (expected %d)", env.Version, FormatVersion)
	}

	l := &Log{events: env.Events}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
