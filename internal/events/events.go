// Package events carries server-sent notifications to open dashboards.
package events

import (
	"encoding/json"
	"strings"
	"time"
)

// Version of the envelope; bumped when fields change meaning.
const Version = 1

const (
	TypePing                = "ping"
	TypeDatasetReloaded     = "dataset_reloaded"
	TypeDatasetReloadFailed = "dataset_reload_failed"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Reloaded is the payload of TypeDatasetReloaded.
type Reloaded struct {
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ReloadFailed is the payload of TypeDatasetReloadFailed. The page keeps
// serving the previous table.
type ReloadFailed struct {
	Error string `json:"error"`
}

// MakeEvent encodes an envelope. data that cannot be marshalled is dropped.
func MakeEvent(reqID, typ string, data any) string {
	e := Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Frame formats msg as a single SSE "message" frame. Newlines in msg become
// continuation data lines.
func Frame(msg string) string {
	var b strings.Builder
	b.WriteString("event: message\n")
	for _, line := range strings.Split(msg, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}
