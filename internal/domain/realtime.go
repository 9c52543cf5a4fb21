package domain

import "encoding/json"

type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent is one row-level notification from the realtime feed. New holds
// the row after insert/update, Old the row before update/delete; the feed may
// send only primary-key columns in Old.
type ChangeEvent struct {
	Table string          `json:"table"`
	Kind  ChangeKind      `json:"type"`
	New   json.RawMessage `json:"record,omitempty"`
	Old   json.RawMessage `json:"old_record,omitempty"`
}
