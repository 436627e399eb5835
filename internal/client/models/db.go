// Package models defines the records persisted by the local store and
// replayed against the remote authority.
package models

import (
	"bytes"
	"encoding/json"
)

// RecordType tells which facade owns a StoredItem.
type RecordType string

const (
	RecordTypeAssessment RecordType = "assessment"
	RecordTypeAnalytics  RecordType = "analytics"
	RecordTypeUserData   RecordType = "user_data"
	RecordTypeCache      RecordType = "cache"
)

// StoredItem is the unit of persistence of every collection except the queue.
type StoredItem struct {
	// ID is unique within its collection.
	ID string `json:"id"`

	// Data is the caller's payload. It is never interpreted here.
	Data json.RawMessage `json:"data,omitempty"`

	// Timestamp is the last write time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`

	Type RecordType `json:"type"`

	// Synced flips to true once the remote authority accepted the record.
	// Cache items are born synced.
	Synced bool `json:"synced"`
}

// RecordID returns the primary key.
func (i StoredItem) RecordID() string { return i.ID }

// SameVersion reports whether other carries the same write as i: same id,
// timestamp and payload bytes.
func (i StoredItem) SameVersion(other StoredItem) bool {
	return i.ID == other.ID && i.Timestamp == other.Timestamp && bytes.Equal(i.Data, other.Data)
}
