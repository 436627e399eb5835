package models

import (
	"encoding/json"
	"net/http"
)

// Action is the kind of mutation a QueueItem asks the remote to apply.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Method is the HTTP verb used to deliver the action.
func (a Action) Method() string {
	if a == ActionDelete {
		return http.MethodDelete
	}
	return http.MethodPost
}

// QueueItem is a durable intent to mutate the remote authority.
type QueueItem struct {
	ID       string          `json:"id"`
	Action   Action          `json:"action"`
	Endpoint string          `json:"endpoint"`
	Data     json.RawMessage `json:"data,omitempty"`

	// Timestamp is the enqueue time in milliseconds since epoch.
	Timestamp int64 `json:"timestamp"`

	// Retries counts failed delivery attempts.
	Retries int `json:"retries"`
}

func (q QueueItem) RecordID() string { return q.ID }

// DeadLetter keeps a mutation that exhausted its delivery attempts so it can
// still be inspected after leaving the queue.
type DeadLetter struct {
	QueueItem

	FailedAt  int64  `json:"failed_at"`
	LastError string `json:"last_error,omitempty"`
}
