package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidPayload = errors.New("payload is not valid JSON")

// Payload turns a caller value into the raw JSON kept in Data. Raw JSON and
// byte slices are validated and kept as they are, empty ones mean no payload;
// anything else is marshaled.
func Payload(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return validRaw(p)
	case []byte:
		return validRaw(p)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return b, nil
	}
}

func validRaw(b []byte) (json.RawMessage, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if !json.Valid(b) {
		return nil, ErrInvalidPayload
	}
	return json.RawMessage(b), nil
}

// PayloadID returns the "id" field of a JSON object payload, if any.
// Numeric ids are kept in their JSON spelling, so {"id":42} yields "42".
func PayloadID(raw json.RawMessage) string {
	var doc struct {
		ID any `json:"id"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return ""
	}
	switch id := doc.ID.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	}
	return ""
}
