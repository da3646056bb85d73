package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no persisted session exists yet.
var ErrNotFound = errors.New("session: not found")

// ErrInvalidState marks a persisted payload that cannot be resumed
// safely. Callers should discard the stored session and start fresh.
var ErrInvalidState = errors.New("session: invalid state")

// Store persists interview session snapshots.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, sess Session) error
	Clear(ctx context.Context) error
}

// Decode parses a persisted session payload and enforces the resume
// validity rules: the payload must be a JSON object, the vision key must
// be present (an empty vision is still valid), and the phase must be one
// of the known stages. Anything else wraps ErrInvalidState so callers can
// discard the payload instead of resuming garbage.
func Decode(data []byte) (Session, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if _, ok := probe["vision"]; !ok {
		return Session{}, fmt.Errorf("%w: missing vision", ErrInvalidState)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if !sess.Phase.Valid() {
		return Session{}, fmt.Errorf("%w: unknown phase %q", ErrInvalidState, sess.Phase)
	}
	return sess, nil
}

// Encode renders the session as the canonical indented JSON document.
func Encode(sess Session) ([]byte, error) {
	encoded, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}
