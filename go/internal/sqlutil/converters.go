package sqlutil

import (
	"encoding/json"
	"fmt"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go values and nullable JSONB columns

// ToNullJSON marshals v into a pqtype.NullRawMessage. A nil v is stored as NULL.
func ToNullJSON[T any](v *T) (pqtype.NullRawMessage, error) {
	if v == nil {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// FromNullJSON unmarshals a nullable JSONB column. NULL yields nil.
func FromNullJSON[T any](val pqtype.NullRawMessage) (*T, error) {
	if !val.Valid {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(val.RawMessage, out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return out, nil
}
