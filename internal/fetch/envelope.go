package fetch

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// envelope is the persisted form of a cache entry
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch millis when stored
}

// entry is a decoded cache entry
type entry[T any] struct {
	value    T
	storedAt time.Time
}

func encodeEntry[T any](value T, storedAt time.Time) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return json.Marshal(envelope{Data: data, Timestamp: storedAt.UnixMilli()})
}

func decodeEntry[T any](raw []byte) (entry[T], error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return entry[T]{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return entry[T]{}, fmt.Errorf("decode envelope: missing data")
	}

	var value T
	if err := json.Unmarshal(env.Data, &value); err != nil {
		return entry[T]{}, fmt.Errorf("decode payload: %w", err)
	}
	return entry[T]{value: value, storedAt: time.UnixMilli(env.Timestamp)}, nil
}
