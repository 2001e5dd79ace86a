package specdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerceFilterValue_Integer(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "integer"}, "age", "42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = CoerceFilterValue(Node{"type": "integer"}, "age", "not-a-number")
	assert.Error(t, err)
}

func TestCoerceFilterValue_Number(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "number"}, "score", "3.14")
	assert.NoError(t, err)
	assert.Equal(t, 3.14, v)
}

func TestCoerceFilterValue_Boolean(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "boolean"}, "active", "true")
	assert.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = CoerceFilterValue(Node{"type": "boolean"}, "active", "maybe")
	assert.Error(t, err)
}

func TestCoerceFilterValue_DateTime(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "string", "format": "date-time"}, "created_at", "2026-01-02T03:04:05Z")
	assert.NoError(t, err)
	ts, ok := v.(time.Time)
	assert.True(t, ok)
	assert.Equal(t, 2026, ts.Year())

	_, err = CoerceFilterValue(Node{"type": "string", "format": "date-time"}, "created_at", "not-a-date")
	assert.Error(t, err)
}

func TestCoerceFilterValue_Date(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "string", "format": "date"}, "day", "2026-07-31")
	assert.NoError(t, err)
	ts, ok := v.(time.Time)
	assert.True(t, ok)
	assert.Equal(t, time.Month(7), ts.Month())
}

func TestCoerceFilterValue_PlainStringPassesThrough(t *testing.T) {
	v, err := CoerceFilterValue(Node{"type": "string"}, "name", "alice")
	assert.NoError(t, err)
	assert.Equal(t, "alice", v)
}

func TestCoerceFilterValue_UnknownTypePassesThrough(t *testing.T) {
	v, err := CoerceFilterValue(Node{}, "anything", "raw-value")
	assert.NoError(t, err)
	assert.Equal(t, "raw-value", v)
}
