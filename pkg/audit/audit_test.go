package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiff_CreateReportsEveryField(t *testing.T) {
	changed := Diff(map[string]interface{}{}, map[string]interface{}{"name": "alice", "age": 30})
	assert.Equal(t, map[string]interface{}{"name": "alice", "age": 30}, changed)
}

func TestDiff_OnlyChangedFields(t *testing.T) {
	old := map[string]interface{}{"name": "alice", "age": 30}
	new := map[string]interface{}{"name": "alice", "age": 31}

	changed := Diff(old, new)
	assert.Equal(t, map[string]interface{}{"age": 31}, changed)
}

func TestDiff_NoChangeIsEmpty(t *testing.T) {
	old := map[string]interface{}{"name": "alice"}
	new := map[string]interface{}{"name": "alice"}

	assert.Empty(t, Diff(old, new))
}

func TestBuildRecord_EmptyDiffSkipsWrite(t *testing.T) {
	_, ok := BuildRecord("users", 1, map[string]interface{}{"name": "a"}, map[string]interface{}{"name": "a"}, "u1", time.Now())
	assert.False(t, ok)
}

func TestBuildRecord_NonEmptyDiff(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, ok := BuildRecord("users", 1, map[string]interface{}{"name": "a"}, map[string]interface{}{"name": "b"}, "u1", now)
	assert.True(t, ok)
	assert.Equal(t, map[string]interface{}{"name": "b"}, rec.AttributesChanged)
	assert.Equal(t, "users", rec.TableName)
	assert.Equal(t, 1, rec.TableID)
	assert.Equal(t, "u1", rec.User)
	assert.Equal(t, "2026-01-02T03:04:05Z", rec.Timestamp)
}

func TestNoopWriter_DiscardsSilently(t *testing.T) {
	w := NoopWriter{}
	assert.NotPanics(t, func() {
		w.Write(nil, Record{TableName: "users"})
	})
}
