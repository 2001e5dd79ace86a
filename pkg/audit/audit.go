// Package audit writes AuditRecord entries describing the diff applied
// by a mutation, to an out-of-band audit table/collection configured by
// AUDIT_LOGS_NAME. Writing is synchronous and non-fatal: failures are
// logged and never surfaced to the caller.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/bitechdev/specgateway/pkg/logger"
)

// Record is the audit entry shape: {attributes_changed, table_id,
// table_name, timestamp, user}.
type Record struct {
	AttributesChanged map[string]interface{} `json:"attributes_changed"`
	TableID           interface{}             `json:"table_id"`
	TableName         string                  `json:"table_name"`
	Timestamp         string                  `json:"timestamp"`
	User              string                  `json:"user"`
}

// Writer persists audit records. Write never returns an error to the
// caller; implementations log failures themselves.
type Writer interface {
	Write(ctx context.Context, rec Record)
}

// NoopWriter discards every record. Used when AUDIT_LOGS_NAME is empty.
type NoopWriter struct{}

func (NoopWriter) Write(context.Context, Record) {}

// Diff computes the changed attributes between old and new, keyed by
// field name, value set to the new value. A create (old == nil or
// empty) reports every field in new. An empty diff means "no audit
// record should be written".
func Diff(old, new map[string]interface{}) map[string]interface{} {
	changed := map[string]interface{}{}
	for k, newVal := range new {
		oldVal, existed := old[k]
		if !existed || !valuesEqual(oldVal, newVal) {
			changed[k] = newVal
		}
	}
	return changed
}

func valuesEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// BuildRecord assembles a Record for a diff, or returns (Record{}, false)
// when the diff is empty and nothing should be written.
func BuildRecord(tableName string, tableID interface{}, old, new map[string]interface{}, user string, now time.Time) (Record, bool) {
	changed := Diff(old, new)
	if len(changed) == 0 {
		return Record{}, false
	}
	return Record{
		AttributesChanged: changed,
		TableID:           tableID,
		TableName:         tableName,
		Timestamp:         now.UTC().Format(time.RFC3339),
		User:              user,
	}, true
}

// LogFailure is the shared "never surfaced" failure path every Writer
// implementation funnels through.
func LogFailure(table string, err error) {
	logger.Warn("audit: failed to write record for table %q: %v", table, err)
}
