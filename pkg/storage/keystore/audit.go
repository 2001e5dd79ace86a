package keystore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/bitechdev/specgateway/pkg/audit"
	"github.com/bitechdev/specgateway/pkg/common"
)

// AuditWriter appends audit records to the Redis list "audit:<name>",
// where name is the configured audit table name, one JSON entry per record.
type AuditWriter struct {
	client *redis.Client
	list   string
}

// NewAuditWriter builds a Writer that appends to "audit:"+listName. Pass an
// empty listName to get a writer equivalent to audit.NoopWriter.
func NewAuditWriter(client *redis.Client, listName string) audit.Writer {
	if listName == "" {
		return audit.NoopWriter{}
	}
	return &AuditWriter{client: client, list: listName}
}

func (w *AuditWriter) Write(ctx context.Context, rec audit.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		audit.LogFailure(w.list, common.ErrAuditWriteFailed(err))
		return
	}
	if err := w.client.RPush(ctx, auditListKey(w.list), data).Err(); err != nil {
		audit.LogFailure(w.list, common.ErrAuditWriteFailed(err))
	}
}

func auditListKey(list string) string {
	return "audit:" + list
}
