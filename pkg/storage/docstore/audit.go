package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bitechdev/specgateway/pkg/audit"
	"github.com/bitechdev/specgateway/pkg/common"
)

// AuditWriter inserts audit records into a configured Mongo collection.
type AuditWriter struct {
	collection *mongo.Collection
}

// NewAuditWriter builds a Writer over db.collectionName. Pass an empty
// collectionName to get a writer equivalent to audit.NoopWriter.
func NewAuditWriter(db *mongo.Database, collectionName string) audit.Writer {
	if collectionName == "" {
		return audit.NoopWriter{}
	}
	return &AuditWriter{collection: db.Collection(collectionName)}
}

func (w *AuditWriter) Write(ctx context.Context, rec audit.Record) {
	if _, err := w.collection.InsertOne(ctx, rec); err != nil {
		audit.LogFailure(w.collection.Name(), common.ErrAuditWriteFailed(err))
	}
}
