// Package docstore implements storage.Adapter over a MongoDB
// collection per table, with snapshot-based pagination: a page's
// continuation cursor is the Mongo document id itself, and the next
// page is found by re-fetching that document and querying around it.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitechdev/specgateway/pkg/audit"
	"github.com/bitechdev/specgateway/pkg/authz"
	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
	"github.com/bitechdev/specgateway/pkg/storage"
)

// Adapter is the MongoDB-backed document/collection StorageAdapter.
type Adapter struct {
	db    *mongo.Database
	audit audit.Writer
	// UserFunc resolves the acting user's identifier for audit records.
	UserFunc func(ctx context.Context) string
}

// New builds a document-collection Adapter over an already-connected
// Mongo database handle.
func New(db *mongo.Database, auditWriter audit.Writer) *Adapter {
	if auditWriter == nil {
		auditWriter = audit.NoopWriter{}
	}
	return &Adapter{db: db, audit: auditWriter}
}

func (a *Adapter) user(ctx context.Context) string {
	if a.UserFunc == nil {
		return ""
	}
	return a.UserFunc(ctx)
}

func objectID(id entity.Key) (primitive.ObjectID, error) {
	s := id.String
	if !id.IsString {
		return primitive.ObjectID{}, common.ErrValidationFailed("document ids must be strings")
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.ObjectID{}, common.ErrValidationFailed("invalid document id %q", s)
	}
	return oid, nil
}

func (a *Adapter) load(ctx context.Context, table string, id entity.Key) (*entity.Entity, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = a.db.Collection(table).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	return docToEntity(doc)
}

func docToEntity(doc bson.M) (*entity.Entity, error) {
	oid, _ := doc["_id"].(primitive.ObjectID)
	delete(doc, "_id")

	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, common.ErrInternal(err)
	}
	return &entity.Entity{Key: entity.KeyFromString(oid.Hex()), Attributes: attrs}, nil
}

func entityToDoc(attrs map[string]interface{}) bson.M {
	doc := bson.M{}
	for k, v := range attrs {
		doc[k] = v
	}
	return doc
}

func projectEntity(resKeys specdoc.ProjectionTree, ent *entity.Entity, tableID string) (map[string]interface{}, error) {
	projected, err := entity.Parse(resKeys, ent, tableID)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(projected, &out); err != nil {
		return nil, common.ErrInternal(err)
	}
	return out, nil
}

// GetSingle fetches, authorizes, and projects one document.
func (a *Adapter) GetSingle(ctx context.Context, table string, id entity.Key, dbKeys, resKeys specdoc.ProjectionTree, tableID string, forced []specdoc.ForcedFilter, principal authz.Principal) (map[string]interface{}, error) {
	ent, err := a.load(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, nil
	}
	if err := authz.Validate(forced, ent, principal); err != nil {
		return nil, err
	}
	return projectEntity(resKeys, ent, tableID)
}

// PutSingle reads-modifies-writes an existing document.
func (a *Adapter) PutSingle(ctx context.Context, table string, id entity.Key, body []byte, dbKeys, resKeys specdoc.ProjectionTree, tableID string, forced []specdoc.ForcedFilter, principal authz.Principal) (map[string]interface{}, error) {
	old, err := a.load(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, nil
	}
	if err := authz.Validate(forced, old, principal); err != nil {
		return nil, err
	}

	oldAttrs := make(map[string]interface{}, len(old.Attributes))
	for k, v := range old.Attributes {
		oldAttrs[k] = v
	}

	update, err := entity.BuildUpdate(dbKeys, body)
	if err != nil {
		return nil, err
	}

	newAttrs := make(map[string]interface{}, len(oldAttrs))
	for k, v := range oldAttrs {
		newAttrs[k] = v
	}
	for k, v := range update {
		newAttrs[k] = v
	}

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	if _, err := a.db.Collection(table).ReplaceOne(ctx, bson.M{"_id": oid}, entityToDoc(newAttrs)); err != nil {
		return nil, common.ErrInternal(err)
	}

	newEnt := &entity.Entity{Key: id, Attributes: newAttrs}
	a.auditDiff(ctx, table, id, oldAttrs, newAttrs)

	return projectEntity(resKeys, newEnt, tableID)
}

// PostSingle inserts a new document, letting Mongo allocate the id.
func (a *Adapter) PostSingle(ctx context.Context, table string, body []byte, dbKeys, resKeys specdoc.ProjectionTree, tableID string) (map[string]interface{}, error) {
	attrs, err := entity.BuildUpdate(dbKeys, body)
	if err != nil {
		return nil, err
	}

	res, err := a.db.Collection(table).InsertOne(ctx, entityToDoc(attrs))
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, common.ErrInternal(nil)
	}

	ent := &entity.Entity{Key: entity.KeyFromString(oid.Hex()), Attributes: attrs}
	a.auditDiff(ctx, table, ent.Key, map[string]interface{}{}, attrs)

	return projectEntity(resKeys, ent, tableID)
}

// GetMultiple fetches every matching document under "results".
func (a *Adapter) GetMultiple(ctx context.Context, table string, dbKeys, resKeys specdoc.ProjectionTree, filters []storage.Query) (map[string]interface{}, error) {
	cur, err := a.db.Collection(table).Find(ctx, filterQuery(filters))
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	defer cur.Close(ctx)

	var results []map[string]interface{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, common.ErrInternal(err)
		}
		ent, err := docToEntity(doc)
		if err != nil {
			return nil, err
		}
		out, err := projectEntity(resKeys, ent, "")
		if err != nil {
			return nil, err
		}
		results = append(results, out)
	}
	if err := cur.Err(); err != nil {
		return nil, common.ErrInternal(err)
	}

	if len(results) == 0 {
		return nil, nil
	}
	return map[string]interface{}{"results": results}, nil
}

// GetMultiplePage fetches a snapshot-paginated page: next starts
// strictly after the cursor document, prev ends at it.
func (a *Adapter) GetMultiplePage(ctx context.Context, req storage.PageRequest) (*storage.Page, error) {
	if _, ok := req.ResKeys["results"]; !ok {
		return nil, common.ErrValidationFailed("response keys for %s are missing a 'results' key", req.Table)
	}

	size := req.Size
	if size <= 0 {
		size = storage.DefaultPageSize
	}

	coll := a.db.Collection(req.Table)
	filter := filterQuery(req.Filters)

	var cursorOID primitive.ObjectID
	hasCursor := req.Cursor != ""
	if hasCursor {
		oid, err := primitive.ObjectIDFromHex(req.Cursor)
		if err != nil {
			return nil, common.ErrBadCursor("cursor is not valid")
		}
		count, err := coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return nil, common.ErrInternal(err)
		}
		if count == 0 {
			return nil, common.ErrBadCursor("cursor is not valid")
		}
		cursorOID = oid
	}

	pageFilter := bson.M{}
	for k, v := range filter {
		pageFilter[k] = v
	}

	sortDir := 1
	switch req.Action {
	case storage.PagePrev:
		sortDir = -1
		if hasCursor {
			pageFilter["_id"] = bson.M{"$lt": cursorOID}
		}
	default:
		if hasCursor {
			pageFilter["_id"] = bson.M{"$gt": cursorOID}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: sortDir}}).SetLimit(int64(size))
	cur, err := coll.Find(ctx, pageFilter, opts)
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	defer cur.Close(ctx)

	var results []map[string]interface{}
	var lastOID primitive.ObjectID
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, common.ErrInternal(err)
		}
		lastOID, _ = doc["_id"].(primitive.ObjectID)
		ent, err := docToEntity(doc)
		if err != nil {
			return nil, err
		}
		out, err := projectEntity(req.ResKeys, ent, "")
		if err != nil {
			return nil, err
		}
		results = append(results, out)
	}
	if err := cur.Err(); err != nil {
		return nil, common.ErrInternal(err)
	}

	var nextPage string
	if len(results) > 0 {
		probeFilter := bson.M{"_id": bson.M{"$gt": lastOID}}
		for k, v := range filter {
			probeFilter[k] = v
		}
		n, err := coll.CountDocuments(ctx, probeFilter, options.Count().SetLimit(1))
		if err != nil {
			return nil, common.ErrInternal(err)
		}
		if n > 0 {
			nextPage = lastOID.Hex()
		}
	}

	return &storage.Page{
		Results:  results,
		Status:   "success",
		PageSize: size,
		NextPage: nextPage,
	}, nil
}

// ProcessAuditLogging is exposed for callers outside the read-modify-write helpers above.
func (a *Adapter) ProcessAuditLogging(ctx context.Context, old, new map[string]interface{}, id entity.Key) {
	a.auditDiff(ctx, "", id, old, new)
}

func (a *Adapter) auditDiff(ctx context.Context, table string, id entity.Key, old, new map[string]interface{}) {
	rec, ok := audit.BuildRecord(table, id.Value(), old, new, a.user(ctx), time.Now())
	if !ok {
		return
	}
	a.audit.Write(ctx, rec)
}

func filterQuery(filters []storage.Query) bson.M {
	q := bson.M{}
	for _, f := range filters {
		op := mongoOperator(f.Comparison)
		if existing, ok := q[f.Field].(bson.M); ok {
			existing[op] = f.Value
			continue
		}
		q[f.Field] = bson.M{op: f.Value}
	}
	return q
}

func mongoOperator(c specdoc.Comparison) string {
	switch c {
	case specdoc.CompEq:
		return "$eq"
	case specdoc.CompNe:
		return "$ne"
	case specdoc.CompLt:
		return "$lt"
	case specdoc.CompLe:
		return "$lte"
	case specdoc.CompGt:
		return "$gt"
	case specdoc.CompGe:
		return "$gte"
	default:
		return "$eq"
	}
}

func reverseResults(s []map[string]interface{}) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

var _ storage.Adapter = (*Adapter)(nil)
