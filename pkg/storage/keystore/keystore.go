// Package keystore implements storage.Adapter over Redis: each entity
// is a hash keyed "<table>:entity:<id>", with membership tracked in a
// per-table sorted set ("<table>:index") scored by an auto-incrementing
// sequence so cursor pagination can walk forward/backward natively via
// ZRANGEBYSCORE/ZREVRANGEBYSCORE.
package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bitechdev/specgateway/pkg/audit"
	"github.com/bitechdev/specgateway/pkg/authz"
	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
	"github.com/bitechdev/specgateway/pkg/storage"
)

// Adapter is the Redis-backed key/kind StorageAdapter.
type Adapter struct {
	client *redis.Client
	audit  audit.Writer
	// UserFunc resolves the acting user's identifier for audit records.
	// Defaults to returning "" when nil.
	UserFunc func(ctx context.Context) string
}

// New builds a key/kind Adapter over an already-connected Redis client.
func New(client *redis.Client, auditWriter audit.Writer) *Adapter {
	if auditWriter == nil {
		auditWriter = audit.NoopWriter{}
	}
	return &Adapter{client: client, audit: auditWriter}
}

func (a *Adapter) user(ctx context.Context) string {
	if a.UserFunc == nil {
		return ""
	}
	return a.UserFunc(ctx)
}

func entityKey(table, id string) string  { return fmt.Sprintf("%s:entity:%s", table, id) }
func indexKey(table string) string       { return fmt.Sprintf("%s:index", table) }
func seqKey(table string) string         { return fmt.Sprintf("%s:seq", table) }
func idString(k entity.Key) string {
	if k.IsString {
		return k.String
	}
	return strconv.FormatInt(k.Int, 10)
}

func (a *Adapter) load(ctx context.Context, table string, id entity.Key) (*entity.Entity, error) {
	raw, err := a.client.HGetAll(ctx, entityKey(table, idString(id))).Result()
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	attrs := make(map[string]interface{}, len(raw))
	for field, val := range raw {
		var decoded interface{}
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			decoded = val
		}
		attrs[field] = decoded
	}
	return &entity.Entity{Key: id, Attributes: attrs}, nil
}

func (a *Adapter) store(ctx context.Context, table string, ent *entity.Entity) error {
	fields := make(map[string]interface{}, len(ent.Attributes))
	for k, v := range ent.Attributes {
		data, err := json.Marshal(v)
		if err != nil {
			return common.ErrInternal(err)
		}
		fields[k] = data
	}
	if len(fields) == 0 {
		return nil
	}
	return a.client.HSet(ctx, entityKey(table, idString(ent.Key)), fields).Err()
}

// GetSingle fetches, authorizes, and projects one entity.
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

// PutSingle reads-modifies-writes an existing entity (last writer wins;
// no optimistic concurrency), auditing the diff when non-empty.
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

	newEnt := &entity.Entity{Key: id, Attributes: oldAttrs}
	for k, v := range update {
		newEnt.Attributes[k] = v
	}

	if err := a.store(ctx, table, newEnt); err != nil {
		return nil, err
	}

	a.auditDiff(ctx, table, id, old.Attributes, newEnt.Attributes)

	projected, err := entity.Parse(resKeys, newEnt, tableID)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(projected, &out); err != nil {
		return nil, common.ErrInternal(err)
	}
	return out, nil
}

// PostSingle allocates a fresh key, creates the entity, and audits the
// creation with an empty "old" side.
func (a *Adapter) PostSingle(ctx context.Context, table string, body []byte, dbKeys, resKeys specdoc.ProjectionTree, tableID string) (map[string]interface{}, error) {
	attrs, err := entity.BuildUpdate(dbKeys, body)
	if err != nil {
		return nil, err
	}

	seq, err := a.client.Incr(ctx, seqKey(table)).Result()
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	id := entity.KeyFromInt(seq)

	ent := &entity.Entity{Key: id, Attributes: attrs}
	if err := a.store(ctx, table, ent); err != nil {
		return nil, err
	}
	if err := a.client.ZAdd(ctx, indexKey(table), redis.Z{Score: float64(seq), Member: idString(id)}).Err(); err != nil {
		return nil, common.ErrInternal(err)
	}

	a.auditDiff(ctx, table, id, map[string]interface{}{}, ent.Attributes)

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

// GetMultiple fetches every member of the table's index, applies
// filters, and projects the surviving set under "results".
func (a *Adapter) GetMultiple(ctx context.Context, table string, dbKeys, resKeys specdoc.ProjectionTree, filters []storage.Query) (map[string]interface{}, error) {
	members, err := a.client.ZRevRange(ctx, indexKey(table), 0, -1).Result()
	if err != nil {
		return nil, common.ErrInternal(err)
	}

	results := make([]map[string]interface{}, 0, len(members))
	for _, member := range members {
		ent, err := a.load(ctx, table, entity.KeyFromString(member))
		if err != nil {
			return nil, err
		}
		if ent == nil || !matchesFilters(ent, filters) {
			continue
		}
		projected, err := entity.Parse(resKeys, ent, "")
		if err != nil {
			return nil, err
		}
		var out map[string]interface{}
		if err := json.Unmarshal(projected, &out); err != nil {
			return nil, common.ErrInternal(err)
		}
		results = append(results, out)
	}

	if len(results) == 0 {
		return nil, nil
	}
	return map[string]interface{}{"results": results}, nil
}

// GetMultiplePage fetches one page ordered by the index sorted set:
// descending for "next", ascending for "prev".
func (a *Adapter) GetMultiplePage(ctx context.Context, req storage.PageRequest) (*storage.Page, error) {
	if _, ok := req.ResKeys["results"]; !ok {
		return nil, common.ErrValidationFailed("response keys for %s are missing a 'results' key", req.Table)
	}

	size := req.Size
	if size <= 0 {
		size = storage.DefaultPageSize
	}

	var cursorScore float64
	hasCursor := req.Cursor != ""
	if hasCursor {
		score, err := a.client.ZScore(ctx, indexKey(req.Table), req.Cursor).Result()
		if err != nil {
			return nil, common.ErrBadCursor("cursor is not valid")
		}
		cursorScore = score
	}

	var members []string
	var err error
	switch req.Action {
	case storage.PagePrev:
		if hasCursor {
			members, err = a.client.ZRangeByScore(ctx, indexKey(req.Table), &redis.ZRangeBy{
				Min: "(" + formatScore(cursorScore), Max: "+inf",
			}).Result()
		} else {
			members, err = a.client.ZRange(ctx, indexKey(req.Table), 0, -1).Result()
		}
	default: // storage.PageNext and unset
		if hasCursor {
			members, err = a.client.ZRevRangeByScore(ctx, indexKey(req.Table), &redis.ZRangeBy{
				Max: "(" + formatScore(cursorScore), Min: "-inf",
			}).Result()
		} else {
			members, err = a.client.ZRevRange(ctx, indexKey(req.Table), 0, -1).Result()
		}
	}
	if err != nil {
		return nil, common.ErrInternal(err)
	}

	var nextPage string
	if len(members) > size {
		nextPage = members[size-1]
		members = members[:size]
	}

	if req.Action == storage.PagePrev {
		// Re-sort the returned page descending by primary key and retain
		// the input cursor as the continuation token, per the paging
		// contract for the "prev" direction.
		reverse(members)
		nextPage = req.Cursor
	}

	results := make([]map[string]interface{}, 0, len(members))
	for _, member := range members {
		ent, err := a.load(ctx, req.Table, entity.KeyFromString(member))
		if err != nil {
			return nil, err
		}
		if ent == nil || !matchesFilters(ent, req.Filters) {
			continue
		}
		projected, err := entity.Parse(req.ResKeys, ent, "")
		if err != nil {
			return nil, err
		}
		var out map[string]interface{}
		if err := json.Unmarshal(projected, &out); err != nil {
			return nil, common.ErrInternal(err)
		}
		results = append(results, out)
	}

	return &storage.Page{
		Results:  results,
		Status:   "success",
		PageSize: size,
		NextPage: nextPage,
	}, nil
}

// ProcessAuditLogging is exposed directly for callers that already hold
// a before/after pair outside the read-modify-write helpers above.
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

func matchesFilters(ent *entity.Entity, filters []storage.Query) bool {
	for _, f := range filters {
		if !matchesFilter(ent.Attributes[f.Field], f) {
			return false
		}
	}
	return true
}

func matchesFilter(actual interface{}, f storage.Query) bool {
	cmp, ok := compareValues(actual, f.Value)
	if !ok {
		return false
	}
	switch f.Comparison {
	case specdoc.CompEq:
		return cmp == 0
	case specdoc.CompNe:
		return cmp != 0
	case specdoc.CompLt:
		return cmp < 0
	case specdoc.CompLe:
		return cmp <= 0
	case specdoc.CompGt:
		return cmp > 0
	case specdoc.CompGe:
		return cmp >= 0
	default:
		return false
	}
}

// compareValues returns (-1|0|1, true) when actual and want are
// comparable, else (0, false).
func compareValues(actual, want interface{}) (int, bool) {
	af, aok := toFloat(actual)
	wf, wok := toFloat(want)
	if aok && wok {
		switch {
		case af < wf:
			return -1, true
		case af > wf:
			return 1, true
		default:
			return 0, true
		}
	}

	as := fmt.Sprintf("%v", actual)
	ws := fmt.Sprintf("%v", want)
	switch {
	case as < ws:
		return -1, true
	case as > ws:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

var _ storage.Adapter = (*Adapter)(nil)
