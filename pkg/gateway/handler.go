// Package gateway implements the generic per-verb dispatch that turns a
// resolved RequestContext and an active storage.Adapter into an HTTP
// response: projection, pagination wrapping, content-type negotiation,
// cursor encryption, and forced-filter authorization all meet here.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/bitechdev/specgateway/pkg/authz"
	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/cursor"
	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/gateway/render"
	"github.com/bitechdev/specgateway/pkg/identity"
	"github.com/bitechdev/specgateway/pkg/logger"
	"github.com/bitechdev/specgateway/pkg/specdoc"
	"github.com/bitechdev/specgateway/pkg/storage"
)

// Handler dispatches generic CRUD requests against the active storage
// adapter, using the resolver to derive a RequestContext per request.
type Handler struct {
	resolver *specdoc.Resolver
	adapter  storage.Adapter
	cursor   *cursor.Codec
	verifier *identity.Verifier
	render   *render.Registry
}

// NewHandler wires the collaborators the generic handler needs.
func NewHandler(resolver *specdoc.Resolver, adapter storage.Adapter, codec *cursor.Codec, verifier *identity.Verifier) *Handler {
	return &Handler{resolver: resolver, adapter: adapter, cursor: codec, verifier: verifier, render: render.NewRegistry()}
}

func (h *Handler) handlePanic(w common.ResponseWriter, method string) {
	if r := recover(); r != nil {
		stack := debug.Stack()
		logger.Error("gateway: panic in %s: %v\n%s", method, r, string(stack))
		writeProblem(w, common.ErrInternal(nil))
	}
}

// Route binds a handler to the specification's URL template for a path
// object, for registration with the router under that same template.
// Route resolution needs the *declared* template (which may still
// contain path-parameter placeholders), not the literal incoming URL,
// so each specification path is registered under its own route.
func (h *Handler) Route(urlTemplate string) common.HTTPHandlerFunc {
	return func(w common.ResponseWriter, r common.Request) {
		h.handle(urlTemplate, w, r)
	}
}

// handle dispatches on HTTP method, resolving a RequestContext fresh
// for every call (the resolver itself caches the derived structures).
func (h *Handler) handle(urlTemplate string, w common.ResponseWriter, r common.Request) {
	defer h.handlePanic(w, "Handle")

	ctx := context.Background()
	principal, err := h.verifier.Verify(ctx, r.Header("Authorization"))
	if err != nil {
		writeProblem(w, err)
		return
	}

	contentType := negotiatedContentType(r)
	rc, err := h.resolver.Resolve(r.Method(), urlTemplate, nil, contentType)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if !rc.Complete() {
		writeProblem(w, common.ErrRouteUnknown("no route matches %s %s", r.Method(), urlTemplate))
		return
	}

	switch r.Method() {
	case http.MethodGet:
		if r.QueryParam(specdoc.ParamPageCursor) != "" || r.QueryParam(specdoc.ParamPageSize) != "" || r.QueryParam(specdoc.ParamPageAction) != "" {
			h.getMultiplePage(ctx, w, r, rc, principal)
			return
		}
		if rc.RequestID != "" && r.PathParam(rc.RequestID) != "" {
			h.getSingle(ctx, w, r, rc, principal)
			return
		}
		h.getMultiple(ctx, w, r, rc)
	case http.MethodPost:
		h.postSingle(ctx, w, r, rc)
	case http.MethodPut, http.MethodPatch:
		h.putSingle(ctx, w, r, rc, principal)
	default:
		writeProblem(w, common.ErrRouteUnknown("unsupported method %s", r.Method()))
	}
}

func negotiatedContentType(r common.Request) string {
	accept := r.Header("Accept")
	switch {
	case strings.Contains(accept, "text/csv"):
		return "text/csv"
	case accept == "" || strings.Contains(accept, "*/*") || strings.Contains(accept, "application/json"):
		return "application/json"
	default:
		return accept
	}
}

func (h *Handler) getSingle(ctx context.Context, w common.ResponseWriter, r common.Request, rc *specdoc.RequestContext, principal authz.Principal) {
	idStr := r.PathParam(rc.RequestID)
	if idStr == "" {
		writeProblem(w, common.ErrValidationFailed("path parameter %q is required", rc.RequestID))
		return
	}

	result, err := h.adapter.GetSingle(ctx, rc.TableName, parseKey(idStr), rc.DBKeys, rc.ResponseKeys, rc.TableID, rc.ForcedFilters, principal)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if result == nil {
		writeProblem(w, common.ErrNotFound("%s %s not found", rc.TableName, idStr))
		return
	}
	h.writeFormatted(w, result, rc.ContentType, http.StatusOK)
}

func (h *Handler) postSingle(ctx context.Context, w common.ResponseWriter, r common.Request, rc *specdoc.RequestContext) {
	body, err := r.Body()
	if err != nil {
		writeProblem(w, common.ErrValidationFailed("failed to read request body: %v", err))
		return
	}

	result, err := h.adapter.PostSingle(ctx, rc.TableName, body, rc.DBKeys, rc.ResponseKeys, rc.TableID)
	if err != nil {
		writeProblem(w, err)
		return
	}
	h.writeFormatted(w, result, rc.ContentType, http.StatusCreated)
}

func (h *Handler) putSingle(ctx context.Context, w common.ResponseWriter, r common.Request, rc *specdoc.RequestContext, principal authz.Principal) {
	idStr := r.PathParam(rc.RequestID)
	if idStr == "" {
		writeProblem(w, common.ErrValidationFailed("path parameter %q is required", rc.RequestID))
		return
	}
	body, err := r.Body()
	if err != nil {
		writeProblem(w, common.ErrValidationFailed("failed to read request body: %v", err))
		return
	}

	result, err := h.adapter.PutSingle(ctx, rc.TableName, parseKey(idStr), body, rc.DBKeys, rc.ResponseKeys, rc.TableID, rc.ForcedFilters, principal)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if result == nil {
		writeProblem(w, common.ErrNotFound("%s %s not found", rc.TableName, idStr))
		return
	}
	h.writeFormatted(w, result, rc.ContentType, http.StatusCreated)
}

func (h *Handler) getMultiple(ctx context.Context, w common.ResponseWriter, r common.Request, rc *specdoc.RequestContext) {
	filters, err := buildQueries(r, rc, authz.Principal{})
	if err != nil {
		writeProblem(w, err)
		return
	}

	result, err := h.adapter.GetMultiple(ctx, rc.TableName, rc.DBKeys, rc.ResponseKeys, filters)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeFormatted(w, result, rc.ContentType, http.StatusOK)
}

func (h *Handler) getMultiplePage(ctx context.Context, w common.ResponseWriter, r common.Request, rc *specdoc.RequestContext, principal authz.Principal) {
	rawCursor := r.PathParam("cursor")
	if rawCursor == "" {
		rawCursor = r.QueryParam(specdoc.ParamPageCursor)
	}

	decoded, absent := h.cursor.Decode(ctx, rawCursor)
	var cursorValue string
	if !absent {
		cursorValue = string(decoded)
	}

	size := storage.DefaultPageSize
	if raw := r.QueryParam(specdoc.ParamPageSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeProblem(w, common.ErrValidationFailed("page_size must be a positive integer"))
			return
		}
		size = n
	}

	action := storage.PageAction(r.QueryParam(specdoc.ParamPageAction))
	if action == "" {
		action = storage.PageNext
	}
	if action != storage.PageNext && action != storage.PagePrev {
		writeProblem(w, common.ErrValidationFailed("page_action must be 'next' or 'prev'"))
		return
	}

	filters, err := buildQueries(r, rc, principal)
	if err != nil {
		writeProblem(w, err)
		return
	}

	page, err := h.adapter.GetMultiplePage(ctx, storage.PageRequest{
		Table:   rc.TableName,
		Keys:    rc.DBKeys,
		ResKeys: rc.ResponseKeys,
		Filters: filters,
		Cursor:  cursorValue,
		Size:    size,
		Action:  action,
	})
	if err != nil {
		writeProblem(w, err)
		return
	}

	body := map[string]interface{}{
		"results":   page.Results,
		"status":    page.Status,
		"page_size": page.PageSize,
	}

	if page.NextPage != "" {
		encoded := h.cursor.Encode(ctx, []byte(page.NextPage))
		body["next_page"] = pageURL(r, encoded, size, storage.PageNext)
	}
	if cursorValue != "" {
		reEncoded := h.cursor.Encode(ctx, []byte(cursorValue))
		body["prev_page"] = pageURL(r, reEncoded, size, storage.PagePrev)
	}

	if len(page.Results) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeFormatted(w, body, rc.ContentType, http.StatusOK)
}

// pageURL builds "<base-without-query>/pages/<cursor>?page_size=N&page_action=A",
// appending "/pages" to the rule first when it does not already end in it.
func pageURL(r common.Request, encodedCursor string, size int, action storage.PageAction) string {
	base := r.URL()
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasSuffix(base, "/pages") {
		base += "/pages"
	}
	return base + "/" + encodedCursor + "?page_size=" + strconv.Itoa(size) + "&page_action=" + string(action)
}

func buildQueries(r common.Request, rc *specdoc.RequestContext, principal authz.Principal) ([]storage.Query, error) {
	var queries []storage.Query

	for _, f := range rc.QueryFilters {
		raw := r.QueryParam(f.Name)
		if raw == "" {
			if f.Required {
				return nil, common.ErrValidationFailed("query parameter %q is required", f.Name)
			}
			continue
		}
		value, err := specdoc.CoerceFilterValue(f.Schema, f.Name, raw)
		if err != nil {
			return nil, err
		}
		queries = append(queries, storage.Query{Field: f.Field, Comparison: f.Comparison, Value: value})
	}

	for _, f := range rc.ForcedFilters {
		queries = append(queries, storage.Query{
			Field:      f.Field,
			Comparison: f.Comparison,
			Value:      authz.ResolveValue(f, principal),
		})
	}

	return queries, nil
}

func parseKey(raw string) entity.Key {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return entity.KeyFromInt(n)
	}
	return entity.KeyFromString(raw)
}

func (h *Handler) writeFormatted(w common.ResponseWriter, data interface{}, contentType string, status int) {
	formatter, err := h.render.Negotiate(contentType)
	if err != nil {
		writeProblem(w, err)
		return
	}
	out, err := formatter.Format(data)
	if err != nil {
		writeProblem(w, err)
		return
	}
	w.SetHeader("Content-Type", formatter.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		logger.Error("gateway: failed to write response: %v", err)
	}
}

func writeProblem(w common.ResponseWriter, err error) {
	problem := common.ToProblem(err)
	w.SetHeader("Content-Type", "application/json")
	w.WriteHeader(problem.Status)
	if encErr := json.NewEncoder(w.UnderlyingResponseWriter()).Encode(problem); encErr != nil {
		logger.Error("gateway: failed to write problem response: %v", encErr)
	}
}
