// Package render negotiates and formats generic handler responses for
// the content types the specification document advertises. JSON is a
// passthrough; CSV is the one non-JSON format shipped, via the
// standard library (no CSV/XLSX/PDF library exists anywhere in the
// reference corpus, so this one ambient concern has no third-party
// home — see DESIGN.md).
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bitechdev/specgateway/pkg/common"
)

// Formatter renders a response payload for one content type.
type Formatter interface {
	ContentType() string
	Format(data interface{}) ([]byte, error)
}

// JSONFormatter passes the payload straight through as JSON; the
// generic handler already produces JSON-shaped maps, so this formatter
// exists only to give "application/json" a uniform place in the
// registry below.
type JSONFormatter struct{}

func (JSONFormatter) ContentType() string { return "application/json" }

func (JSONFormatter) Format(data interface{}) ([]byte, error) {
	out, err := json.Marshal(data)
	if err != nil {
		return nil, common.ErrInternal(err)
	}
	return out, nil
}

// CSVFormatter renders a {"results": [...]} payload (or a bare list) as
// CSV: header row from the union of row keys (sorted for determinism),
// one row per entity. Non-list payloads render as a single-row CSV of
// their top-level fields.
type CSVFormatter struct{}

func (CSVFormatter) ContentType() string { return "text/csv" }

func (CSVFormatter) Format(data interface{}) ([]byte, error) {
	rows := rowsOf(data)

	fields := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			fields[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(fields))
	for k := range fields {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, common.ErrInternal(err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, field := range header {
			if v, ok := row[field]; ok {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, common.ErrInternal(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, common.ErrInternal(err)
	}
	return buf.Bytes(), nil
}

func rowsOf(data interface{}) []map[string]interface{} {
	switch v := data.(type) {
	case []map[string]interface{}:
		return v
	case map[string]interface{}:
		if results, ok := v["results"].([]map[string]interface{}); ok {
			return results
		}
		return []map[string]interface{}{v}
	default:
		return nil
	}
}

// Registry maps negotiated content types to formatters. XLSX and PDF
// are documented extension points: register additional Formatter
// implementations here as the corpus gains a library for them.
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry builds a Registry seeded with JSON and CSV support.
func NewRegistry() *Registry {
	r := &Registry{formatters: map[string]Formatter{}}
	r.Register(JSONFormatter{})
	r.Register(CSVFormatter{})
	return r
}

func (r *Registry) Register(f Formatter) {
	r.formatters[f.ContentType()] = f
}

// Negotiate returns the formatter for contentType, or an error the
// caller should surface as ContentTypeNegotiationFailed.
func (r *Registry) Negotiate(contentType string) (Formatter, error) {
	if contentType == "" {
		contentType = "application/json"
	}
	f, ok := r.formatters[contentType]
	if !ok {
		return nil, common.ErrContentTypeNegotiationFailed("content-type '%s' is not found within the specification", contentType)
	}
	return f, nil
}
