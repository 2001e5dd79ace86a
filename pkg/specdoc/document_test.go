package specdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURLTemplate(t *testing.T) {
	assert.Equal(t, "/users/{id}", NormalizeURLTemplate("/users/<int:id>"))
	assert.Equal(t, "/users/{id}", NormalizeURLTemplate("/users/<id>"))
	assert.Equal(t, "/users/{id}/orders/{order_id}", NormalizeURLTemplate("/users/<int:id>/orders/<string:order_id>"))
	assert.Equal(t, "/health", NormalizeURLTemplate("/health"))
}

func TestDocument_ResolveRef(t *testing.T) {
	doc := &Document{raw: Node{
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"User": map[string]interface{}{
					"properties": map[string]interface{}{
						"name": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}}

	resolved, ok := doc.Resolve("#/components/schemas/User")
	assert.True(t, ok)
	assert.NotNil(t, resolved["properties"])
}

func TestDocument_ResolveRejectsNonLocalRef(t *testing.T) {
	doc := &Document{raw: Node{}}
	_, ok := doc.Resolve("https://example.com/schema.json")
	assert.False(t, ok)
}

func TestDocument_ResolveMissingPathFails(t *testing.T) {
	doc := &Document{raw: Node{"components": map[string]interface{}{}}}
	_, ok := doc.Resolve("#/components/schemas/Missing")
	assert.False(t, ok)
}

func TestBuildPaths_MethodsAndTableName(t *testing.T) {
	doc := &Document{raw: Node{
		"paths": map[string]interface{}{
			"/users/<int:id>": map[string]interface{}{
				"x-db-table-name": "users",
				"get": map[string]interface{}{
					"parameters": []interface{}{
						map[string]interface{}{"name": "id", "in": "path"},
					},
				},
				"put": map[string]interface{}{},
			},
		},
	}, Paths: make(map[string]*PathObject)}

	err := doc.buildPaths()
	assert.NoError(t, err)

	po, ok := doc.Paths["/users/{id}"]
	assert.True(t, ok)
	assert.Equal(t, "users", po.TableName)
	assert.Contains(t, po.Operations, "GET")
	assert.Contains(t, po.Operations, "PUT")
	assert.Len(t, po.Operations["GET"].Parameters, 1)
	assert.Equal(t, "id", po.Operations["GET"].Parameters[0].Name)
}

func TestDiscoverTableID_DirectField(t *testing.T) {
	doc := &Document{raw: Node{}}
	schema := Node{"x-db-table-id": "id"}

	id, ok := doc.DiscoverTableID(schema)
	assert.True(t, ok)
	assert.Equal(t, "id", id)
}

func TestDiscoverTableID_NestedChild(t *testing.T) {
	doc := &Document{raw: Node{}}
	schema := Node{
		"properties": map[string]interface{}{
			"user": map[string]interface{}{
				"x-db-table-id": "user_id",
				"properties":    map[string]interface{}{},
			},
		},
	}

	id, ok := doc.DiscoverTableID(schema)
	assert.True(t, ok)
	assert.Equal(t, "user_id", id)
}

func TestDiscoverTableID_NotFound(t *testing.T) {
	doc := &Document{raw: Node{}}
	id, ok := doc.DiscoverTableID(Node{"properties": map[string]interface{}{}})
	assert.False(t, ok)
	assert.Equal(t, "", id)
}
