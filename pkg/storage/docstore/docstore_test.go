package docstore

import (
	"testing"

	"github.com/bitechdev/specgateway/pkg/entity"
	"github.com/bitechdev/specgateway/pkg/specdoc"
	"github.com/bitechdev/specgateway/pkg/storage"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID_RequiresStringKey(t *testing.T) {
	_, err := objectID(entity.KeyFromInt(42))
	assert.Error(t, err)
}

func TestObjectID_RejectsInvalidHex(t *testing.T) {
	_, err := objectID(entity.KeyFromString("not-a-valid-object-id"))
	assert.Error(t, err)
}

func TestObjectID_AcceptsValidHex(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := objectID(entity.KeyFromString(oid.Hex()))
	assert.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestFilterQuery_SingleComparisonPerField(t *testing.T) {
	q := filterQuery([]storage.Query{
		{Field: "age", Comparison: specdoc.CompGe, Value: 18},
	})
	assert.Equal(t, bson.M{"age": bson.M{"$gte": 18}}, q)
}

func TestFilterQuery_RangeOnSameField(t *testing.T) {
	q := filterQuery([]storage.Query{
		{Field: "age", Comparison: specdoc.CompGe, Value: 18},
		{Field: "age", Comparison: specdoc.CompLt, Value: 65},
	})
	assert.Equal(t, bson.M{"age": bson.M{"$gte": 18, "$lt": 65}}, q)
}

func TestMongoOperator(t *testing.T) {
	assert.Equal(t, "$eq", mongoOperator(specdoc.CompEq))
	assert.Equal(t, "$ne", mongoOperator(specdoc.CompNe))
	assert.Equal(t, "$lt", mongoOperator(specdoc.CompLt))
	assert.Equal(t, "$lte", mongoOperator(specdoc.CompLe))
	assert.Equal(t, "$gt", mongoOperator(specdoc.CompGt))
	assert.Equal(t, "$gte", mongoOperator(specdoc.CompGe))
}

func TestReverseResults(t *testing.T) {
	rows := []map[string]interface{}{{"id": 1}, {"id": 2}, {"id": 3}}
	reverseResults(rows)
	assert.Equal(t, 3, rows[0]["id"])
	assert.Equal(t, 1, rows[2]["id"])
}
