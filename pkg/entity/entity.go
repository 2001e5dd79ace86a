// Package entity converts between external JSON entities and
// storage-facing records using a projection tree, via gjson/sjson
// dotted-path manipulation rather than hand-rolled recursive map
// walking.
package entity

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/specdoc"
)

// Key is a storage primary key: either a string or an integer id.
// Expressed as a small sum type rather than interface{} duck typing so
// callers get compile-time exhaustiveness over the two cases.
type Key struct {
	IsString bool
	String   string
	Int      int64
}

func KeyFromString(s string) Key { return Key{IsString: true, String: s} }
func KeyFromInt(i int64) Key     { return Key{IsString: false, Int: i} }

func (k Key) Value() interface{} {
	if k.IsString {
		return k.String
	}
	return k.Int
}

// Entity is a storage record with a primary key and a flat mapping of
// attribute name to value.
type Entity struct {
	Key        Key
	Attributes map[string]interface{}
}

// Parse projects a stored entity through a projection tree into an
// external JSON object, filling the table's primary key field from the
// entity's stored key. Missing optional leaves are emitted as null.
func Parse(keys specdoc.ProjectionTree, ent *Entity, tableID string) ([]byte, error) {
	attrJSON, err := mapToJSON(ent.Attributes)
	if err != nil {
		return nil, common.ErrInternal(err)
	}

	out := []byte("{}")

	var walk func(prefix string, tree specdoc.ProjectionTree, topLevel bool) error
	walk = func(prefix string, tree specdoc.ProjectionTree, topLevel bool) error {
		for name, node := range tree {
			extPath := name
			if prefix != "" {
				extPath = prefix + "." + name
			}

			if topLevel && name == tableID {
				var serr error
				out, serr = sjson.SetBytes(out, extPath, ent.Key.Value())
				if serr != nil {
					return common.ErrInternal(serr)
				}
				continue
			}

			if !node.IsLeaf {
				if err := walk(extPath, node.Properties, false); err != nil {
					return err
				}
				continue
			}

			targetPath := joinDotted(node.Target)
			val := gjson.GetBytes(attrJSON, targetPath)

			var serr error
			if !val.Exists() {
				out, serr = sjson.SetBytes(out, extPath, nil)
			} else {
				out, serr = sjson.SetRawBytes(out, extPath, []byte(val.Raw))
			}
			if serr != nil {
				return common.ErrInternal(serr)
			}
		}
		return nil
	}

	if err := walk("", keys, true); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildUpdate consumes an external JSON body and produces a storage-shaped
// update: the projection is flattened to dotted external names, then each
// present value is placed at the leaf's target path in a nested object.
// A required leaf absent from the body fails with a 400.
func BuildUpdate(keys specdoc.ProjectionTree, body []byte) (map[string]interface{}, error) {
	out := []byte("{}")

	var walk func(prefix string, tree specdoc.ProjectionTree) error
	walk = func(prefix string, tree specdoc.ProjectionTree) error {
		for name, node := range tree {
			extPath := name
			if prefix != "" {
				extPath = prefix + "." + name
			}

			if !node.IsLeaf {
				if err := walk(extPath, node.Properties); err != nil {
					return err
				}
				continue
			}

			val := gjson.GetBytes(body, extPath)
			if !val.Exists() {
				if node.Required {
					return common.ErrValidationFailed("Property '%s' is required", name)
				}
				continue
			}

			targetPath := joinDotted(node.Target)
			var serr error
			out, serr = sjson.SetRawBytes(out, targetPath, []byte(val.Raw))
			if serr != nil {
				return common.ErrInternal(serr)
			}
		}
		return nil
	}

	if err := walk("", keys); err != nil {
		return nil, err
	}

	return jsonToMap(out)
}

func joinDotted(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
