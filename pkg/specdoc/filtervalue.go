package specdoc

import (
	"strconv"
	"time"

	"github.com/bitechdev/specgateway/pkg/common"
)

// CoerceFilterValue converts a raw query-string filter value into the Go
// type implied by its parameter schema (type/format). Coercion failure
// reports the exact paramName/schema type, per the 400 message contract.
func CoerceFilterValue(schema Node, paramName, raw string) (interface{}, error) {
	schemaType, _ := schema["type"].(string)
	format, _ := schema["format"].(string)

	switch schemaType {
	case "integer":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, common.ErrValidationFailed("value %s for query param %s is not of type integer", raw, paramName)
		}
		return v, nil
	case "number":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, common.ErrValidationFailed("value %s for query param %s is not of type number", raw, paramName)
		}
		return v, nil
	case "boolean":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, common.ErrValidationFailed("value %s for query param %s is not of type boolean", raw, paramName)
		}
		return v, nil
	case "string":
		switch format {
		case "date-time":
			v, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, common.ErrValidationFailed("value %s for query param %s is not of type date-time", raw, paramName)
			}
			return v.UTC(), nil
		case "date":
			v, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, common.ErrValidationFailed("value %s for query param %s is not of type date", raw, paramName)
			}
			return v, nil
		default:
			return raw, nil
		}
	default:
		return raw, nil
	}
}
