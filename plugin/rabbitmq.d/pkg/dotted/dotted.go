// SPDX-License-Identifier: GPL-3.0-or-later

// Package dotted flattens management API JSON objects into dotted metric paths.
package dotted

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sensu-plugins/sensu-plugins-rabbitmq/plugin/rabbitmq.d/pkg/queuecheck"
)

// Field is a scalar leaf of a JSON object.
type Field struct {
	Path  string
	Value gjson.Result
}

// Flatten returns the scalar leaves of obj in document order, nested object keys
// joined with dots. Null and array values are skipped.
func Flatten(obj gjson.Result) []Field {
	var fields []Field
	walk(obj, "", &fields)
	return fields
}

func walk(obj gjson.Result, prefix string, fields *[]Field) {
	obj.ForEach(func(key, value gjson.Result) bool {
		path := prefix + key.String()
		switch {
		case value.IsObject():
			walk(value, path+".", fields)
		case value.IsArray(), value.Type == gjson.Null:
		default:
			*fields = append(*fields, Field{Path: path, Value: value})
		}
		return true
	})
}

// FormatValue renders a scalar the way it is printed in graphite lines.
// Integers are kept as sent, fractional numbers always carry a fraction: 0 -> "0", 0.0 -> "0.0".
func FormatValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return queuecheck.FormatFloat(v.Float())
		}
		return v.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	default:
		return v.String()
	}
}

// LastSegment returns the part of a dotted path after the last dot.
func LastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
