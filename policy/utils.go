package policy

import (
	"maps"
	"reflect"
	"strings"
)

func resolveDotNotation(obj map[string]any, key string) (any, bool) {
	keys := strings.Split(key, ".")
	current := obj
	for _, k := range keys[:len(keys)-1] {
		next, ok := current[k].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	value, ok := current[keys[len(keys)-1]]
	return value, ok
}

// structToMap flattens a struct into its json-tagged fields, inlining
// embedded structs.
func structToMap(obj any) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			maps.Copy(result, structToMap(v.Field(i).Interface()))
			continue
		}
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		result[tag] = v.Field(i).Interface()
	}
	return result
}
