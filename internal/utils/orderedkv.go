package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap marshals to a JSON object whose keys keep insertion order.
type OrderedKVMap[T any] map[string]OrderedKV[T]

// Set stores value under key. A new key goes after every existing key; an
// existing key keeps its position.
func (om OrderedKVMap[T]) Set(key string, value T) {
	if prev, ok := om[key]; ok {
		om[key] = OrderedKV[T]{Value: value, Order: prev.Order}
		return
	}
	var next int64
	for _, v := range om {
		if v.Order >= next {
			next = v.Order + 1
		}
	}
	om[key] = OrderedKV[T]{Value: value, Order: next}
}

// Keys returns the keys in serialization order.
func (om OrderedKVMap[T]) Keys() []string {
	keys := make([]string, 0, len(om))
	for k := range om {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return om[keys[i]].Order < om[keys[j]].Order
	})
	return keys
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range om.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(om[key].Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
