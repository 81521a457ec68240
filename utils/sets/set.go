package sets

import (
	"encoding/json"
)

type StringSet = GenericSet[string]
type GenericSet[K comparable] map[K]struct{}

func New[K comparable]() GenericSet[K] {
	return make(GenericSet[K])
}

func FromSlice[K comparable](values []K) GenericSet[K] {
	s := make(GenericSet[K], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}

	return s
}

// Return all elements in this set as a slice.
func (s GenericSet[K]) Keys() (keys []K) {
	for k := range s {
		keys = append(keys, k)
	}

	return
}

func (set GenericSet[K]) Append(v K) {
	set[v] = struct{}{}
}

func (set GenericSet[K]) AppendFunc(v K, f func(v K) K) {
	set[f(v)] = struct{}{}
}

func (set GenericSet[K]) Has(v K) bool {
	_, ok := set[v]
	return ok
}

// Adds v and reports whether it was absent before the call.
// Handy for "do this once per element" loops without a separate Has check.
func (set GenericSet[K]) AppendIfUnseen(v K) bool {
	if _, ok := set[v]; ok {
		return false
	}

	set[v] = struct{}{}
	return true
}

// Slice marshals this set as a JSON array of strings.
func (s GenericSet[K]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON unmarshals a JSON array of strings into this set.
func (s *GenericSet[K]) UnmarshalJSON(data []byte) error {
	var keys []K
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	if *s == nil {
		*s = make(GenericSet[K], len(keys))
	}

	for _, k := range keys {
		(*s)[k] = struct{}{}
	}

	return nil
}
