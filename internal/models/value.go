// Package models contains domain types for the property sync service.
package models

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindText
	KindTextList
)

// Value is a property field value: null, a scalar text or a list of texts.
// The zero Value is Null.
type Value struct {
	kind ValueKind
	text string
	list []string
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Text returns a scalar text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// TextList returns a list value. The slice is copied.
func TextList(items []string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindTextList, list: list}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Text returns the scalar text and true when v is a Text value.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

// List returns a copy of the items and true when v is a TextList value.
func (v Value) List() ([]string, bool) {
	if v.kind != KindTextList {
		return nil, false
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out, true
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.text != o.text || len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes Null as null, Text as a string and TextList as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindTextList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// EncodeMsgpack implements msgpack.CustomEncoder.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.kind {
	case KindText:
		return enc.EncodeString(v.text)
	case KindTextList:
		if err := enc.EncodeArrayLen(len(v.list)); err != nil {
			return err
		}
		for _, s := range v.list {
			if err := enc.EncodeString(s); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.EncodeNil()
	}
}
