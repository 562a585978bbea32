package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Field is one named value of a PropertyRecord.
type Field struct {
	Name  string
	Value Value
}

// PropertyRecord is an ordered mapping from field name to Value produced for
// one <property> element. It is immutable once built.
type PropertyRecord struct {
	fields []Field
	index  map[string]int
}

// Len returns the number of fields.
func (r PropertyRecord) Len() int { return len(r.fields) }

// Get returns the value stored under name.
func (r PropertyRecord) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Null(), false
	}
	return r.fields[i].Value, true
}

// Names returns the field names in insertion order.
func (r PropertyRecord) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON encodes the record as a JSON object keeping field order.
func (r PropertyRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeMsgpack implements msgpack.CustomEncoder, keeping field order.
func (r PropertyRecord) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(r.fields)); err != nil {
		return err
	}
	for _, f := range r.fields {
		if err := enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := f.Value.EncodeMsgpack(enc); err != nil {
			return err
		}
	}
	return nil
}

// RecordBuilder accumulates fields for a PropertyRecord.
type RecordBuilder struct {
	fields []Field
	index  map[string]int
}

// NewRecordBuilder returns an empty builder.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{index: make(map[string]int)}
}

// Set stores value under name. Re-setting a name replaces the value in place,
// so the field keeps the position of its first occurrence.
func (b *RecordBuilder) Set(name string, value Value) *RecordBuilder {
	if i, ok := b.index[name]; ok {
		b.fields[i].Value = value
		return b
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, Field{Name: name, Value: value})
	return b
}

// Build returns the record. The builder must not be used afterwards.
func (b *RecordBuilder) Build() PropertyRecord {
	rec := PropertyRecord{fields: b.fields, index: b.index}
	b.fields, b.index = nil, nil
	return rec
}

// ColumnSet is the ordered list of column names a batch is written against.
type ColumnSet []string

// ColumnsOf derives the ColumnSet from the first record of a batch. Later
// records never contribute columns. It returns nil for an empty batch.
func ColumnsOf(records []PropertyRecord) ColumnSet {
	if len(records) == 0 {
		return nil
	}
	return ColumnSet(records[0].Names()).Unique()
}

// Contains reports whether name is one of the columns, ignoring case as SQL
// identifiers do.
func (c ColumnSet) Contains(name string) bool {
	for _, col := range c {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

// Unique drops names that differ from an earlier column only by case,
// keeping the first occurrence.
func (c ColumnSet) Unique() ColumnSet {
	out := make(ColumnSet, 0, len(c))
	for _, name := range c {
		if !out.Contains(name) {
			out = append(out, name)
		}
	}
	return out
}
