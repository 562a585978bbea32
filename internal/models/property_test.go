package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnsOf(t *testing.T) {
	assert.Nil(t, ColumnsOf(nil))

	first := NewRecordBuilder().
		Set("id", Text("1")).
		Set("Price", Text("10")).
		Set("price", Text("dup")).
		Build()
	second := NewRecordBuilder().Set("Extra", Text("x")).Build()

	assert.Equal(t, ColumnSet{"id", "Price"}, ColumnsOf([]PropertyRecord{first, second}))
}

func TestColumnSet_ContainsIgnoresCase(t *testing.T) {
	cols := ColumnSet{"id", "Features"}
	assert.True(t, cols.Contains("features"))
	assert.True(t, cols.Contains("ID"))
	assert.False(t, cols.Contains("Images"))
}

func TestValue_Kind(t *testing.T) {
	assert.Equal(t, KindNull, Null().Kind())
	assert.Equal(t, KindText, Text("a").Kind())
	assert.Equal(t, KindTextList, TextList([]string{"a"}).Kind())
	assert.True(t, Value{}.IsNull())
}
