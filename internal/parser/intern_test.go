package parser

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestNameTable_Intern(t *testing.T) {
	n := newNameTable()

	a := n.intern(string([]byte("Title")))
	b := n.intern(string([]byte("Title")))
	assert.Equal(t, unsafe.StringData(a), unsafe.StringData(b))
	assert.Equal(t, 1, n.len())

	n.intern("Price")
	assert.Equal(t, 2, n.len())
}

func TestNameTable_Limit(t *testing.T) {
	n := newNameTable()
	for i := 0; i < maxNames+10; i++ {
		n.intern(fmt.Sprintf("f%d", i))
	}
	assert.Equal(t, maxNames, n.len())
	assert.Equal(t, "overflow", n.intern("overflow"))
	assert.Equal(t, maxNames, n.len())
}

func TestDecodeTree_SharesNames(t *testing.T) {
	root, err := decodeTree([]byte(`<properties><property><id>1</id></property><property><id>2</id></property></properties>`))
	assert.NoError(t, err)
	first := root.children[0].children[0].name
	second := root.children[1].children[0].name
	assert.Equal(t, unsafe.StringData(first), unsafe.StringData(second))
}
