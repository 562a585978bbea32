package parser

// maxNames bounds the per-document name pool. Names past the limit are
// returned as-is.
const maxNames = 4096

// nameTable interns element names while one document is decoded, so every
// record of a feed shares the same field name strings.
type nameTable struct {
	pool map[string]string
}

func newNameTable() *nameTable {
	return &nameTable{pool: make(map[string]string, 64)}
}

// intern returns the canonical copy of s.
func (n *nameTable) intern(s string) string {
	if pooled, ok := n.pool[s]; ok {
		return pooled
	}
	if len(n.pool) >= maxNames {
		return s
	}
	n.pool[s] = s
	return s
}

func (n *nameTable) len() int { return len(n.pool) }
