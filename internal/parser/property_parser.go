// Package parser flattens XML listing feeds into property records.
package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/property-sync/backend/internal/models"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	// ErrParse is returned for input that is not well-formed XML.
	ErrParse = errors.New("malformed xml")
	// ErrMissingField is returned when a nested element lacks a required child.
	ErrMissingField = errors.New("missing field")
)

// PropertyParser turns a listing feed into flattened property records.
type PropertyParser struct {
	rules Rules
}

// NewPropertyParser creates a parser using the given flatten rules.
func NewPropertyParser(rules Rules) *PropertyParser {
	return &PropertyParser{rules: rules}
}

// Rules returns the flatten rules in use.
func (p *PropertyParser) Rules() Rules { return p.rules }

// Parse parses with the default rules.
func Parse(data []byte) ([]models.PropertyRecord, error) {
	return NewPropertyParser(DefaultRules()).Parse(data)
}

// Parse returns one record per record element that is a direct child of the
// document root, in document order. Any error aborts the whole batch.
func (p *PropertyParser) Parse(data []byte) ([]models.PropertyRecord, error) {
	root, err := decodeTree(data)
	if err != nil {
		return nil, err
	}

	records := make([]models.PropertyRecord, 0, len(root.children))
	for _, el := range root.children {
		if el.name != p.rules.RecordElement {
			continue
		}
		rec, err := p.flatten(el, len(records))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (p *PropertyParser) flatten(prop *element, idx int) (models.PropertyRecord, error) {
	b := models.NewRecordBuilder()
	for _, child := range prop.children {
		if p.rules.isList(child.name) {
			items := make([]string, 0, len(child.children))
			for _, item := range child.children {
				items = append(items, item.text)
			}
			b.Set(child.name, models.TextList(items))
			continue
		}
		if rule, ok := p.rules.nested(child.name); ok {
			for _, field := range rule.Fields {
				sub := child.find(field)
				if sub == nil {
					return models.PropertyRecord{}, fmt.Errorf("%w: %s %d: %s/%s",
						ErrMissingField, p.rules.RecordElement, idx, child.name, field)
				}
				b.Set(field, textValue(sub.text))
			}
			continue
		}
		b.Set(child.name, textValue(child.text))
	}
	return b.Build(), nil
}

func textValue(s string) models.Value {
	if s == "" {
		return models.Null()
	}
	return models.Text(s)
}

var utf8BOM = []byte("\xef\xbb\xbf")

// element is the minimal tree needed for flattening. text holds only the
// character data that precedes the first child element.
type element struct {
	name     string
	text     string
	children []*element
}

func (e *element) find(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// decodeTree builds the element tree of a whole document and rejects
// anything that is not a single well-formed root element.
func decodeTree(data []byte) (*element, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charsetReader

	names := newNameTable()
	var (
		root  *element
		stack []*element
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fmt.Errorf("%w: multiple root elements", ErrParse)
			}
			el := &element{name: names.intern(t.Name.Local)}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: text outside root element", ErrParse)
				}
				continue
			}
			if top := stack[len(stack)-1]; len(top.children) == 0 {
				top.text += string(t)
			}

		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unexpected end of document inside <%s>", ErrParse, stack[len(stack)-1].name)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	return root, nil
}

// charsetReader decodes documents whose declaration names a non-UTF-8
// encoding, e.g. ISO-8859-1 feeds.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
