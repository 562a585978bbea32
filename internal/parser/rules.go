package parser

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// NestedRule lifts named grandchildren of Element to top-level scalar fields.
// Every name in Fields must be present when Element occurs.
type NestedRule struct {
	Element string   `yaml:"element" json:"element"`
	Fields  []string `yaml:"fields" json:"fields"`
}

// Rules controls how <property> elements are flattened into records.
type Rules struct {
	RecordElement string       `yaml:"record_element" json:"recordElement"`
	ListFields    []string     `yaml:"list_fields" json:"listFields"`
	Nested        []NestedRule `yaml:"nested" json:"nested"`
}

// DefaultRules returns the listing feed layout: Features and Images are
// lists, geopoints carries Longitude and Latitude.
func DefaultRules() Rules {
	return Rules{
		RecordElement: "property",
		ListFields:    []string{"Features", "Images"},
		Nested: []NestedRule{
			{Element: "geopoints", Fields: []string{"Longitude", "Latitude"}},
		},
	}
}

// LoadRules reads flatten rules from a YAML file.
func LoadRules(filePath string) (Rules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return Rules{}, err
	}
	defer file.Close()

	return LoadRulesFromReader(file)
}

// LoadRulesFromReader reads flatten rules from YAML. Keys that are left out
// keep their default; an explicit empty list disables that behaviour.
func LoadRulesFromReader(r io.Reader) (Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Rules{}, err
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("decoding flatten rules: %w", err)
	}

	def := DefaultRules()
	if rules.RecordElement == "" {
		rules.RecordElement = def.RecordElement
	}
	if rules.ListFields == nil {
		rules.ListFields = def.ListFields
	}
	if rules.Nested == nil {
		rules.Nested = def.Nested
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks that the rules are usable.
func (r Rules) Validate() error {
	if r.RecordElement == "" {
		return errors.New("flatten rules: record_element is required")
	}
	seen := make(map[string]bool)
	for _, name := range r.ListFields {
		if name == "" {
			return errors.New("flatten rules: empty list field name")
		}
		seen[name] = true
	}
	for _, n := range r.Nested {
		if n.Element == "" {
			return errors.New("flatten rules: nested rule without element")
		}
		if seen[n.Element] {
			return fmt.Errorf("flatten rules: %q is both a list and a nested element", n.Element)
		}
		if len(n.Fields) == 0 {
			return fmt.Errorf("flatten rules: nested element %q has no fields", n.Element)
		}
	}
	return nil
}

// FallbackColumns returns the list fields followed by every nested field.
// These are the columns of a table created for an empty batch.
func (r Rules) FallbackColumns() []string {
	cols := make([]string, 0, len(r.ListFields)+2*len(r.Nested))
	cols = append(cols, r.ListFields...)
	for _, n := range r.Nested {
		cols = append(cols, n.Fields...)
	}
	return cols
}

func (r Rules) isList(name string) bool {
	for _, l := range r.ListFields {
		if l == name {
			return true
		}
	}
	return false
}

func (r Rules) nested(name string) (NestedRule, bool) {
	for _, n := range r.Nested {
		if n.Element == name {
			return n, true
		}
	}
	return NestedRule{}, false
}
