package job

import (
	"fmt"
	"strconv"

	"github.com/gabastillas/sheetsearch/internal/sheet"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// ColumnSpec is a column reference read from YAML.
//
// An integer is a zero-based position. A string is parsed with
// sheet.ParseColumnRef, so "C" is a letter and "Terms" a header name. Headers
// that look like letters, such as "ID", use the mapping form:
//
//	term_column: {name: ID}
//	term_column: {letter: E}
//	term_column: {position: 4}
type ColumnSpec struct {
	ref sheet.ColumnRef
	set bool
}

// Column returns a ColumnSpec for r.
func Column(r sheet.ColumnRef) ColumnSpec {
	return ColumnSpec{ref: r, set: true}
}

// Ref returns the column reference.
func (c ColumnSpec) Ref() sheet.ColumnRef {
	return c.ref
}

// IsZero reports whether the spec was not given.
func (c ColumnSpec) IsZero() bool {
	return !c.set
}

func (c ColumnSpec) String() string {
	return c.ref.String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ColumnSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!int" {
			i, err := strconv.Atoi(node.Value)
			if err != nil {
				return fmt.Errorf("line %d: invalid column position %q: %w", node.Line, node.Value, err)
			}
			return c.setPosition(node, i)
		}
		if node.Value == "" {
			return fmt.Errorf("line %d: empty column reference", node.Line)
		}
		*c = Column(sheet.ParseColumnRef(node.Value))
		return nil
	case yaml.MappingNode:
		var m struct {
			Position *int   `yaml:"position"`
			Letter   string `yaml:"letter"`
			Name     string `yaml:"name"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		n := 0
		if m.Position != nil {
			n++
		}
		if m.Letter != "" {
			n++
		}
		if m.Name != "" {
			n++
		}
		if n != 1 {
			return fmt.Errorf("line %d: column needs exactly one of position, letter or name", node.Line)
		}
		switch {
		case m.Position != nil:
			return c.setPosition(node, *m.Position)
		case m.Letter != "":
			if _, err := sheet.LetterIndex(m.Letter); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
			*c = Column(sheet.Letter(m.Letter))
		default:
			*c = Column(sheet.Name(m.Name))
		}
		return nil
	default:
		return fmt.Errorf("line %d: column must be a scalar or a mapping", node.Line)
	}
}

func (c *ColumnSpec) setPosition(node *yaml.Node, i int) error {
	if i < 0 {
		return fmt.Errorf("line %d: column position %d is negative", node.Line, i)
	}
	*c = Column(sheet.Position(i))
	return nil
}

// JSONSchema describes the accepted forms.
func (ColumnSpec) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Column reference: zero-based position or letter or header name",
		OneOf: []*jsonschema.Schema{
			{Type: "integer", Description: "Zero-based position"},
			{Type: "string", Description: "Letter code such as C or AA; any other text is a header name"},
			{Type: "object", Description: "Exactly one of position or letter or name"},
		},
	}
}
