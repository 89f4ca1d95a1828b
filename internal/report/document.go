package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Element is one node of the report document tree. The tree is built
// structurally and serialized by a single encoder, so escaping and the
// numeric format are enforced in exactly one place.
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// Attr is one XML attribute.
type Attr struct {
	Name  string
	Value string
}

// El creates an element with the given children.
func El(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// Text creates a leaf element holding character data.
func Text(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// Value creates a <Value> leaf holding v in the wire numeric format.
func Value(v float64) *Element {
	return Text("Value", formatValue(v))
}

// WithAttr returns e with an attribute appended, for chained construction.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Encode serializes the tree as an XML document with a standard declaration
// and two-space indentation.
func (e *Element) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := e.encode(&buf, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Element) encode(buf *bytes.Buffer, depth int) error {
	indent := bytes.Repeat([]byte("  "), depth)
	buf.Write(indent)
	buf.WriteByte('<')
	buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.Value)); err != nil {
			return fmt.Errorf("escape attribute %s: %w", a.Name, err)
		}
		buf.WriteByte('"')
	}

	switch {
	case len(e.Children) > 0:
		buf.WriteString(">\n")
		for _, c := range e.Children {
			if err := c.encode(buf, depth+1); err != nil {
				return err
			}
		}
		buf.Write(indent)
		buf.WriteString("</" + e.Name + ">\n")
	case e.Text != "":
		buf.WriteByte('>')
		if err := xml.EscapeText(buf, []byte(e.Text)); err != nil {
			return fmt.Errorf("escape text of %s: %w", e.Name, err)
		}
		buf.WriteString("</" + e.Name + ">\n")
	default:
		buf.WriteString("/>\n")
	}
	return nil
}
