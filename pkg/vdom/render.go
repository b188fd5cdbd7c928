package vdom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidTags are rendered with no closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Render writes the HTML serialization of a tree. Text and attribute values
// are escaped. Event listeners do not serialize; components render by
// instantiating and rendering (props and events application belongs to the
// reactive layer, which server-side rendering does not run).
func Render(w io.Writer, n Node) error {
	switch t := n.(type) {
	case nil:
		return nil

	case Text:
		_, err := io.WriteString(w, html.EscapeString(string(t)))
		return err

	case List:
		for _, c := range t {
			if err := Render(w, c); err != nil {
				return err
			}
		}
		return nil

	case *ElementNode:
		return renderElement(w, t)

	case *ComponentNode:
		if t.New == nil {
			return nil
		}
		return Render(w, t.New().Render())

	default:
		return fmt.Errorf("vdom: cannot render node type %T", n)
	}
}

// HTML renders a tree to a string.
func HTML(n Node) string {
	var sb strings.Builder
	// strings.Builder writes cannot fail; any error is an unknown node
	// type, which renders as far as it got.
	_ = Render(&sb, n)
	return sb.String()
}

func renderElement(w io.Writer, el *ElementNode) error {
	if _, err := io.WriteString(w, "<"+el.Tag); err != nil {
		return err
	}
	for _, a := range el.Props {
		if err := writeAttribute(w, a); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if voidTags[el.Tag] {
		return nil
	}

	if el.Child != nil {
		if err := Render(w, el.Child); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</"+el.Tag+">")
	return err
}

// writeAttribute serializes one binding. Boolean true renders as the bare
// attribute name, boolean false drops the attribute entirely.
func writeAttribute(w io.Writer, a Attribute) error {
	switch v := a.Value.(type) {
	case bool:
		if !v {
			return nil
		}
		_, err := io.WriteString(w, " "+a.Name)
		return err
	case string:
		_, err := io.WriteString(w, " "+a.Name+`="`+html.EscapeString(v)+`"`)
		return err
	default:
		_, err := io.WriteString(w, " "+a.Name+`="`+html.EscapeString(fmt.Sprint(v))+`"`)
		return err
	}
}
