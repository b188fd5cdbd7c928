// Package vdom is the runtime the generated view code targets. It defines
// the virtual node tree, the constructors the compiler emits calls to, and
// a server-side HTML renderer.
//
// Values are immutable after construction. The node set is closed: only the
// types in this package implement Node.
package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Node is one vertex of a virtual tree.
type Node interface {
	node()
}

// ElementNode is a plain markup element. Child is nil for childless and
// void elements.
type ElementNode struct {
	Tag    string
	Props  []Attribute
	Events []EventListener
	Child  Node
}

// ComponentNode defers to a user-defined Component. New instantiates a
// fresh component value; Props and Events hold the finalized builder
// results for the reactive layer.
type ComponentNode struct {
	Name   string
	Props  any
	Events any
	New    func() Component
}

// Text is a leaf of character data. It is escaped when rendered.
type Text string

// List is an ordered sequence of sibling nodes.
type List []Node

// Attribute is a static name/value binding on an element.
type Attribute struct {
	Name  string
	Value any
}

// EventListener associates an event name with a callable.
type EventListener struct {
	Name     string
	Listener Listener
}

// Listener is the callable type event expressions convert to.
type Listener func(Event)

// Event is what a fired listener receives.
type Event struct {
	Name string
	Data any
}

// Component is a user-defined view unit.
type Component interface {
	Render() Node
}

func (*ElementNode) node()   {}
func (*ComponentNode) node() {}
func (Text) node()           {}
func (List) node()           {}

// NewElement constructs an element with child content.
func NewElement(tag string, props []Attribute, events []EventListener, child Node) *ElementNode {
	return &ElementNode{Tag: tag, Props: props, Events: events, Child: child}
}

// NewChildlessElement constructs an element with no child content, such as
// a void tag or an empty pair.
func NewChildlessElement(tag string, props []Attribute, events []EventListener) *ElementNode {
	return &ElementNode{Tag: tag, Props: props, Events: events}
}

// NewComponent constructs a node for the component type C. The finalized
// props and events builder results ride along for the reactive layer.
func NewComponent[C Component](props, events any) *ComponentNode {
	t := reflect.TypeOf((*C)(nil)).Elem()

	name := t.Name()
	if t.Kind() == reflect.Ptr {
		name = t.Elem().Name()
	}

	return &ComponentNode{
		Name:   name,
		Props:  props,
		Events: events,
		New: func() Component {
			var c C
			// Pointer-typed components need their pointee allocated.
			rv := reflect.ValueOf(&c).Elem()
			if rv.Kind() == reflect.Ptr && rv.IsNil() {
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			return c
		},
	}
}

// NewAttribute constructs a property binding.
func NewAttribute(name string, value any) Attribute {
	return Attribute{Name: name, Value: value}
}

// NewEventListener constructs an event binding.
func NewEventListener(name string, listener Listener) EventListener {
	return EventListener{Name: name, Listener: listener}
}

// NewText constructs a text leaf.
func NewText(s string) Text {
	return Text(s)
}

// NewList groups sibling nodes.
func NewList(nodes ...Node) List {
	return List(nodes)
}

// ToNode coerces an interpolated value to a node. Nodes pass through,
// strings and Stringers become text, numbers and bools format via strconv,
// nil becomes an empty list, and anything else goes through fmt.
func ToNode(v any) Node {
	switch t := v.(type) {
	case nil:
		return List(nil)
	case Node:
		return t
	case string:
		return Text(t)
	case fmt.Stringer:
		return Text(t.String())
	case bool:
		return Text(strconv.FormatBool(t))
	case int:
		return Text(strconv.Itoa(t))
	case int8:
		return Text(strconv.FormatInt(int64(t), 10))
	case int16:
		return Text(strconv.FormatInt(int64(t), 10))
	case int32:
		return Text(strconv.FormatInt(int64(t), 10))
	case int64:
		return Text(strconv.FormatInt(t, 10))
	case uint:
		return Text(strconv.FormatUint(uint64(t), 10))
	case uint8:
		return Text(strconv.FormatUint(uint64(t), 10))
	case uint16:
		return Text(strconv.FormatUint(uint64(t), 10))
	case uint32:
		return Text(strconv.FormatUint(uint64(t), 10))
	case uint64:
		return Text(strconv.FormatUint(t, 10))
	case float32:
		return Text(strconv.FormatFloat(float64(t), 'g', -1, 32))
	case float64:
		return Text(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return Text(fmt.Sprint(t))
	}
}
