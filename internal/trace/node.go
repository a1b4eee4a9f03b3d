// Package trace models serialized agent sessions as a tree of JSON variants
// and reconstructs the ordered tool invocations recorded in them.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one key/value pair of an object node. Members keep document order.
type Member struct {
	Key   string
	Value Node
}

// Node is a tagged union over the JSON value kinds. The zero value is null.
type Node struct {
	kind    Kind
	boolean bool
	number  json.Number
	text    string
	items   []Node
	members []Member
}

func Null() Node {
	return Node{}
}

func Bool(b bool) Node {
	return Node{kind: KindBool, boolean: b}
}

func Number(n json.Number) Node {
	return Node{kind: KindNumber, number: n}
}

func String(s string) Node {
	return Node{kind: KindString, text: s}
}

func Array(items ...Node) Node {
	return Node{kind: KindArray, items: items}
}

func Object(ms ...Member) Node {
	return Node{kind: KindObject, members: ms}
}

func Field(k string, v Node) Member {
	return Member{Key: k, Value: v}
}

func (n Node) Kind() Kind {
	return n.kind
}

// Str returns the string payload when the node is a string.
func (n Node) Str() (string, bool) {
	if n.kind != KindString {
		return "", false
	}
	return n.text, true
}

func (n Node) Items() []Node {
	return n.items
}

func (n Node) Members() []Member {
	return n.members
}

// Get returns the last member named key. Lookup is case-sensitive.
func (n Node) Get(key string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	for i := len(n.members) - 1; i >= 0; i-- {
		if n.members[i].Key == key {
			return n.members[i].Value, true
		}
	}
	return Node{}, false
}

// Interface converts the node to plain Go values: map[string]any, []any,
// string, float64, bool or nil.
func (n Node) Interface() any {
	switch n.kind {
	case KindBool:
		return n.boolean
	case KindNumber:
		f, err := n.number.Float64()
		if err != nil {
			return n.number.String()
		}
		return f
	case KindString:
		return n.text
	case KindArray:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.members))
		for _, m := range n.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON writes the node back out with object members in document order.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) encode(buf *bytes.Buffer) error {
	switch n.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(n.boolean))
	case KindNumber:
		buf.WriteString(n.number.String())
	case KindString:
		b, err := json.Marshal(n.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("trace: unknown node kind %d", n.kind)
	}
	return nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// Parse decodes a JSON document into a Node tree.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return Node{}, fmt.Errorf("trace: parse: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, errors.New("trace: parse: trailing data after document")
	}
	return n, nil
}

// FromValue converts any JSON-serializable Go value into a Node tree.
func FromValue(v any) (Node, error) {
	if n, ok := v.(Node); ok {
		return n, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Node{}, fmt.Errorf("trace: serialize session: %w", err)
	}
	return Parse(data)
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			var members []Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Node{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Node{}, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return Node{}, err
				}
				members = append(members, Member{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}
			return Node{kind: KindObject, members: members}, nil
		case '[':
			var items []Node
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Node{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Node{}, err
			}
			return Node{kind: KindArray, items: items}, nil
		default:
			return Node{}, fmt.Errorf("unexpected delimiter %q", v)
		}
	case bool:
		return Bool(v), nil
	case json.Number:
		return Number(v), nil
	case string:
		return String(v), nil
	case nil:
		return Null(), nil
	default:
		return Node{}, fmt.Errorf("unexpected token %T", tok)
	}
}
