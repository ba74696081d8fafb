package toon

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// YAML Bridge
// ============================================================
//
// Converts between YAML and document values through yaml.Node, which
// keeps mapping key order. Anchors and aliases are resolved on read;
// writing never emits them.

// FromYAML parses YAML bytes into a document value.
func FromYAML(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("toon: YAML parse error: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("toon: empty YAML input")
	}

	rootNode, err := resolveAlias(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if rootNode.Kind == yaml.ScalarNode {
		return yamlScalar(rootNode)
	}

	root, err := emptyForNode(rootNode)
	if err != nil {
		return nil, err
	}

	type yframe struct {
		node *yaml.Node
		dst  *Value
		idx  int
	}
	stack := []*yframe{{node: rootNode, dst: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.idx >= len(f.node.Content) {
			stack = stack[:len(stack)-1]
			continue
		}

		var key string
		var childNode *yaml.Node
		if f.node.Kind == yaml.MappingNode {
			keyNode := f.node.Content[f.idx]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("toon: YAML line %d: non-scalar mapping key", keyNode.Line)
			}
			key = keyNode.Value
			childNode = f.node.Content[f.idx+1]
			f.idx += 2
		} else {
			childNode = f.node.Content[f.idx]
			f.idx++
		}

		childNode, err = resolveAlias(childNode)
		if err != nil {
			return nil, err
		}

		var child *Value
		if childNode.Kind == yaml.ScalarNode {
			child, err = yamlScalar(childNode)
			if err != nil {
				return nil, err
			}
		} else {
			child, err = emptyForNode(childNode)
			if err != nil {
				return nil, err
			}
			stack = append(stack, &yframe{node: childNode, dst: child})
		}

		if f.node.Kind == yaml.MappingNode {
			f.dst.Set(key, child)
		} else {
			f.dst.Append(child)
		}
	}
	return root, nil
}

func resolveAlias(n *yaml.Node) (*yaml.Node, error) {
	for hops := 0; n.Kind == yaml.AliasNode; hops++ {
		if hops > 256 || n.Alias == nil {
			return nil, fmt.Errorf("toon: YAML line %d: unresolvable alias", n.Line)
		}
		n = n.Alias
	}
	return n, nil
}

func emptyForNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		return Object(), nil
	case yaml.SequenceNode:
		return Array(), nil
	default:
		return nil, fmt.Errorf("toon: YAML line %d: unsupported node kind %d", n.Line, n.Kind)
	}
}

func yamlScalar(n *yaml.Node) (*Value, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(n.Value))
		if err != nil {
			return nil, fmt.Errorf("toon: YAML line %d: bad bool %q", n.Line, n.Value)
		}
		return Bool(b), nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			return Int(i), nil
		}
		// Hex, octal and binary forms.
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return Int(i), nil
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return fromFloat(f), nil
		}
		return nil, fmt.Errorf("toon: YAML line %d: bad integer %q", n.Line, n.Value)
	case "!!float":
		return yamlFloat(n)
	default:
		return Str(n.Value), nil
	}
}

func yamlFloat(n *yaml.Node) (*Value, error) {
	switch strings.ToLower(n.Value) {
	case ".inf", "+.inf", "-.inf", ".nan":
		return Null(), nil
	}
	f, err := strconv.ParseFloat(n.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("toon: YAML line %d: bad float %q", n.Line, n.Value)
	}
	return fromFloat(f), nil
}

// ToYAML renders a document value as YAML, object fields in insertion
// order.
func ToYAML(v *Value) ([]byte, error) {
	if v == nil {
		v = Null()
	}
	root := nodeFor(v)

	if v.kind == KindObject || v.kind == KindArray {
		type wframe struct {
			src *Value
			dst *yaml.Node
			idx int
		}
		stack := []*wframe{{src: v, dst: root}}

		for len(stack) > 0 {
			f := stack[len(stack)-1]

			var child *Value
			if f.src.kind == KindObject {
				if f.idx >= len(f.src.fields) {
					stack = stack[:len(stack)-1]
					continue
				}
				fld := f.src.fields[f.idx]
				f.dst.Content = append(f.dst.Content, &yaml.Node{
					Kind:  yaml.ScalarNode,
					Tag:   "!!str",
					Value: fld.Key,
				})
				child = fld.Value
			} else {
				if f.idx >= len(f.src.elems) {
					stack = stack[:len(stack)-1]
					continue
				}
				child = f.src.elems[f.idx]
			}
			f.idx++

			if child == nil {
				child = Null()
			}
			cn := nodeFor(child)
			f.dst.Content = append(f.dst.Content, cn)
			if child.kind == KindObject || child.kind == KindArray {
				stack = append(stack, &wframe{src: child, dst: cn})
			}
		}
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("toon: YAML encode: %w", err)
	}
	return out, nil
}

func nodeFor(v *Value) *yaml.Node {
	switch v.kind {
	case KindObject:
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	case KindArray:
		return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.boolVal)}
	case KindNumber:
		if v.numInt {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.intVal, 10)}
		}
		f := v.floatVal
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(f)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.strVal}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
