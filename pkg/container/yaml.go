package container

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded yaml.Node tree into traversable values:
// mappings become *Object (declaration order kept, last duplicate wins),
// sequences become []any and scalars are resolved by yaml.v3.
func FromYAML(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromYAML(n.Content[0])
	case yaml.MappingNode:
		obj := NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			key, err := FromYAML(keyNode)
			if err != nil {
				return nil, err
			}
			val, err := FromYAML(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(fmt.Sprint(key), val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := FromYAML(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		var val any
		if err := n.Decode(&val); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return val, nil
	case yaml.AliasNode:
		if n.Alias != nil {
			return FromYAML(n.Alias)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %s", n.Line, kindName(n.Kind))
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}
