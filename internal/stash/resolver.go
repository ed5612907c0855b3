package stash

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	envMarkerPrefix   = "ENV."
	vaultMarkerPrefix = "VAULT."
)

// YAMLResolver turns a YAML document into a resolved mapping. String
// values beginning with "ENV." resolve against the environment, and
// values beginning with "VAULT.<path>.<key>" resolve through the
// secret fetcher; both always overwrite an earlier value at the same
// key. Plain scalars and sequences are first-write-wins: a later
// duplicate key at the same level is silently ignored. Nested mappings
// resolve depth-first and reattach in full under their original key.
//
// The resolver walks the parsed node tree directly so that key order
// and duplicate keys from the source document stay observable.
type YAMLResolver struct {
	env     EnvLoader
	vault   VaultLoader
	fetcher SecretFetcher
}

// NewYAMLResolver returns a resolver using the given secret fetcher.
// The fetcher may be nil; resolving a VAULT. marker then fails with
// ErrMissingFetcher.
func NewYAMLResolver(fetcher SecretFetcher) *YAMLResolver {
	return &YAMLResolver{fetcher: fetcher}
}

// ResolveFile reads, parses, and resolves the YAML file at path.
// Read and parse failures are wrapped with the file path; the
// underlying error remains inspectable with errors.Is. Resolution
// failures (missing variables, malformed references, fetch errors)
// propagate as-is.
func (r *YAMLResolver) ResolveFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	root := documentRoot(&doc)
	if root == nil {
		return NewMap(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse config file %q: top-level YAML value must be a mapping", path)
	}

	return r.resolveMapping(root)
}

// resolveMapping walks one mapping level in document order.
func (r *YAMLResolver) resolveMapping(node *yaml.Node) (*Map, error) {
	out := NewMap()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := deref(node.Content[i+1])

		switch value.Kind {
		case yaml.MappingNode:
			nested, err := r.resolveMapping(value)
			if err != nil {
				return nil, err
			}
			// Reattachment overwrites whatever sits at the key.
			out.Set(key, MapValue(nested))
		case yaml.SequenceNode:
			list, err := sequenceValue(value)
			if err != nil {
				return nil, err
			}
			out.SetIfAbsent(key, list)
		case yaml.ScalarNode:
			if isStringScalar(value) {
				switch {
				case strings.HasPrefix(value.Value, envMarkerPrefix):
					name := strings.TrimPrefix(value.Value, envMarkerPrefix)
					resolved, err := r.env.Load(name)
					if err != nil {
						return nil, err
					}
					out.Set(key, StringValue(resolved))
					continue
				case strings.HasPrefix(value.Value, vaultMarkerPrefix):
					resolved, err := r.resolveVaultMarker(value.Value)
					if err != nil {
						return nil, err
					}
					out.Set(key, StringValue(resolved))
					continue
				}
			}
			scalar, err := scalarValue(value)
			if err != nil {
				return nil, err
			}
			out.SetIfAbsent(key, scalar)
		}
	}
	return out, nil
}

// resolveVaultMarker splits "VAULT.<path>.<key>" and fetches the secret.
func (r *YAMLResolver) resolveVaultMarker(marker string) (string, error) {
	ref := strings.TrimPrefix(marker, vaultMarkerPrefix)
	parts := strings.Split(ref, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedVaultReference, marker)
	}
	return r.vault.Load(parts[0], parts[1], r.fetcher)
}

func isStringScalar(node *yaml.Node) bool {
	return node.Tag == "!!str" || node.Tag == ""
}

// scalarValue converts a scalar node into the matching Value variant.
func scalarValue(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case "!!null":
		return NullValue(), nil
	default:
		return StringValue(node.Value), nil
	}
}

// sequenceValue converts a sequence without resolving markers inside it;
// list elements pass through as literal values.
func sequenceValue(node *yaml.Node) (Value, error) {
	items := make([]Value, 0, len(node.Content))
	for _, item := range node.Content {
		converted, err := convertNode(deref(item))
		if err != nil {
			return Value{}, err
		}
		items = append(items, converted)
	}
	return ListValue(items), nil
}

// convertNode converts a node verbatim, with no marker resolution.
func convertNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.MappingNode:
		out := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			converted, err := convertNode(deref(node.Content[i+1]))
			if err != nil {
				return Value{}, err
			}
			out.Set(node.Content[i].Value, converted)
		}
		return MapValue(out), nil
	case yaml.SequenceNode:
		return sequenceValue(node)
	default:
		return scalarValue(node)
	}
}

func deref(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

// documentRoot unwraps the document node. It returns nil for an empty
// or null document, which resolves to an empty mapping.
func documentRoot(doc *yaml.Node) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = deref(node.Content[0])
	}
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil
	}
	return node
}
