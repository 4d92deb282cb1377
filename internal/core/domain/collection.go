package domain

import "fmt"

// Collection describes one remote collection to source.
type Collection struct {
	// Name is the remote collection queried with "from <Name>".
	Name string `toml:"name"`

	// Node names the cache partition and the type of the emitted nodes.
	// Defaults to Name when empty.
	Node string `toml:"node,omitempty"`

	// Includes are include path expressions, e.g. "Lines[].Product".
	Includes []string `toml:"includes,omitempty"`
}

// NodeName returns the node identifier, falling back to the collection name.
func (c Collection) NodeName() string {
	if c.Node != "" {
		return c.Node
	}
	return c.Name
}

// IncludePaths parses every declared include path in declaration order.
func (c Collection) IncludePaths() ([]IncludePath, error) {
	paths := make([]IncludePath, 0, len(c.Includes))
	for _, raw := range c.Includes {
		p, err := ParseIncludePath(raw)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.Name, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// NodeKey returns the stable external identity of a document within a
// collection: "<node>-<document id>".
func NodeKey(collectionNode string, doc Document) string {
	return collectionNode + "-" + doc.ID()
}
