package services

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

// nodeNamespace scopes node UUIDs to ravensource.
var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/ravensource"))

// NodeBuilder turns resolved documents into nodes.
type NodeBuilder struct {
	namespace uuid.UUID
}

// NewNodeBuilder creates a node builder using the ravensource namespace.
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{namespace: nodeNamespace}
}

// Build creates the node for a document of the collection.
// The node ID is a name-based UUID of "<node>-<document id>", so the same
// document always yields the same node ID.
func (b *NodeBuilder) Build(collection domain.Collection, doc domain.Document) (domain.Node, error) {
	node := collection.NodeName()

	docID := doc.ID()
	if docID == "" {
		return domain.Node{}, fmt.Errorf("%w: collection %s", domain.ErrMissingDocumentID, collection.Name)
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return domain.Node{}, fmt.Errorf("encode document %s: %w", docID, err)
	}

	key := domain.NodeKey(node, doc)
	return domain.Node{
		ID:            uuid.NewSHA1(b.namespace, []byte(key)).String(),
		Key:           key,
		DocumentID:    docID,
		Type:          node,
		Content:       string(content),
		ContentDigest: ContentDigest(content),
		Fields:        doc,
	}, nil
}

// ContentDigest returns the hex SHA3-256 fingerprint of content.
func ContentDigest(content []byte) string {
	sum := sha3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
