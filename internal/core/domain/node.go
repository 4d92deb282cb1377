package domain

// Node is the record handed to the downstream consumer for each document.
type Node struct {
	// ID is a deterministic UUID derived from Key.
	ID string

	// Key is the stable external identity, "<node>-<document id>".
	Key string

	// DocumentID is the document's own id from its metadata.
	DocumentID string

	// Type is the collection node the document belongs to.
	Type string

	// Content is the JSON serialisation of the document.
	Content string

	// ContentDigest fingerprints Content.
	ContentDigest string

	// Fields is the resolved document.
	Fields Document
}

// CacheEntry summarises what the cache holds for one collection node.
type CacheEntry struct {
	Node          string
	Etag          string
	DocumentCount int
}
