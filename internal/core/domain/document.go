package domain

// Reserved metadata keys used by the remote database.
const (
	// MetadataKey holds the document's metadata sub-mapping.
	MetadataKey = "@metadata"

	// IDKey is the identity field inside the metadata sub-mapping.
	IDKey = "@id"
)

// Document is a schemaless document as returned by the remote database.
// Values are scalars, nested documents or ordered sequences.
// Include resolution rewrites fields in place.
type Document map[string]any

// ID returns the document's identity from its metadata, or "" if it has none.
func (d Document) ID() string {
	meta, ok := asMap(d[MetadataKey])
	if !ok {
		return ""
	}
	id, _ := meta[IDKey].(string)
	return id
}

// Batch is the ordered sequence of documents returned by one query.
type Batch []Document

// Includes maps referenced document ids to the referenced documents.
type Includes map[string]Document

// QueryResult is what the remote query collaborator returns for one fetch.
type QueryResult struct {
	// Documents are the collection's documents in remote order.
	Documents Batch

	// Includes holds the documents referenced by the declared include paths.
	Includes Includes

	// Etag identifies the remote state the result was taken from.
	Etag string
}

// asMap views a nested value as a field mapping.
// JSON decoding yields map[string]any while resolved includes are Documents.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Document:
		return m, m != nil
	case map[string]any:
		return m, m != nil
	default:
		return nil, false
	}
}
