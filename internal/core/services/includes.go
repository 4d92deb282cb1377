package services

import "github.com/custodia-labs/ravensource/internal/core/domain"

// MapIncludes resolves every include path on every document of the batch,
// applying paths in declaration order. Documents are rewritten in place and
// the same batch is returned.
func MapIncludes(batch domain.Batch, includes domain.Includes, paths []domain.IncludePath) domain.Batch {
	if len(paths) == 0 {
		return batch
	}

	for _, doc := range batch {
		for _, path := range paths {
			path.Resolve(doc, includes)
		}
	}

	return batch
}
