package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ravensource/internal/core/domain"
)

func mustPaths(t *testing.T, raw ...string) []domain.IncludePath {
	t.Helper()
	paths, err := domain.Collection{Name: "test", Includes: raw}.IncludePaths()
	require.NoError(t, err)
	return paths
}

func TestMapIncludes_NoPaths(t *testing.T) {
	batch := domain.Batch{doc("orders/1", map[string]any{"Company": "companies/1"})}
	includes := domain.Includes{"companies/1": doc("companies/1", nil)}

	out := MapIncludes(batch, includes, nil)

	assert.Equal(t, "companies/1", out[0]["Company"])
}

func TestMapIncludes_MultiplePaths(t *testing.T) {
	batch := domain.Batch{
		doc("orders/1", map[string]any{
			"Company":  "companies/1",
			"Employee": "employees/9",
			"Lines": []any{
				map[string]any{"Product": "products/1"},
				map[string]any{"Product": "products/2"},
			},
		}),
		doc("orders/2", map[string]any{"Company": "companies/404"}),
	}
	includes := domain.Includes{
		"companies/1": doc("companies/1", map[string]any{"Name": "Acme"}),
		"products/1":  doc("products/1", map[string]any{"Name": "Chai"}),
		"products/2":  doc("products/2", map[string]any{"Name": "Chang"}),
	}

	out := MapIncludes(batch, includes, mustPaths(t, "Company", "Lines[].Product"))

	require.Len(t, out, 2)
	assert.Equal(t, "Acme", out[0]["Company"].(domain.Document)["Name"])
	assert.Equal(t, "employees/9", out[0]["Employee"], "undeclared path is untouched")
	lines := out[0]["Lines"].([]any)
	assert.Equal(t, "Chai", lines[0].(map[string]any)["Product"].(domain.Document)["Name"])
	assert.Equal(t, "Chang", lines[1].(map[string]any)["Product"].(domain.Document)["Name"])
	assert.Equal(t, "companies/404", out[1]["Company"], "missing include keeps the id")
}

func TestMapIncludes_ReturnsSameBatch(t *testing.T) {
	batch := domain.Batch{doc("orders/1", map[string]any{"Company": "companies/1"})}
	includes := domain.Includes{"companies/1": doc("companies/1", nil)}

	out := MapIncludes(batch, includes, mustPaths(t, "Company"))

	require.Len(t, out, 1)
	_, resolved := batch[0]["Company"].(domain.Document)
	assert.True(t, resolved, "resolution happens in place")
}

func TestMapIncludes_EmptyBatch(t *testing.T) {
	assert.Empty(t, MapIncludes(domain.Batch{}, domain.Includes{}, mustPaths(t, "Company")))
	assert.Nil(t, MapIncludes(nil, nil, mustPaths(t, "Company")))
}
