package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `products:
  - id: "1"
    name: Atlantic Salmon Fillet
    category: Seafood
    price: 14.5
    stock: 20
  - id: "2"
    name: Bangus
    category: Seafood
    price: 6.5
    stock: 8
    aliases: [milkfish]
  - id: "3"
    name: Squid Rings
    category: Seafood
    price: 4.25
    stock: 0
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func TestRunCLI_SearchSingle(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := writeTestCatalog(t)

	code := runCLI([]string{"search", "--catalog", path, "milkfish"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "single", resp["mode"])
	assert.Equal(t, "milkfish", resp["query"])
	assert.Equal(t, float64(1), resp["count"])
	assert.Equal(t, false, resp["cached"])
}

func TestRunCLI_SearchList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := writeTestCatalog(t)

	code := runCLI([]string{"search", "--catalog", path, "--list", "2 lbs salmon, bangus"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "list", resp["mode"])
	assert.Equal(t, float64(2), resp["totalItems"])
}

func TestRunCLI_SearchOutOfStockFlag(t *testing.T) {
	path := writeTestCatalog(t)

	tests := []struct {
		name  string
		args  []string
		count float64
	}{
		{name: "out of stock hidden by default", args: []string{"search", "--catalog", path, "squid rings"}, count: 0},
		{name: "out of stock included on request", args: []string{"search", "--catalog", path, "--include-out-of-stock", "squid rings"}, count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := runCLI(tt.args, &stdout, &stderr)

			require.Equal(t, 0, code, stderr.String())
			var resp map[string]any
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
			assert.Equal(t, tt.count, resp["count"])
		})
	}
}

func TestRunCLI_SearchErrors(t *testing.T) {
	path := writeTestCatalog(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "limit out of range", args: []string{"search", "--catalog", path, "--limit", "500", "salmon"}, wantErr: "invalid input"},
		{name: "min score out of range", args: []string{"search", "--catalog", path, "--min-score", "101", "salmon"}, wantErr: "invalid input"},
		{name: "missing catalog file", args: []string{"search", "--catalog", filepath.Join(t.TempDir(), "nope.yaml"), "salmon"}, wantErr: "could not read catalog"},
		{name: "no query", args: []string{"search", "--catalog", path}, wantErr: "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := runCLI(tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.wantErr)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunCLI_Suggest(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := writeTestCatalog(t)

	code := runCLI([]string{"suggest", "--catalog", path, "sal"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())

	var resp struct {
		Query string   `json:"query"`
		Terms []string `json:"terms"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "sal", resp.Query)
	assert.Contains(t, resp.Terms, "salmon")
}

func TestRunCLI_HelpSearch(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := runCLI([]string{"help", "search"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "saintathena search [query...] [flags]")
	assert.Contains(t, stdout.String(), "--include-out-of-stock")
	assert.Empty(t, stderr.String())
}
