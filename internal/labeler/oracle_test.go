package labeler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOracleMapForm(t *testing.T) {
	doc := `{
		"H100": {"material": "kov", "type": "stĺp značky samostatný", "confidence": 0.92},
		"H200": {"material": "betón", "type": "stĺp verejného osvetlenia", "confidence": 0.75}
	}`
	table, err := ParseOracle([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	e, ok := table.Lookup("H100")
	require.True(t, ok)
	assert.Equal(t, "kov", e.Material)
	assert.InDelta(t, 0.92, e.Confidence, 1e-9)
}

func TestParseOracleListForm(t *testing.T) {
	doc := `[
		{"holder_id": "H100", "material": "kov", "type": "stĺp značky samostatný", "confidence": 0.92},
		{"holder_id": "H200", "material": "drevo", "type": "stĺp značky dvojitý", "confidence": 0.7}
	]`
	table, err := ParseOracle([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	e, ok := table.Lookup("H200")
	require.True(t, ok)
	assert.Equal(t, "drevo", e.Material)
}

func TestParseOracleListFormDuplicateKeepsLater(t *testing.T) {
	doc := `[
		{"holder_id": "H100", "material": "kov", "type": "stĺp značky samostatný", "confidence": 0.5},
		{"holder_id": "H100", "material": "betón", "type": "stĺp značky dvojitý", "confidence": 0.9}
	]`
	table, err := ParseOracle([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	e, ok := table.Lookup("H100")
	require.True(t, ok)
	assert.Equal(t, "betón", e.Material)
}

func TestParseOracleListFormSkipsEmptyIDs(t *testing.T) {
	doc := `[
		{"holder_id": "", "material": "kov", "type": "x", "confidence": 0.5},
		{"holder_id": "H1", "material": "kov", "type": "x", "confidence": 0.5}
	]`
	table, err := ParseOracle([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestParseOracleMalformed(t *testing.T) {
	_, err := ParseOracle([]byte(`"just a string"`))
	require.Error(t, err)
}

func TestLoadOracle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.json")
	doc := `{"H7": {"material": "plast", "type": "stĺp svetelného signalizačného zariadenia", "confidence": 0.66}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	table, err := LoadOracle(path)
	require.NoError(t, err)
	e, ok := table.Lookup("H7")
	require.True(t, ok)
	assert.Equal(t, "plast", e.Material)

	_, err = LoadOracle(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
