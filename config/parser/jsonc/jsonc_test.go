package jsonc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	data := []byte(`{
		// the listening port
		"port": 3000,
		/* block
		   comment */
		"list": ["a", "b",],
	}`)

	doc, err := parser.Parse(data, "")

	require.NoError(t, err)
	assert.Equal(t, json.Number("3000"), doc["port"])
	assert.Equal(t, []any{"a", "b"}, doc["list"])
}

func TestParser_Parse_Path(t *testing.T) {
	t.Parallel()

	parser := NewParser()
	data := []byte(`{"db": {/* primary */ "host": "db.local"}}`)

	doc, err := parser.Parse(data, "db")
	require.NoError(t, err)
	assert.Equal(t, "db.local", doc["host"])

	_, err = parser.Parse(data, "cache")
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestParser_Parse_Malformed(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	_, err := parser.Parse([]byte(`{"port": // missing value
	}`), "")

	require.Error(t, err)
}
