package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentials(t *testing.T) {
	creds, err := parseCredentials([]string{"alice:secret", "bob:pass:word"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"alice": "secret",
		"bob":   "pass:word", // only the first colon splits
	}, creds)

	creds, err = parseCredentials(nil)
	require.NoError(t, err)
	assert.Empty(t, creds)

	for _, bad := range []string{"nocolon", ":nouser"} {
		_, err := parseCredentials([]string{bad})
		assert.Error(t, err, bad)
	}
}
