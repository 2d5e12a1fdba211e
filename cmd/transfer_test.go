package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	n, err := parseAmount("1_000")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, n)

	for _, bad := range []string{"", "0", "-5", "abc", "18446744073709551616"} {
		_, err := parseAmount(bad)
		assert.Error(t, err, bad)
	}
}
