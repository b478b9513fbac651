package validators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "Maria", SanitizeString("  Maria  ", 120))
	require.Equal(t, "Maria", SanitizeString("Mariana", 5))
	require.Equal(t, "", SanitizeString("   ", 120))

	// Rune-counted truncation keeps accented characters whole.
	require.Equal(t, "João", SanitizeString("João da Silva", 4))
	require.Equal(t, "unbounded", SanitizeString("unbounded", 0))
}
