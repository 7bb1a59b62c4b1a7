package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownPreset(t *testing.T) {
	p, ok := Lookup("mingw-w64-x86_64")
	require.True(t, ok)
	assert.Equal(t, "x86_64-w64-mingw32-", p.CompilerPrefix)
}

func TestMustLookupUnknownPreset(t *testing.T) {
	_, err := MustLookup("does-not-exist")
	require.Error(t, err)
}

func TestNamesNonEmpty(t *testing.T) {
	assert.NotEmpty(t, Names())
}
