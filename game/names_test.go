package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Alice", NormalizeName("  Alice  "))
	assert.Equal(t, DefaultName, NormalizeName(""))
	assert.Equal(t, DefaultName, NormalizeName(" \t "))
	assert.Equal(t, strings.Repeat("x", MaxNameLength), NormalizeName(strings.Repeat("x", 30)))
	assert.Equal(t, strings.Repeat("é", MaxNameLength), NormalizeName(strings.Repeat("é", 25)))
}
