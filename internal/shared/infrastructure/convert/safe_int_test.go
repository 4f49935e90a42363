package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUintSafe(t *testing.T) {
	assert.Equal(t, uint(5), IntToUintSafe(5))
	assert.Equal(t, uint(0), IntToUintSafe(0))
	assert.Panics(t, func() { IntToUintSafe(-1) })
}

func TestIntToUintClamped(t *testing.T) {
	assert.Equal(t, uint(5), IntToUintClamped(5))
	assert.Equal(t, uint(0), IntToUintClamped(-10))
}
