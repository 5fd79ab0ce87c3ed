package jitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	assert.Equal(t, 0.0, Zero.Float64())
	assert.Equal(t, 0.0, Symmetric(Zero, 5))
}

func TestSeeded_Reproducible(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 10; i++ {
		va, vb := a.Float64(), b.Float64()
		assert.Equal(t, va, vb)
		assert.GreaterOrEqual(t, va, 0.0)
		assert.Less(t, va, 1.0)
	}
}

func TestSymmetric_Range(t *testing.T) {
	src := NewSeeded(7)
	for i := 0; i < 200; i++ {
		v := Symmetric(src, 1)
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
	assert.Equal(t, 0.0, Symmetric(nil, 1))
}
