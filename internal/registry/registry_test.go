package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nfrund/storefront/internal/config"
	"github.com/nfrund/storefront/internal/simulate"
)

func TestRegistry(t *testing.T) {
	cfg := &config.Config{HTTPAddr: ":0"}
	reg := New(cfg)
	assert.Same(t, cfg, reg.Config())

	_, ok := Get(reg, RandomKey)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet(reg, RandomKey) })

	seq := simulate.NewSequence(0.5)
	Set[simulate.Random](reg, RandomKey, seq)

	got, ok := Get(reg, RandomKey)
	assert.True(t, ok)
	assert.Equal(t, 0.5, got.Float64())
	assert.NotPanics(t, func() { MustGet(reg, RandomKey) })
}
