package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("portal uniforms")
	assert.Equal(t, "portal uniforms", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.Empty(t, p.Buffers())

	// Releasing an uninitialized provider is a no-op.
	p.Release()
	assert.Empty(t, p.Buffers())
}
