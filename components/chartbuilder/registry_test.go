package chartbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDestroysBeforeReplacing(t *testing.T) {
	reg := NewHandleRegistry()
	destroyed := 0
	reg.Register(0, "c1", "<div>old</div>", func() { destroyed++ })

	replacement := reg.Register(0, "c2", "<div>new</div>", nil)

	assert.Equal(t, 1, destroyed)
	current, ok := reg.Handle(0)
	require.True(t, ok)
	assert.Same(t, replacement, current)
	assert.Equal(t, "c2", current.ChartID)
}

func TestRegistryDestroyIsIdempotent(t *testing.T) {
	reg := NewHandleRegistry()
	destroyed := 0
	handle := reg.Register(0, "c1", "", func() { destroyed++ })
	handle.Destroy()
	handle.Destroy()
	assert.Equal(t, 1, destroyed)
}

func TestRegistrySinglePinnedOverlay(t *testing.T) {
	reg := NewHandleRegistry()
	reg.Register(0, "c1", "", nil)
	reg.Register(1, "c2", "", nil)

	first, err := reg.Pin(0)
	require.NoError(t, err)
	assert.Equal(t, "c1", first.ChartID)

	second, err := reg.Pin(1)
	require.NoError(t, err)

	pinned, ok := reg.Pinned()
	require.True(t, ok)
	assert.Same(t, second, pinned)
}

func TestRegistryPinUnknownPosition(t *testing.T) {
	reg := NewHandleRegistry()
	_, err := reg.Pin(7)
	assert.Error(t, err)
}

func TestRegistryRemoveClearsPin(t *testing.T) {
	reg := NewHandleRegistry()
	destroyed := false
	reg.Register(2, "c1", "", func() { destroyed = true })
	_, err := reg.Pin(2)
	require.NoError(t, err)

	reg.Remove(2)

	assert.True(t, destroyed)
	_, ok := reg.Pinned()
	assert.False(t, ok)
	_, ok = reg.Handle(2)
	assert.False(t, ok)
}

func TestRegistryClear(t *testing.T) {
	reg := NewHandleRegistry()
	destroyed := 0
	reg.Register(0, "a", "", func() { destroyed++ })
	reg.Register(1, "b", "", func() { destroyed++ })

	reg.Clear()

	assert.Equal(t, 2, destroyed)
	assert.Empty(t, reg.Positions())
}
