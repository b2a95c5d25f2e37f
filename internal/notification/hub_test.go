package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_OfflineParty(t *testing.T) {
	h := NewHub()

	assert.False(t, h.IsOnline(5))
	assert.False(t, h.SendToParty(5, map[string]string{"hello": "world"}))
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub()

	h.Register(5, nil)
	assert.True(t, h.IsOnline(5))

	h.Unregister(5)
	assert.False(t, h.IsOnline(5))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	h.Register(1, nil)
	h.Register(2, nil)

	h.Close()

	assert.False(t, h.IsOnline(1))
	assert.False(t, h.IsOnline(2))
}
