package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_ReturnsIDsInOrder(t *testing.T) {
	gen := NewFixedIDGenerator(
		[]string{"session-a", "session-b"},
		[]string{"lease-1", "lease-2", "lease-3"},
	)

	assert.Equal(t, "session-a", gen.SessionID())
	assert.Equal(t, "lease-1", gen.LeaseID())
	assert.Equal(t, "lease-2", gen.LeaseID())
	assert.Equal(t, "session-b", gen.SessionID())
	assert.Equal(t, "lease-3", gen.LeaseID())
}

func TestFixedIDGenerator_PanicsOnExhaustion(t *testing.T) {
	gen := NewFixedIDGenerator([]string{"session-a"}, nil)

	_ = gen.SessionID()
	assert.Panics(t, func() { gen.SessionID() })
	assert.Panics(t, func() { gen.LeaseID() })
}

func TestSeqIDGenerator_Sequences(t *testing.T) {
	gen := NewSeqIDGenerator()

	assert.Equal(t, "session-0001", gen.SessionID())
	assert.Equal(t, "lease-0001", gen.LeaseID())
	assert.Equal(t, "lease-0002", gen.LeaseID())
	assert.Equal(t, "session-0002", gen.SessionID())
}
