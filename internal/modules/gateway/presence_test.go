package gateway

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceIdentify(t *testing.T) {
	p := NewPresence()

	p.Identify("user-1", "conn-a")
	conn, ok := p.ConnFor("user-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-a", conn)
	assert.Equal(t, 1, p.Count())
}

// A user reconnecting from a second tab displaces the first connection:
// only the most recent one receives pushes.
func TestPresenceLastWriterWins(t *testing.T) {
	p := NewPresence()

	p.Identify("user-1", "conn-a")
	p.Identify("user-1", "conn-b")

	conn, ok := p.ConnFor("user-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-b", conn)
	assert.Equal(t, 1, p.Count())

	// The displaced connection's disconnect must not evict the new one.
	p.Disconnect("conn-a")
	conn, ok = p.ConnFor("user-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-b", conn)
}

func TestPresenceDisconnect(t *testing.T) {
	p := NewPresence()

	p.Identify("user-1", "conn-a")
	p.Disconnect("conn-a")

	_, ok := p.ConnFor("user-1")
	assert.False(t, ok)
	assert.Zero(t, p.Count())

	// Disconnecting an unknown connection is a no-op.
	p.Disconnect("conn-x")
}

func TestPresenceConnectionReassignedToNewUser(t *testing.T) {
	p := NewPresence()

	p.Identify("user-1", "conn-a")
	p.Identify("user-2", "conn-a")

	_, ok := p.ConnFor("user-1")
	assert.False(t, ok)
	conn, ok := p.ConnFor("user-2")
	assert.True(t, ok)
	assert.Equal(t, "conn-a", conn)
}

func TestPresenceConcurrentAccess(t *testing.T) {
	p := NewPresence()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", n%4)
			conn := fmt.Sprintf("conn-%d", n)
			p.Identify(user, conn)
			p.ConnFor(user)
			p.Disconnect(conn)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, p.Count(), 4)
}
