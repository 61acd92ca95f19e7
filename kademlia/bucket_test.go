package kademlia

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkContact(t *testing.T, seed byte) Contact {
	t.Helper()
	var id Key
	id[0] = seed
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(seed) + 1000}
	c, err := NewContact(id, addr)
	require.NoError(t, err)
	return c
}

func TestBucketUpsertAddsUntilFull(t *testing.T) {
	b := newBucket()
	for i := 0; i < K; i++ {
		status, ok := b.upsert(mkContact(t, byte(i)), time.Now())
		require.True(t, ok)
		require.Equal(t, Added, status)
	}
	assert.True(t, b.full())

	status, ok := b.upsert(mkContact(t, byte(K)), time.Now())
	assert.False(t, ok)
	assert.Equal(t, Rejected, status)
	assert.Len(t, b.contacts, K)
}

func TestBucketUpsertReplacesExistingID(t *testing.T) {
	b := newBucket()
	c := mkContact(t, 1)
	_, ok := b.upsert(c, time.Now())
	require.True(t, ok)

	c2 := c
	c2.Addr = &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 9999}
	status, ok := b.upsert(c2, time.Now())
	require.True(t, ok)
	assert.Equal(t, Replaced, status)

	got, found := b.get(c.ID)
	require.True(t, found)
	assert.Equal(t, c2.Addr, got.Addr)
	assert.Len(t, b.contacts, 1)
}

func TestBucketState(t *testing.T) {
	b := newBucket()
	now := time.Now()
	assert.Equal(t, Fresh, b.state(now))

	b.upsert(mkContact(t, 1), now)
	assert.Equal(t, Live, b.state(now))
	assert.Equal(t, Stale, b.state(now.Add(RefreshInterval+time.Second)))
}
