package kademlia

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(t *testing.T, s string) *net.UDPAddr {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", s)
	require.NoError(t, err)
	return addr
}

func TestTableInsertThenGet(t *testing.T) {
	selfID, err := NewKey([]byte("12345678901234567890"))
	require.NoError(t, err)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	id, err := NewKey([]byte("12345678900987654321"))
	require.NoError(t, err)
	c, err := NewContact(id, mustAddr(t, "127.0.0.1:8921"))
	require.NoError(t, err)

	status := table.Insert(c)
	assert.Equal(t, Added, status)
	assert.Equal(t, 1, table.Count())

	got, ok := table.Get(id)
	require.True(t, ok)
	assert.Equal(t, c.Addr, got.Addr)
	table.checkInvariants()
}

func TestTableInsertSelfIsRejected(t *testing.T) {
	selfID, err := NewKey([]byte("12345678901234567890"))
	require.NoError(t, err)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	c, err := NewContact(selfID, mustAddr(t, "127.0.0.1:7891"))
	require.NoError(t, err)

	status := table.Insert(c)
	assert.Equal(t, Rejected, status)
	assert.Equal(t, 0, table.Count())
}

func TestTableGetMissingReturnsFalse(t *testing.T) {
	selfID, err := NewKey([]byte("12345678901234567890"))
	require.NoError(t, err)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	var other Key
	other[0] = 0xAB
	_, ok := table.Get(other)
	assert.False(t, ok)
}

func TestTableGetClosestOrdersByXORDistance(t *testing.T) {
	selfID, err := NewKey([]byte("12345678901234567890"))
	require.NoError(t, err)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	var ids []Key
	for i := 1; i <= 5; i++ {
		var id Key
		id[0] = byte(i)
		ids = append(ids, id)
		c, err := NewContact(id, mustAddr(t, "127.0.0.1:8000"))
		require.NoError(t, err)
		require.Equal(t, Added, table.Insert(c))
	}

	target := ids[2]
	closest := table.GetClosest(target, 3)
	require.Len(t, closest, 3)
	assert.Equal(t, target, closest[0].ID)
	for i := 1; i < len(closest); i++ {
		d1 := Distance(closest[i-1].ID, target)
		d2 := Distance(closest[i].ID, target)
		assert.False(t, Less(d2, d1), "results must be non-decreasing in XOR distance")
	}
}

func TestTableStaleBucketsReflectsAge(t *testing.T) {
	selfID, err := NewKey([]byte("12345678901234567890"))
	require.NoError(t, err)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	var id Key
	id[0] = 0x42
	c, err := NewContact(id, mustAddr(t, "127.0.0.1:8000"))
	require.NoError(t, err)
	require.Equal(t, Added, table.Insert(c))

	assert.Empty(t, table.StaleBuckets(time.Now()))
	assert.NotEmpty(t, table.StaleBuckets(time.Now().Add(RefreshInterval+time.Minute)))
}

func TestTableRejectsNinthContactInFullOffSelfPathBucket(t *testing.T) {
	selfID := keyWithPrefix(t, "11111111", 0)
	table := New(selfID, mustAddr(t, "127.0.0.1:7891"))

	// All share a zero-prefix leaf far from self_id's leading 1s and
	// fit in one bucket without ever sharing self_id's path, so once
	// full the bucket cannot split on this contact's account.
	var inserted []Contact
	for i := 0; i < K; i++ {
		var id Key
		id[0] = 0x00
		id[19] = byte(i + 1)
		c, err := NewContact(id, mustAddr(t, "127.0.0.1:8000"))
		require.NoError(t, err)
		require.Equal(t, Added, table.Insert(c))
		inserted = append(inserted, c)
	}

	var ninth Key
	ninth[0] = 0x00
	ninth[19] = 0xFF
	c, err := NewContact(ninth, mustAddr(t, "127.0.0.1:9999"))
	require.NoError(t, err)
	status := table.Insert(c)
	assert.Equal(t, Rejected, status)
	assert.Equal(t, K, table.Count())

	for _, want := range inserted {
		got, ok := table.Get(want.ID)
		require.True(t, ok)
		assert.Equal(t, want.Addr, got.Addr)
	}
	table.checkInvariants()
}
