package kademlia

import (
	"net"
	"sort"
	"sync"
	"time"

	dhterr "github.com/dhtcore/mldht/err"
)

// Table is the Kademlia routing table: a trie of k-buckets keyed on
// XOR distance to SelfID. It is safe for concurrent use: writes
// (Insert) are serialized against each other and against readers,
// while Get/GetClosest/StaleBuckets may run concurrently with other
// readers. This single RWMutex-around-the-root discipline is what
// the minimum discipline required: single-writer/multi-reader.
type Table struct {
	SelfID   Key
	SelfAddr *net.UDPAddr

	mu        sync.RWMutex
	root      *node
	nodeCount int
}

// New creates an empty routing table for the given local identity.
func New(selfID Key, selfAddr *net.UDPAddr) *Table {
	return &Table{
		SelfID:   selfID,
		SelfAddr: selfAddr,
		root:     newLeaf(0),
	}
}

// Insert adds or updates a contact in the routing table. Inserting the
// local node's own ID is always Rejected: a node does not route to
// itself.
func (t *Table) Insert(c Contact) InsertStatus {
	if c.ID == t.SelfID {
		return Rejected
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	status := t.root.insert(c, t.SelfID, true, time.Now())
	if status == Added {
		t.nodeCount++
	}
	return status
}

// Get returns the contact with the given ID, if the table holds one.
func (t *Table) Get(id Key) (Contact, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root.get(id)
}

// GetClosest returns up to n contacts in ascending XOR-distance order
// to key. Ties are broken arbitrarily but deterministically by the
// underlying sort.
func (t *Table) GetClosest(key Key, n int) []Contact {
	t.mu.RLock()
	var all []Contact
	t.root.collect(&all)
	t.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return Less(Distance(all[i].ID, key), Distance(all[j].ID, key))
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// StaleBuckets returns the prefix of every bucket whose last write is
// older than RefreshInterval, for the external refresh subsystem to
// act on.
func (t *Table) StaleBuckets(now time.Time) []Prefix {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Prefix
	t.root.staleBuckets(now, Key{}, &out)
	return out
}

// Count returns the total number of contacts stored in the table.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodeCount
}

// checkInvariants walks the trie and asserts the partition and capacity
// invariants, no duplicate IDs within a bucket, the running contact
// count, and that no node off self_id's path was split at a depth of
// MaxPrefixLength or more. It panics via dhterr.Assert on
// violation and is meant for tests, not the hot path.
func (t *Table) checkInvariants() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total int
	checkNode(t.root, Key{}, t.SelfID, true, &total)
	dhterr.Assert(total == t.nodeCount)
}

func checkNode(n *node, prefix Key, selfID Key, onSelfPath bool, total *int) {
	if n.isLeaf() {
		dhterr.Assert(len(n.bucket.contacts) <= K)
		seen := make(map[Key]bool, len(n.bucket.contacts))
		for _, c := range n.bucket.contacts {
			dhterr.Assert(!seen[c.ID])
			seen[c.ID] = true
			for i := 0; i < n.depth; i++ {
				dhterr.Assert(c.ID.Bit(i) == prefix.Bit(i))
			}
		}
		*total += len(n.bucket.contacts)
		return
	}

	if !onSelfPath {
		dhterr.Assert(n.depth < MaxPrefixLength)
	}

	leftPrefix := prefix
	setBit(&leftPrefix, n.depth, 1)
	checkNode(n.left, leftPrefix, selfID, onSelfPath && selfID.Bit(n.depth) == 1, total)

	rightPrefix := prefix
	setBit(&rightPrefix, n.depth, 0)
	checkNode(n.right, rightPrefix, selfID, onSelfPath && selfID.Bit(n.depth) == 0, total)
}
