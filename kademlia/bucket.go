package kademlia

import "time"

// K is the maximum number of contacts held by a single bucket.
const K = 8

// RefreshInterval is how long a bucket may go without a write before
// it is considered Stale and in need of an external find_node refresh.
const RefreshInterval = 15 * time.Minute

// State is a bucket's position in the Fresh -> Live -> Stale lifecycle.
// It is derived on read from lastChanged; it never gates insert or
// lookup, it only surfaces a needs-refresh signal to the caller.
type State int

const (
	// Fresh buckets have never been written to.
	Fresh State = iota
	// Live buckets were written to within RefreshInterval.
	Live
	// Stale buckets are due for an external find_node refresh.
	Stale
)

// bucket is a capacity-K set of contacts plus the timestamp of its
// last mutation. Insertion order is not preserved.
type bucket struct {
	contacts    []Contact
	lastChanged time.Time
}

func newBucket() *bucket {
	return &bucket{contacts: make([]Contact, 0, K)}
}

func (b *bucket) full() bool {
	return len(b.contacts) >= K
}

func (b *bucket) indexOf(id Key) int {
	for i, c := range b.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *bucket) get(id Key) (Contact, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b.contacts[i], true
	}
	return Contact{}, false
}

// upsert inserts c, or overwrites the existing entry with the same ID
// (last writer wins). The second return value is false, without
// modifying the bucket, if c is new and the bucket is already full;
// the caller decides from there whether a split is in order.
func (b *bucket) upsert(c Contact, now time.Time) (InsertStatus, bool) {
	if i := b.indexOf(c.ID); i >= 0 {
		b.contacts[i] = c
		b.lastChanged = now
		return Replaced, true
	}
	if b.full() {
		return Rejected, false
	}
	b.contacts = append(b.contacts, c)
	b.lastChanged = now
	return Added, true
}

func (b *bucket) state(now time.Time) State {
	if b.lastChanged.IsZero() {
		return Fresh
	}
	if now.Sub(b.lastChanged) > RefreshInterval {
		return Stale
	}
	return Live
}
