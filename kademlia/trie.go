package kademlia

import "time"

// MaxPrefixLength bounds how many times a bucket not on the local
// node's own path may split. Buckets on self_id's path may split all
// the way to full key depth. This mirrors BEP-5's routing table
// policy: only the region of the address space around the local node
// needs fine-grained buckets: everywhere else, one bucket per distance
// band out to MaxPrefixLength is enough.
const MaxPrefixLength = 10

// InsertStatus reports the outcome of inserting a contact.
type InsertStatus int

const (
	// Added means the contact was new and fit in its bucket.
	Added InsertStatus = iota
	// Replaced means a contact with the same ID already existed and
	// was overwritten (last writer wins).
	Replaced
	// Rejected means the bucket was full, the contact is not on
	// self_id's path, and no split was possible; the table is
	// unchanged.
	Rejected
)

// node is one binary trie node. Internal nodes own two children and
// no bucket; leaves own a bucket and no children.
type node struct {
	bucket      *bucket
	left, right *node
	depth       int
}

func newLeaf(depth int) *node {
	return &node{bucket: newBucket(), depth: depth}
}

func (n *node) isLeaf() bool {
	return n.bucket != nil
}

// child follows the bit at this node's depth: 1 goes left, 0 goes
// right, matching the convention fixed by insert so that lookups
// descend the same way inserts did.
func (n *node) child(bit int) *node {
	if bit == 1 {
		return n.left
	}
	return n.right
}

func (n *node) setChild(bit int, c *node) {
	if bit == 1 {
		n.left = c
	} else {
		n.right = c
	}
}

// split converts a full leaf into an internal node with two fresh
// leaf children, redistributing its contacts by the next bit.
func (n *node) split() {
	old := n.bucket
	n.bucket = nil
	n.setChild(1, newLeaf(n.depth+1))
	n.setChild(0, newLeaf(n.depth+1))
	for _, c := range old.contacts {
		n.child(c.ID.Bit(n.depth)).bucket.contacts = append(n.child(c.ID.Bit(n.depth)).bucket.contacts, c)
	}
	n.left.bucket.lastChanged = old.lastChanged
	n.right.bucket.lastChanged = old.lastChanged
}

// insert descends to the leaf owning contact.ID and inserts it there,
// per BEP-5's split-on-insert policy: a full leaf that may still split
// is split and the insert retried, so one call can split several
// levels in turn. If the retry ends Rejected, the split is undone.
// onSelfPath indicates whether the path taken to reach the current
// node matches self_id's bits so far; it is threaded down from the
// root rather than recomputed.
func (n *node) insert(c Contact, selfID Key, onSelfPath bool, now time.Time) InsertStatus {
	if !n.isLeaf() {
		bit := c.ID.Bit(n.depth)
		childOnSelfPath := onSelfPath && selfID.Bit(n.depth) == bit
		return n.child(bit).insert(c, selfID, childOnSelfPath, now)
	}

	status, ok := n.bucket.upsert(c, now)
	if ok {
		return status
	}

	limit := MaxPrefixLength
	if onSelfPath {
		limit = KeySize * 8
	}
	if n.depth >= limit {
		return Rejected
	}

	old := n.bucket
	n.split()
	status = n.insert(c, selfID, onSelfPath, now)
	if status == Rejected {
		n.bucket, n.left, n.right = old, nil, nil
	}
	return status
}

// get descends to the leaf owning id and returns its contact, if any.
func (n *node) get(id Key) (Contact, bool) {
	if n.isLeaf() {
		return n.bucket.get(id)
	}
	return n.child(id.Bit(n.depth)).get(id)
}

// collect appends every contact stored under n to out.
func (n *node) collect(out *[]Contact) {
	if n.isLeaf() {
		*out = append(*out, n.bucket.contacts...)
		return
	}
	n.left.collect(out)
	n.right.collect(out)
}

// Prefix identifies a leaf bucket by the path of bits leading to it.
type Prefix struct {
	Bits Key
	Len  int
}

// staleBuckets appends the prefix of every leaf whose bucket is Stale.
func (n *node) staleBuckets(now time.Time, prefix Key, out *[]Prefix) {
	if n.isLeaf() {
		if n.bucket.state(now) == Stale {
			*out = append(*out, Prefix{Bits: prefix, Len: n.depth})
		}
		return
	}
	leftPrefix := prefix
	setBit(&leftPrefix, n.depth, 1)
	n.left.staleBuckets(now, leftPrefix, out)

	rightPrefix := prefix
	setBit(&rightPrefix, n.depth, 0)
	n.right.staleBuckets(now, rightPrefix, out)
}

func setBit(k *Key, i, bit int) {
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	if bit == 1 {
		k[byteIdx] |= 1 << bitIdx
	} else {
		k[byteIdx] &^= 1 << bitIdx
	}
}
