package krpc

import (
	"encoding/binary"
	"fmt"
	"net"
)

// compactNodeSize is the length in bytes of one compact node info
// record: 20-byte node ID, 4-byte IPv4 address, 2-byte big-endian port.
const compactNodeSize = 26

// compactPeerSize is the length in bytes of one compact peer info
// record: 4-byte IPv4 address, 2-byte big-endian port.
const compactPeerSize = 6

// CompactNode pairs a 20-byte node ID with its IPv4 address, the value
// the routing table and the external lookup subsystem exchange once a
// FindNodeBody.Nodes blob has been split into records.
type CompactNode struct {
	ID   []byte
	Addr *net.UDPAddr
}

// EncodeCompactNode renders one 26-byte compact node info record.
// id must be exactly 20 bytes and addr must hold an IPv4 address.
func EncodeCompactNode(id []byte, addr *net.UDPAddr) ([]byte, error) {
	if len(id) != 20 {
		return nil, fmt.Errorf("krpc: compact node id must be 20 bytes, got %d", len(id))
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("krpc: compact node requires an IPv4 address, got %s", addr.IP)
	}
	buf := make([]byte, compactNodeSize)
	copy(buf[:20], id)
	copy(buf[20:24], ip4)
	binary.BigEndian.PutUint16(buf[24:26], uint16(addr.Port))
	return buf, nil
}

// EncodeCompactNodes concatenates the compact records for each node,
// silently dropping entries that cannot be encoded (non-IPv4 address),
// mirroring the wire format's tolerance for a partial node list.
func EncodeCompactNodes(nodes []CompactNode) []byte {
	var buf []byte
	for _, n := range nodes {
		rec, err := EncodeCompactNode(n.ID, n.Addr)
		if err != nil {
			continue
		}
		buf = append(buf, rec...)
	}
	return buf
}

// DecodeCompactNodes splits the concatenation of compact node info
// records found in a FindNodeBody.Nodes or GetPeersBody (nodes
// variant) field.
func DecodeCompactNodes(data []byte) ([]CompactNode, error) {
	if len(data)%compactNodeSize != 0 {
		return nil, fmt.Errorf("krpc: compact nodes length %d not a multiple of %d", len(data), compactNodeSize)
	}
	count := len(data) / compactNodeSize
	nodes := make([]CompactNode, count)
	for i := 0; i < count; i++ {
		rec := data[i*compactNodeSize : (i+1)*compactNodeSize]
		id := make([]byte, 20)
		copy(id, rec[:20])
		ip := make(net.IP, 4)
		copy(ip, rec[20:24])
		port := binary.BigEndian.Uint16(rec[24:26])
		nodes[i] = CompactNode{ID: id, Addr: &net.UDPAddr{IP: ip, Port: int(port)}}
	}
	return nodes, nil
}

// DecodeCompactPeer parses one 6-byte compact peer info record, as
// found in a GetPeersBody.Values element.
func DecodeCompactPeer(data []byte) (*net.UDPAddr, error) {
	if len(data) != compactPeerSize {
		return nil, fmt.Errorf("krpc: compact peer must be %d bytes, got %d", compactPeerSize, len(data))
	}
	ip := make(net.IP, 4)
	copy(ip, data[:4])
	port := binary.BigEndian.Uint16(data[4:6])
	return &net.UDPAddr{IP: ip, Port: int(port)}, nil
}

// EncodeCompactPeer renders one 6-byte compact peer info record.
func EncodeCompactPeer(addr *net.UDPAddr) ([]byte, error) {
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("krpc: compact peer requires an IPv4 address, got %s", addr.IP)
	}
	buf := make([]byte, compactPeerSize)
	copy(buf[:4], ip4)
	binary.BigEndian.PutUint16(buf[4:6], uint16(addr.Port))
	return buf, nil
}
