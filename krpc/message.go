// Package krpc implements the KRPC message layer of the Mainline DHT:
// a structural validator that lifts bencoded dictionaries into typed
// Query/Response/Error messages and lowers them back.
package krpc

// Query method names, as they appear in the "q" field on the wire.
const (
	MethodPing          = "ping"
	MethodFindNode      = "find_node"
	MethodGetPeers      = "get_peers"
	MethodAnnouncePeer  = "announce_peer"
)

// Message kind discriminators, as they appear in the "y" field.
const (
	kindQuery    = "q"
	kindResponse = "r"
	kindError    = "e"
)

// Standard KRPC error codes (BEP-5).
const (
	ErrGeneric       = 201
	ErrServer        = 202
	ErrProtocol      = 203
	ErrMethodUnknown = 204
)

// Message is the sealed sum of the three KRPC message shapes.
type Message interface {
	TransactionID() []byte
	isMessage()
}

// QueryArgs is the sealed sum of the four query argument schemas.
type QueryArgs interface {
	Method() string
	isQueryArgs()
}

// PingArgs is the argument schema for a "ping" query.
type PingArgs struct {
	ID []byte
}

func (PingArgs) Method() string { return MethodPing }
func (PingArgs) isQueryArgs()   {}

// FindNodeArgs is the argument schema for a "find_node" query.
type FindNodeArgs struct {
	ID     []byte
	Target []byte
}

func (FindNodeArgs) Method() string { return MethodFindNode }
func (FindNodeArgs) isQueryArgs()   {}

// GetPeersArgs is the argument schema for a "get_peers" query.
type GetPeersArgs struct {
	ID       []byte
	InfoHash []byte
}

func (GetPeersArgs) Method() string { return MethodGetPeers }
func (GetPeersArgs) isQueryArgs()   {}

// AnnouncePeerArgs is the argument schema for an "announce_peer" query.
// If ImpliedPort is true, Port is ignored by the responder in favour of
// the source UDP port of the datagram.
type AnnouncePeerArgs struct {
	ID          []byte
	ImpliedPort bool
	Port        uint16
	InfoHash    []byte
	Token       []byte
}

func (AnnouncePeerArgs) Method() string { return MethodAnnouncePeer }
func (AnnouncePeerArgs) isQueryArgs()   {}

// Query is a KRPC query message ("y" = "q").
type Query struct {
	TID  []byte
	Args QueryArgs
}

func (q *Query) TransactionID() []byte { return q.TID }
func (*Query) isMessage()              {}

// ResponseBody is the sealed sum of the three response body schemas.
type ResponseBody interface {
	isResponseBody()
}

// IDOnlyBody is the response body to ping and announce_peer.
type IDOnlyBody struct {
	ID []byte
}

func (IDOnlyBody) isResponseBody() {}

// FindNodeBody is the response body to find_node (and to get_peers
// when no peers are known for the requested info_hash).
type FindNodeBody struct {
	ID    []byte
	Nodes []byte // concatenation of 26-byte compact node records
}

func (FindNodeBody) isResponseBody() {}

// GetPeersBody is the response body to get_peers when peers are known.
type GetPeersBody struct {
	ID     []byte
	Token  []byte
	Values [][]byte // each element is a 6-byte compact peer record
}

func (GetPeersBody) isResponseBody() {}

// Response is a KRPC response message ("y" = "r").
type Response struct {
	TID  []byte
	Body ResponseBody
}

func (r *Response) TransactionID() []byte { return r.TID }
func (*Response) isMessage()              {}

// Error is a KRPC error message ("y" = "e").
type Error struct {
	TID     []byte
	Code    int64
	Message []byte
}

func (e *Error) TransactionID() []byte { return e.TID }
func (*Error) isMessage()              {}
