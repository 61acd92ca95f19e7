package krpc

import "github.com/dhtcore/mldht/bencode"

// Encode lowers msg into a canonical bencoded KRPC dictionary.
func Encode(msg Message) ([]byte, error) {
	var dict map[string]bencode.Value
	switch m := msg.(type) {
	case *Query:
		dict = map[string]bencode.Value{
			"t": bencode.String(m.TID),
			"y": bencode.String([]byte(kindQuery)),
			"q": bencode.String([]byte(m.Args.Method())),
			"a": bencode.Dict(encodeQueryArgs(m.Args)),
		}
	case *Response:
		dict = map[string]bencode.Value{
			"t": bencode.String(m.TID),
			"y": bencode.String([]byte(kindResponse)),
			"r": bencode.Dict(encodeResponseBody(m.Body)),
		}
	case *Error:
		dict = map[string]bencode.Value{
			"t": bencode.String(m.TID),
			"y": bencode.String([]byte(kindError)),
			"e": bencode.List([]bencode.Value{
				bencode.Int(m.Code),
				bencode.String(m.Message),
			}),
		}
	default:
		return nil, invalid("unknown message type %T", msg)
	}
	return bencode.Encode(bencode.Dict(dict))
}

func encodeQueryArgs(args QueryArgs) map[string]bencode.Value {
	switch a := args.(type) {
	case PingArgs:
		return map[string]bencode.Value{
			"id": bencode.String(a.ID),
		}
	case FindNodeArgs:
		return map[string]bencode.Value{
			"id":     bencode.String(a.ID),
			"target": bencode.String(a.Target),
		}
	case GetPeersArgs:
		return map[string]bencode.Value{
			"id":        bencode.String(a.ID),
			"info_hash": bencode.String(a.InfoHash),
		}
	case AnnouncePeerArgs:
		impliedPort := int64(0)
		if a.ImpliedPort {
			impliedPort = 1
		}
		return map[string]bencode.Value{
			"id":           bencode.String(a.ID),
			"implied_port": bencode.Int(impliedPort),
			"port":         bencode.Int(int64(a.Port)),
			"info_hash":    bencode.String(a.InfoHash),
			"token":        bencode.String(a.Token),
		}
	default:
		return nil
	}
}

func encodeResponseBody(body ResponseBody) map[string]bencode.Value {
	switch b := body.(type) {
	case IDOnlyBody:
		return map[string]bencode.Value{
			"id": bencode.String(b.ID),
		}
	case FindNodeBody:
		return map[string]bencode.Value{
			"id":    bencode.String(b.ID),
			"nodes": bencode.String(b.Nodes),
		}
	case GetPeersBody:
		values := make([]bencode.Value, len(b.Values))
		for i, v := range b.Values {
			values[i] = bencode.String(v)
		}
		return map[string]bencode.Value{
			"id":     bencode.String(b.ID),
			"token":  bencode.String(b.Token),
			"values": bencode.List(values),
		}
	default:
		return nil
	}
}
