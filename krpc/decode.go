package krpc

import "github.com/dhtcore/mldht/bencode"

// Decode performs the bencode decode and then validates the outer
// envelope and the kind-specific inner dictionary, producing a typed
// Message. Decode errors from the codec are returned as-is; envelope
// or schema violations are returned as *InvalidKRPCError.
func Decode(data []byte) (Message, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	dict, ok := v.AsDict()
	if !ok {
		return nil, invalid("top-level value must be a dictionary")
	}

	tidVal, ok := dict["t"]
	if !ok {
		return nil, invalid("missing transaction id field \"t\"")
	}
	tid, ok := tidVal.AsString()
	if !ok {
		return nil, invalid("transaction id field \"t\" must be a string")
	}
	if len(tid) == 0 {
		return nil, invalid("transaction id must be non-empty")
	}

	yVal, ok := dict["y"]
	if !ok {
		return nil, invalid("missing message kind field \"y\"")
	}
	y, ok := yVal.AsString()
	if !ok {
		return nil, invalid("message kind field \"y\" must be a string")
	}

	switch string(y) {
	case kindQuery:
		return decodeQuery(tid, dict)
	case kindResponse:
		return decodeResponse(tid, dict)
	case kindError:
		return decodeError(tid, dict)
	default:
		return nil, invalid("unknown message kind %q", y)
	}
}

func stringField(dict map[string]bencode.Value, key string) ([]byte, bool) {
	v, ok := dict[key]
	if !ok {
		return nil, false
	}
	return v.AsString()
}

func intField(dict map[string]bencode.Value, key string) (int64, bool) {
	v, ok := dict[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func decodeQuery(tid []byte, dict map[string]bencode.Value) (Message, error) {
	qVal, ok := dict["q"]
	if !ok {
		return nil, invalid("query missing method name field \"q\"")
	}
	method, ok := qVal.AsString()
	if !ok {
		return nil, invalid("query method name field \"q\" must be a string")
	}

	aVal, ok := dict["a"]
	if !ok {
		return nil, invalid("query missing arguments field \"a\"")
	}
	a, ok := aVal.AsDict()
	if !ok {
		return nil, invalid("query arguments field \"a\" must be a dictionary")
	}

	var args QueryArgs
	switch string(method) {
	case MethodPing:
		id, ok := stringField(a, "id")
		if !ok {
			return nil, invalid("ping query missing \"id\"")
		}
		args = PingArgs{ID: id}

	case MethodFindNode:
		id, ok := stringField(a, "id")
		if !ok {
			return nil, invalid("find_node query missing \"id\"")
		}
		target, ok := stringField(a, "target")
		if !ok {
			return nil, invalid("find_node query missing \"target\"")
		}
		args = FindNodeArgs{ID: id, Target: target}

	case MethodGetPeers:
		id, ok := stringField(a, "id")
		if !ok {
			return nil, invalid("get_peers query missing \"id\"")
		}
		infoHash, ok := stringField(a, "info_hash")
		if !ok {
			return nil, invalid("get_peers query missing \"info_hash\"")
		}
		args = GetPeersArgs{ID: id, InfoHash: infoHash}

	case MethodAnnouncePeer:
		id, ok := stringField(a, "id")
		if !ok {
			return nil, invalid("announce_peer query missing \"id\"")
		}
		infoHash, ok := stringField(a, "info_hash")
		if !ok {
			return nil, invalid("announce_peer query missing \"info_hash\"")
		}
		token, ok := stringField(a, "token")
		if !ok {
			return nil, invalid("announce_peer query missing \"token\"")
		}
		impliedPortN, ok := intField(a, "implied_port")
		if !ok {
			return nil, invalid("announce_peer query missing \"implied_port\"")
		}
		if impliedPortN != 0 && impliedPortN != 1 {
			return nil, invalid("announce_peer query \"implied_port\" must be 0 or 1, got %d", impliedPortN)
		}
		portN, ok := intField(a, "port")
		if !ok {
			return nil, invalid("announce_peer query missing \"port\"")
		}
		if portN < 0 || portN > 0xFFFF {
			return nil, invalid("announce_peer query \"port\" out of range: %d", portN)
		}
		args = AnnouncePeerArgs{
			ID:          id,
			ImpliedPort: impliedPortN == 1,
			Port:        uint16(portN),
			InfoHash:    infoHash,
			Token:       token,
		}

	default:
		return nil, invalid("unknown query method %q", method)
	}

	return &Query{TID: tid, Args: args}, nil
}

func decodeResponse(tid []byte, dict map[string]bencode.Value) (Message, error) {
	rVal, ok := dict["r"]
	if !ok {
		return nil, invalid("response missing body field \"r\"")
	}
	r, ok := rVal.AsDict()
	if !ok {
		return nil, invalid("response body field \"r\" must be a dictionary")
	}

	id, ok := stringField(r, "id")
	if !ok {
		return nil, invalid("response missing \"id\"")
	}

	// Discrimination is structural, in priority: values, then nodes,
	// then id-only. This mirrors the wire format, where the response
	// shape depends on the (unreferenced) original query.
	if valuesVal, ok := r["values"]; ok {
		valueList, ok := valuesVal.AsList()
		if !ok {
			return nil, invalid("response \"values\" must be a list")
		}
		token, ok := stringField(r, "token")
		if !ok {
			return nil, invalid("get_peers response with \"values\" missing \"token\"")
		}
		values := make([][]byte, len(valueList))
		for i, v := range valueList {
			s, ok := v.AsString()
			if !ok {
				return nil, invalid("response \"values\" element %d must be a string", i)
			}
			values[i] = s
		}
		return &Response{TID: tid, Body: GetPeersBody{ID: id, Token: token, Values: values}}, nil
	}

	if nodes, ok := stringField(r, "nodes"); ok {
		return &Response{TID: tid, Body: FindNodeBody{ID: id, Nodes: nodes}}, nil
	}

	return &Response{TID: tid, Body: IDOnlyBody{ID: id}}, nil
}

func decodeError(tid []byte, dict map[string]bencode.Value) (Message, error) {
	eVal, ok := dict["e"]
	if !ok {
		return nil, invalid("error message missing \"e\"")
	}
	list, ok := eVal.AsList()
	if !ok || len(list) != 2 {
		return nil, invalid("error message \"e\" must be a two-element list")
	}
	code, ok := list[0].AsInt()
	if !ok {
		return nil, invalid("error message code must be an integer")
	}
	message, ok := list[1].AsString()
	if !ok {
		return nil, invalid("error message text must be a string")
	}
	return &Error{TID: tid, Code: code, Message: message}, nil
}
