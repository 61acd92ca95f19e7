package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInt(t *testing.T) {
	v, err := Decode([]byte("i54e"))
	require.NoError(t, err)
	assert.Equal(t, Int(54), v)

	v, err = Decode([]byte("i0e"))
	require.NoError(t, err)
	assert.Equal(t, Int(0), v)

	v, err = Decode([]byte("i-54e"))
	require.NoError(t, err)
	assert.Equal(t, Int(-54), v)

	_, err = Decode([]byte("ie"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty integer")

	_, err = Decode([]byte("i54"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated integer")

	_, err = Decode([]byte("i-0e"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative zero")

	_, err = Decode([]byte("i03e"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leading zero")
}

func TestDecodeString(t *testing.T) {
	v, err := Decode([]byte("5:hello"))
	require.NoError(t, err)
	assert.Equal(t, String([]byte("hello")), v)

	v, err = Decode([]byte("0:"))
	require.NoError(t, err)
	assert.Equal(t, String([]byte{}), v)

	_, err = Decode([]byte("5:hell"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlong string")
}

func TestDecodeList(t *testing.T) {
	v, err := Decode([]byte("l5:hello5:worldi1234ee"))
	require.NoError(t, err)
	assert.Equal(t, List([]Value{
		String([]byte("hello")),
		String([]byte("world")),
		Int(1234),
	}), v)

	_, err = Decode([]byte("l5:hello5:worldi1234e"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing closing")
}

func TestDecodeDict(t *testing.T) {
	v, err := Decode([]byte("d7:balancei1000e4:coin3:btc4:name5:jisene"))
	require.NoError(t, err)
	assert.Equal(t, Dict(map[string]Value{
		"balance": Int(1000),
		"coin":    String([]byte("btc")),
		"name":    String([]byte("jisen")),
	}), v)

	_, err = Decode([]byte("d7:balancei1000e4:coin3:btc4:name5:jisen"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing closing")

	_, err = Decode([]byte("di1ei2ee"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dict key must be a string")
}

func TestEncodeCanonicalKeyOrder(t *testing.T) {
	v := Dict(map[string]Value{
		"z": Int(1),
		"a": Int(2),
		"m": Int(3),
	})
	out, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "d1:ai2e1:mi3e1:zi1ee", string(out))
}

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte("i54e"),
		[]byte("i-1e"),
		[]byte("i0e"),
		[]byte("4:spam"),
		[]byte("0:"),
		[]byte("l4:spam4:eggse"),
		[]byte("d3:cow3:moo4:spam4:eggse"),
		[]byte("d4:spaml1:a1:bee"),
		[]byte("ll1:aeli2eee"),
	}
	for _, c := range cases {
		v, err := Decode(c)
		require.NoError(t, err)
		out, err := Encode(v)
		require.NoError(t, err)

		v2, err := Decode(out)
		require.NoError(t, err)
		assert.Equal(t, v, v2, "round trip mismatch for %q", c)
	}
}

func TestDecodeUnknownLeadingByte(t *testing.T) {
	_, err := Decode([]byte("x"))
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestDecodePrefixReportsConsumedLength(t *testing.T) {
	v, n, err := DecodePrefix([]byte("i1eGARBAGE"))
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
	assert.Equal(t, 3, n)
}
