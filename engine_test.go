package bmff

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// hexBytes decodes a hex string with arbitrary whitespace for readability,
// matching the literal-hex notation used throughout the box catalog's
// test scenarios.
func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' {
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecodeFtyp(t *testing.T) {
	buf := hexBytes(t, "00000018 66747970 69736f6d 00000001 6d703432 69736f36")
	b, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, TypeFtyp, b.Type)
	f, ok := b.Body.(*Ftyp)
	require.True(t, ok)
	require.Equal(t, [4]byte{'i', 's', 'o', 'm'}, f.MajorBrand)
	require.Equal(t, uint32(1), f.MinorVersion)
	require.Equal(t, [][4]byte{{'m', 'p', '4', '2'}, {'i', 's', 'o', '6'}}, f.CompatibleBrands)

	out, err := Encode(b)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestDecodeFreeBoxAsRaw(t *testing.T) {
	buf := hexBytes(t, "0000000C 66726565 AABBCCDD")
	b, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, TypeFree, b.Type)
	require.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, b.Raw)

	n, err := Length(b)
	require.NoError(t, err)
	require.Equal(t, 12, n)

	out, err := Encode(b)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestDecodeUnknownTagFallback(t *testing.T) {
	buf := hexBytes(t, "0000000A 78787878 DEAD")
	b, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, BoxType{'x', 'x', 'x', 'x'}, b.Type)
	require.Equal(t, []byte{0xDE, 0xAD}, b.Raw)
	require.Equal(t, 2, len(b.Raw))

	out, err := Encode(b)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestNestedContainer(t *testing.T) {
	// The child is a complete version-0 mvhd (108 bytes once encoded), not
	// a 12-byte stub: the mvhd schema cannot decode an empty body.
	mvhd := &Box{Type: TypeMvhd, Body: &Mvhd{Matrix: unityMatrix}}
	moov := &Box{Type: TypeMoov, Children: []*Box{mvhd}}

	out, err := Encode(moov)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, TypeMoov, decoded.Type)
	require.Len(t, decoded.Children, 1)
	require.Equal(t, TypeMvhd, decoded.Children[0].Type)
}

func TestDecodeAllSequentialTopLevelBoxes(t *testing.T) {
	ftyp := hexBytes(t, "00000018 66747970 69736f6d 00000001 6d703432 69736f36")
	free := hexBytes(t, "0000000C 66726565 AABBCCDD")
	buf := append(append([]byte{}, ftyp...), free...)

	boxes, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	require.Equal(t, TypeFtyp, boxes[0].Type)
	require.Equal(t, TypeFree, boxes[1].Type)

	out, err := EncodeAll(boxes)
	require.NoError(t, err)
	require.Equal(t, buf, out)
}

func TestDecodeTrailingBytesIsLengthOverrun(t *testing.T) {
	buf := hexBytes(t, "0000000C 66726565 AABBCCDD 00")
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrLengthOverrun)
}

func TestDecodeTruncatedInputIsUnexpectedEnd(t *testing.T) {
	buf := hexBytes(t, "0000000C 66726565 AA")
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestDecodeExtendedLength64Unsupported(t *testing.T) {
	buf := hexBytes(t, "00000001 66726565 0000000000000010 AABBCCDD")
	_, err := Decode(buf)
	require.ErrorIs(t, err, ErrUnsupportedLength64)
}

func TestLengthMatchesEncodedSize(t *testing.T) {
	b := &Box{Type: TypeFree, Raw: []byte{1, 2, 3}}
	n, err := Length(b)
	require.NoError(t, err)
	buf, err := Encode(b)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
}
