package bmff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguageCodeRoundTrip(t *testing.T) {
	lang := decodeLanguage(0x55C4)
	require.Equal(t, "und", string(lang[:]))
	require.Equal(t, uint16(0x55C4), encodeLanguage(lang))
}

func TestSampleFlagsRoundTrip(t *testing.T) {
	f := sampleFlags{
		IsLeading:                 1,
		SampleDependsOn:           2,
		SampleIsDependedOn:        1,
		SampleHasRedundancy:       3,
		SamplePaddingValue:        5,
		SampleIsNonSyncSample:     true,
		SampleDegradationPriority: 0xABCD,
	}
	v := encodeSampleFlags(f)
	got := decodeSampleFlags(v)
	require.Equal(t, f, got)
}

func TestSidxReferenceRoundTrip(t *testing.T) {
	ref := sidxReference{
		ReferenceType:      1,
		ReferencedSize:     0x12345,
		SubsegmentDuration: 9000,
		StartsWithSAP:      true,
		SAPType:            3,
		SAPDeltaTime:       42,
	}
	bw := &builder{}
	encodeSidxReference(bw, ref)
	require.Equal(t, 12, len(bw.buf))

	c := newCursor(bw.buf, 0, len(bw.buf))
	got, err := decodeSidxReference(c)
	require.NoError(t, err)
	require.Equal(t, ref, got)
}

func TestBitReaderWriterRoundTrip(t *testing.T) {
	w := newBitWriter(16)
	w.putBits(0x1, 1)
	w.putBits(0x7F, 7)
	w.putBits(0xFF, 8)
	buf := w.bytes()

	r := newBitReader(buf)
	v1, err := r.bits(1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), v1)
	v2, err := r.bits(7)
	require.NoError(t, err)
	require.Equal(t, uint32(0x7F), v2)
	v3, err := r.bits(8)
	require.NoError(t, err)
	require.Equal(t, uint32(0xFF), v3)
}

func TestBitReaderUnexpectedEnd(t *testing.T) {
	r := newBitReader([]byte{0x00})
	_, err := r.bits(9)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}
