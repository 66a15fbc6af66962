package bmff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaspRoundTrip(t *testing.T) {
	b := &Box{Type: TypePasp, Body: &Pasp{HSpacing: 1, VSpacing: 1}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, uint32(1), decoded.Body.(*Pasp).HSpacing)
}

func TestAvcCRoundTrip(t *testing.T) {
	b := &Box{Type: TypeAvcC, Body: &AvcC{
		Profile:                 0x64,
		Compatibility:           0x00,
		Level:                   0x1e,
		NALUnitLengthSizeMinus1: 3,
		SPS:                     [][]byte{{0x67, 0x64, 0x00, 0x1e}},
		PPS:                     [][]byte{{0x68, 0xeb}},
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*AvcC)
	require.Equal(t, uint8(0x64), got.Profile)
	require.Equal(t, uint8(0x1e), got.Level)
	require.Equal(t, uint8(3), got.NALUnitLengthSizeMinus1)
	require.Equal(t, [][]byte{{0x67, 0x64, 0x00, 0x1e}}, got.SPS)
	require.Equal(t, [][]byte{{0x68, 0xeb}}, got.PPS)
}

func TestHvcCRoundTrip(t *testing.T) {
	b := &Box{Type: TypeHvcC, Body: &HvcC{
		GeneralProfileSpace:       0,
		GeneralTierFlag:           1,
		GeneralProfileIDC:         1,
		MinSpatialSegmentationIDC: 0x0ABC,
		ParallelismType:           2,
		ChromaFormatIDC:           1,
		BitDepthLumaMinus8:        2,
		BitDepthChromaMinus8:      2,
		GeneralLevelIDC:           120,
		ConstantFrameRate:         1,
		NumTemporalLayers:         1,
		TemporalIDNested:          1,
		LengthSizeMinus1:          3,
		Arrays: []HvcCArray{
			{ArrayCompleteness: true, NALUnitType: 32, NALUnits: [][]byte{{0xaa, 0xbb}}},
		},
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*HvcC)
	require.Equal(t, uint8(1), got.GeneralTierFlag)
	require.Equal(t, uint16(0x0ABC), got.MinSpatialSegmentationIDC)
	require.Equal(t, uint8(120), got.GeneralLevelIDC)
	require.Len(t, got.Arrays, 1)
	require.True(t, got.Arrays[0].ArrayCompleteness)
	require.Equal(t, uint8(32), got.Arrays[0].NALUnitType)
	require.Equal(t, [][]byte{{0xaa, 0xbb}}, got.Arrays[0].NALUnits)
}

func TestVisualSampleEntryWithAvcCChild(t *testing.T) {
	avcCBox := &Box{Type: TypeAvcC, Body: &AvcC{Profile: 0x64, Level: 0x1e, SPS: [][]byte{{1, 2}}, PPS: [][]byte{{3, 4}}}}
	entry := &Box{Type: TypeAvc1, Body: &VisualSampleEntry{
		DataReferenceIndex: 1,
		Width:              1920,
		Height:             1080,
		Depth:              0x18,
		Children:           []*Box{avcCBox},
	}}
	out, err := Encode(entry)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, TypeAvc1, decoded.Type)
	got := decoded.Body.(*VisualSampleEntry)
	require.Equal(t, uint16(1920), got.Width)
	require.Len(t, got.Children, 1)
	require.Equal(t, TypeAvcC, got.Children[0].Type)
	childAvcC := got.Children[0].Body.(*AvcC)
	require.Equal(t, uint8(0x64), childAvcC.Profile)
}

// esds has no registered schema (see ParseEsds's doc comment in
// descriptor.go), so it round-trips through the generic Raw passthrough.
// This is a hand-built ES_Descriptor tree: ESDescriptor{ES_ID=1,
// flags=0} containing DecoderConfigDescriptor{objectTypeIndication=0x40,
// DecoderSpecificInfo=[0x12,0x10]} and a minimal SLConfigDescriptor.
var esdsDescriptorBytes = []byte{
	0x03, 0x19, // ESDescriptor, length 25
	0x00, 0x01, // ES_ID = 1
	0x00, // flags
	0x04, 0x11, // DecoderConfigDescriptor, length 17
	0x40,                                                       // objectTypeIndication
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // streamType/bufferSizeDB/bitrates
	0x05, 0x02, 0x12, 0x10, // DecoderSpecificInfo, length 2
	0x06, 0x01, 0x02, // SLConfigDescriptor, length 1
}

func TestAudioSampleEntryWithEsdsChild(t *testing.T) {
	esdsBox := &Box{Type: TypeEsds, Raw: esdsDescriptorBytes}
	entry := &Box{Type: TypeMp4a, Body: &AudioSampleEntry{
		DataReferenceIndex: 1,
		ChannelCount:       2,
		SampleSize:         16,
		SampleRate:         44100,
		Children:           []*Box{esdsBox},
	}}
	out, err := Encode(entry)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*AudioSampleEntry)
	require.Equal(t, uint16(2), got.ChannelCount)
	require.Len(t, got.Children, 1)
	require.Equal(t, esdsDescriptorBytes, got.Children[0].Raw)

	childEsds, err := ParseEsds(got.Children[0].Raw)
	require.NoError(t, err)
	require.Equal(t, uint16(1), childEsds.ESID)
	require.Equal(t, uint8(0x40), childEsds.ObjectTypeIndication)
	require.Equal(t, []byte{0x12, 0x10}, childEsds.DecoderSpecificInfo)
}

func TestStsdWithMultipleEntryTypes(t *testing.T) {
	entries := []*Box{
		{Type: TypeAvc1, Body: &VisualSampleEntry{DataReferenceIndex: 1, Width: 320, Height: 240}},
		{Type: TypeMp4a, Body: &AudioSampleEntry{DataReferenceIndex: 1, ChannelCount: 2}},
	}
	b := &Box{Type: TypeStsd, Body: &Stsd{Entries: entries}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*Stsd)
	require.Len(t, got.Entries, 2)
	require.Equal(t, TypeAvc1, got.Entries[0].Type)
	require.Equal(t, TypeMp4a, got.Entries[1].Type)
}

func TestEncvAndEncaShareSampleEntrySchema(t *testing.T) {
	b := &Box{Type: TypeEncv, Body: &VisualSampleEntry{DataReferenceIndex: 1, Width: 100, Height: 100}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, TypeEncv, decoded.Type)
	require.Equal(t, uint16(100), decoded.Body.(*VisualSampleEntry).Width)
}
