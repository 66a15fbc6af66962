package track

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetsuo/bmff"
)

func buildVideoTrak(id uint32) *bmff.Box {
	avcC := &bmff.Box{Type: bmff.TypeAvcC, Body: &bmff.AvcC{
		Profile: 0x64, Compatibility: 0x00, Level: 0x1e,
		SPS: [][]byte{{0x67}}, PPS: [][]byte{{0x68}},
	}}
	avc1 := &bmff.Box{Type: bmff.TypeAvc1, Body: &bmff.VisualSampleEntry{
		DataReferenceIndex: 1, Width: 640, Height: 480, Children: []*bmff.Box{avcC},
	}}
	stsd := &bmff.Box{Type: bmff.TypeStsd, Body: &bmff.Stsd{Entries: []*bmff.Box{avc1}}}
	stsz := &bmff.Box{Type: bmff.TypeStsz, Body: &bmff.Stsz{SampleCount: 3, EntrySizes: []uint32{100, 200, 150}}}
	stts := &bmff.Box{Type: bmff.TypeStts, Body: &bmff.Stts{Entries: []bmff.SttsEntry{{SampleCount: 3, SampleDelta: 512}}}}
	stsc := &bmff.Box{Type: bmff.TypeStsc, Body: &bmff.Stsc{Entries: []bmff.StscEntry{{FirstChunk: 1, SamplesPerChunk: 3, SampleDescriptionIndex: 1}}}}
	stco := &bmff.Box{Type: bmff.TypeStco, Body: &bmff.Stco{ChunkOffsets: []uint32{1024}}}
	stss := &bmff.Box{Type: bmff.TypeStss, Body: &bmff.Stss{SampleNumbers: []uint32{1}}}
	stbl := &bmff.Box{Type: bmff.TypeStbl, Children: []*bmff.Box{stsd, stsz, stts, stsc, stco, stss}}
	minf := &bmff.Box{Type: bmff.TypeMinf, Children: []*bmff.Box{stbl}}
	mdhd := &bmff.Box{Type: bmff.TypeMdhd, Body: &bmff.Mdhd{Timescale: 30000, Duration: 90000}}
	hdlr := &bmff.Box{Type: bmff.TypeHdlr, Body: &bmff.Hdlr{HandlerType: [4]byte{'v', 'i', 'd', 'e'}}}
	mdia := &bmff.Box{Type: bmff.TypeMdia, Children: []*bmff.Box{mdhd, hdlr, minf}}
	tkhd := &bmff.Box{Type: bmff.TypeTkhd, Body: &bmff.Tkhd{TrackID: id, Width: 640 << 16, Height: 480 << 16}}
	return &bmff.Box{Type: bmff.TypeTrak, Children: []*bmff.Box{tkhd, mdia}}
}

func buildAudioTrak(id uint32) *bmff.Box {
	// Hand-built ES_Descriptor tree: ES_ID=1, DecoderConfigDescriptor with
	// objectTypeIndication=0x40 and DecoderSpecificInfo=[0x12,0x10], plus a
	// minimal SLConfigDescriptor. esds has no registered schema (see
	// ParseEsds in descriptor.go), so it is carried as Raw bytes.
	esdsBytes := []byte{
		0x03, 0x19, // ESDescriptor, length 25
		0x00, 0x01, // ES_ID = 1
		0x00,       // flags
		0x04, 0x11, // DecoderConfigDescriptor, length 17
		0x40, // objectTypeIndication
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x05, 0x02, 0x12, 0x10, // DecoderSpecificInfo, length 2
		0x06, 0x01, 0x02, // SLConfigDescriptor, length 1
	}
	esds := &bmff.Box{Type: bmff.TypeEsds, Raw: esdsBytes}
	mp4a := &bmff.Box{Type: bmff.TypeMp4a, Body: &bmff.AudioSampleEntry{
		DataReferenceIndex: 1, ChannelCount: 2, SampleSize: 16, SampleRate: 44100,
		Children: []*bmff.Box{esds},
	}}
	stsd := &bmff.Box{Type: bmff.TypeStsd, Body: &bmff.Stsd{Entries: []*bmff.Box{mp4a}}}
	stsz := &bmff.Box{Type: bmff.TypeStsz, Body: &bmff.Stsz{SampleSize: 200, SampleCount: 2}}
	stts := &bmff.Box{Type: bmff.TypeStts, Body: &bmff.Stts{Entries: []bmff.SttsEntry{{SampleCount: 2, SampleDelta: 1024}}}}
	stsc := &bmff.Box{Type: bmff.TypeStsc, Body: &bmff.Stsc{Entries: []bmff.StscEntry{{FirstChunk: 1, SamplesPerChunk: 2, SampleDescriptionIndex: 1}}}}
	stco := &bmff.Box{Type: bmff.TypeStco, Body: &bmff.Stco{ChunkOffsets: []uint32{2048}}}
	stbl := &bmff.Box{Type: bmff.TypeStbl, Children: []*bmff.Box{stsd, stsz, stts, stsc, stco}}
	minf := &bmff.Box{Type: bmff.TypeMinf, Children: []*bmff.Box{stbl}}
	mdhd := &bmff.Box{Type: bmff.TypeMdhd, Body: &bmff.Mdhd{Timescale: 48000, Duration: 96000}}
	hdlr := &bmff.Box{Type: bmff.TypeHdlr, Body: &bmff.Hdlr{HandlerType: [4]byte{'s', 'o', 'u', 'n'}}}
	mdia := &bmff.Box{Type: bmff.TypeMdia, Children: []*bmff.Box{mdhd, hdlr, minf}}
	tkhd := &bmff.Box{Type: bmff.TypeTkhd, Body: &bmff.Tkhd{TrackID: id}}
	return &bmff.Box{Type: bmff.TypeTrak, Children: []*bmff.Box{tkhd, mdia}}
}

func buildSyntheticMoov() *bmff.Box {
	mvhd := &bmff.Box{Type: bmff.TypeMvhd, Body: &bmff.Mvhd{Timescale: 1000, Duration: 5000}}
	return &bmff.Box{Type: bmff.TypeMoov, Children: []*bmff.Box{
		mvhd,
		buildVideoTrak(1),
		buildAudioTrak(2),
	}}
}

func TestParseTracksRejectsNonMoov(t *testing.T) {
	_, _, err := ParseTracks(&bmff.Box{Type: bmff.TypeFtyp})
	require.ErrorIs(t, err, ErrMoovNotFound)
}

func TestParseTracksReturnsMovieDuration(t *testing.T) {
	_, duration, err := ParseTracks(buildSyntheticMoov())
	require.NoError(t, err)
	require.Equal(t, uint64(5000), duration)
}

func TestParseTracksVideoTrack(t *testing.T) {
	tracks, _, err := ParseTracks(buildSyntheticMoov())
	require.NoError(t, err)

	vt := FindTrack(tracks, 1)
	require.NotNil(t, vt)
	require.Equal(t, TrackVideo, vt.Kind)
	require.Equal(t, uint16(640), vt.Width)
	require.Equal(t, uint16(480), vt.Height)
	require.Equal(t, "avc1.64001e", vt.Codec())

	require.Len(t, vt.Samples, 3)
	require.Equal(t, uint32(100), vt.Samples[0].Size)
	require.Equal(t, int64(1024), vt.Samples[0].Offset)
	require.Equal(t, int64(1124), vt.Samples[1].Offset)
	require.Equal(t, int64(0), vt.Samples[0].DTS)
	require.Equal(t, int64(512), vt.Samples[1].DTS)
	require.True(t, vt.Samples[0].IsSync)
	require.False(t, vt.Samples[1].IsSync)
}

func TestParseTracksAudioTrack(t *testing.T) {
	tracks, _, err := ParseTracks(buildSyntheticMoov())
	require.NoError(t, err)

	at := FindTrack(tracks, 2)
	require.NotNil(t, at)
	require.Equal(t, TrackAudio, at.Kind)
	require.Equal(t, uint16(2), at.ChannelCount)
	require.Equal(t, "mp4a.40.2", at.Codec())

	require.Len(t, at.Samples, 2)
	require.Equal(t, uint32(200), at.Samples[0].Size)
	require.Equal(t, uint32(200), at.Samples[1].Size)
	require.True(t, at.Samples[0].IsSync) // no stss present: every sample is sync
}

func TestFindTrackReturnsNilForUnknownID(t *testing.T) {
	tracks, _, err := ParseTracks(buildSyntheticMoov())
	require.NoError(t, err)
	require.Nil(t, FindTrack(tracks, 99))
}

func TestCollectTrackSampleStats(t *testing.T) {
	tracks, _, err := ParseTracks(buildSyntheticMoov())
	require.NoError(t, err)

	var all []Sample
	for _, tr := range tracks {
		all = append(all, tr.Samples...)
	}

	stats := CollectTrackSampleStats(nil, tracks, all)
	require.Len(t, stats, 2)

	var videoStats, audioStats *TrackSampleStats
	for i := range stats {
		switch stats[i].TrackID {
		case 1:
			videoStats = &stats[i]
		case 2:
			audioStats = &stats[i]
		}
	}
	require.NotNil(t, videoStats)
	require.NotNil(t, audioStats)
	require.Equal(t, 3, videoStats.SampleCount)
	require.Equal(t, uint64(1536), videoStats.Duration) // 3 * 512
	require.Equal(t, int64(0), videoStats.EarliestPTS)
	require.Equal(t, 2, audioStats.SampleCount)
}
