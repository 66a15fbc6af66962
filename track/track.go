// Package track reconstructs per-track sample tables and codec strings
// from a decoded moov box, using the bmff tree navigation utility instead
// of inspecting raw box bytes directly.
package track

import (
	"errors"

	"github.com/tetsuo/bmff"
)

// TrackKind distinguishes video and audio tracks.
type TrackKind int

const (
	TrackVideo TrackKind = iota
	TrackAudio
)

// Track holds metadata for one track parsed from a moov box.
type Track struct {
	ID        uint32
	Kind      TrackKind
	TimeScale uint32
	Duration  uint64

	Width        uint16
	Height       uint16
	ChannelCount uint16
	SampleRate   uint32

	Samples []Sample

	codec string
}

// Codec returns the MIME codec string (e.g. "avc1.64001e", "mp4a.40.2").
func (t *Track) Codec() string { return t.codec }

// FindTrack returns the track with the given ID, or nil.
func FindTrack(tracks []*Track, id uint32) *Track {
	for _, t := range tracks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Sample represents a single media sample.
type Sample struct {
	TrackID            uint32
	Offset             int64
	Size               uint32
	Duration           uint32
	DTS                int64
	PresentationOffset int32
	IsSync             bool
}

// PTS returns the presentation timestamp.
func (s Sample) PTS() int64 { return s.DTS + int64(s.PresentationOffset) }

// TrackSampleStats holds aggregated stats for samples belonging to one track.
type TrackSampleStats struct {
	TrackID     uint32
	TimeScale   uint32
	Duration    uint64
	EarliestPTS int64
	SampleCount int
}

// CollectTrackSampleStats aggregates sample count, duration, and earliest
// PTS per track. The returned slice contains only tracks that have at
// least one sample.
func CollectTrackSampleStats(dst []TrackSampleStats, tracks []*Track, samples []Sample) []TrackSampleStats {
	if cap(dst) < len(tracks) {
		dst = make([]TrackSampleStats, len(tracks))
	} else {
		dst = dst[:len(tracks)]
	}

	for i, t := range tracks {
		dst[i] = TrackSampleStats{TrackID: t.ID, TimeScale: t.TimeScale, EarliestPTS: -1}
	}

	for i := range samples {
		s := &samples[i]
		for j := range dst {
			if dst[j].TrackID != s.TrackID {
				continue
			}
			st := &dst[j]
			st.SampleCount++
			st.Duration += uint64(s.Duration)
			pts := s.PTS()
			if st.EarliestPTS < 0 || pts < st.EarliestPTS {
				st.EarliestPTS = pts
			}
			break
		}
	}

	out := dst[:0]
	for i := range dst {
		if dst[i].SampleCount > 0 {
			out = append(out, dst[i])
		}
	}
	return out
}

var (
	htVide = [4]byte{'v', 'i', 'd', 'e'}
	htSoun = [4]byte{'s', 'o', 'u', 'n'}
)

var (
	ErrMoovNotFound = errors.New("track: moov box not found")
	ErrInvalidTrack = errors.New("track: invalid track data")
	ErrCorruptData  = errors.New("track: corrupt sample table data")
)

// ParseTracks walks a decoded moov box and returns the tracks found with
// their samples fully populated, along with the overall movie duration
// (from mvhd). Tracks whose sample tables cannot be reconstructed are
// omitted rather than failing the whole call.
func ParseTracks(moov *bmff.Box) ([]*Track, uint64, error) {
	if moov.Type != bmff.TypeMoov {
		return nil, 0, ErrMoovNotFound
	}

	var duration uint64
	if mvhdBox, err := bmff.First(moov, bmff.TypeMvhd); err == nil {
		if mvhd, ok := mvhdBox.Body.(*bmff.Mvhd); ok {
			duration = mvhd.Duration
		}
	}

	var tracks []*Track
	for _, trak := range bmff.Find(moov, bmff.TypeTrak, false) {
		t, err := parseTrak(trak)
		if err != nil {
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, duration, nil
}

func parseTrak(trak *bmff.Box) (*Track, error) {
	tkhdBox, err := bmff.First(trak, bmff.TypeTkhd)
	if err != nil {
		return nil, ErrInvalidTrack
	}
	tkhd, ok := tkhdBox.Body.(*bmff.Tkhd)
	if !ok {
		return nil, ErrInvalidTrack
	}

	mdiaBox, err := bmff.First(trak, bmff.TypeMdia)
	if err != nil {
		return nil, ErrInvalidTrack
	}
	mdhdBox, err := bmff.First(mdiaBox, bmff.TypeMdhd)
	if err != nil {
		return nil, ErrInvalidTrack
	}
	mdhd, ok := mdhdBox.Body.(*bmff.Mdhd)
	if !ok {
		return nil, ErrInvalidTrack
	}

	hdlrBox, err := bmff.First(mdiaBox, bmff.TypeHdlr)
	if err != nil {
		return nil, ErrInvalidTrack
	}
	hdlr, ok := hdlrBox.Body.(*bmff.Hdlr)
	if !ok {
		return nil, ErrInvalidTrack
	}

	t := &Track{ID: tkhd.TrackID, TimeScale: mdhd.Timescale, Duration: mdhd.Duration}
	switch hdlr.HandlerType {
	case htVide:
		t.Kind = TrackVideo
		t.Width = uint16(tkhd.Width >> 16)
		t.Height = uint16(tkhd.Height >> 16)
	case htSoun:
		t.Kind = TrackAudio
	default:
		return nil, ErrInvalidTrack
	}

	minfBox, err := bmff.First(mdiaBox, bmff.TypeMinf)
	if err != nil {
		return nil, ErrInvalidTrack
	}
	stblBox, err := bmff.First(minfBox, bmff.TypeStbl)
	if err != nil {
		return nil, ErrInvalidTrack
	}

	if err := t.parseSampleEntry(stblBox); err != nil {
		return nil, err
	}
	if err := t.parseSamples(stblBox); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Track) parseSampleEntry(stbl *bmff.Box) error {
	stsdBox, err := bmff.First(stbl, bmff.TypeStsd)
	if err != nil {
		return ErrInvalidTrack
	}
	stsd, ok := stsdBox.Body.(*bmff.Stsd)
	if !ok || len(stsd.Entries) == 0 {
		return ErrInvalidTrack
	}
	entry := stsd.Entries[0]

	switch v := entry.Body.(type) {
	case *bmff.VisualSampleEntry:
		t.Width = v.Width
		t.Height = v.Height
		t.buildVisualCodec(entry.Type, v)
	case *bmff.AudioSampleEntry:
		t.ChannelCount = v.ChannelCount
		t.SampleRate = uint32(v.SampleRate)
		t.buildAudioCodec(entry.Type, v)
	default:
		t.codec = entry.Type.String()
	}
	return nil
}

func (t *Track) buildVisualCodec(entryType bmff.BoxType, v *bmff.VisualSampleEntry) {
	t.codec = entryType.String()
	for _, child := range v.Children {
		if avcC, ok := child.Body.(*bmff.AvcC); ok {
			t.codec += "." + hexByte(avcC.Profile) + hexByte(avcC.Compatibility) + hexByte(avcC.Level)
			return
		}
		if hvcC, ok := child.Body.(*bmff.HvcC); ok {
			t.codec += "." + hexByte(hvcC.GeneralProfileIDC) + "." + hexByte(hvcC.GeneralLevelIDC)
			return
		}
	}
}

func (t *Track) buildAudioCodec(entryType bmff.BoxType, a *bmff.AudioSampleEntry) {
	t.codec = entryType.String()
	for _, child := range a.Children {
		if child.Type != bmff.TypeEsds {
			continue
		}
		esds, err := bmff.ParseEsds(child.Raw)
		if err != nil {
			return
		}
		t.codec += "." + hexByte(esds.ObjectTypeIndication)
		if len(esds.DecoderSpecificInfo) > 0 {
			audioObjectType := (esds.DecoderSpecificInfo[0] & 0xf8) >> 3
			if audioObjectType > 0 {
				t.codec += "." + decimal(audioObjectType)
			}
		}
		return
	}
}

const hexChars = "0123456789abcdef"

func hexByte(b uint8) string { return string([]byte{hexChars[b>>4], hexChars[b&0x0f]}) }

func decimal(b uint8) string {
	if b >= 10 {
		return string([]byte{'0' + b/10, '0' + b%10})
	}
	return string([]byte{'0' + b})
}

func (t *Track) parseSamples(stbl *bmff.Box) error {
	stszBox, err := bmff.First(stbl, bmff.TypeStsz)
	if err != nil {
		return ErrCorruptData
	}
	stsz := stszBox.Body.(*bmff.Stsz)

	sttsBox, err := bmff.First(stbl, bmff.TypeStts)
	if err != nil {
		return ErrCorruptData
	}
	stts := sttsBox.Body.(*bmff.Stts)

	stscBox, err := bmff.First(stbl, bmff.TypeStsc)
	if err != nil {
		return ErrCorruptData
	}
	stsc := stscBox.Body.(*bmff.Stsc)

	var chunkOffsets []uint64
	if stcoBox, err := bmff.First(stbl, bmff.TypeStco); err == nil {
		stco := stcoBox.Body.(*bmff.Stco)
		chunkOffsets = make([]uint64, len(stco.ChunkOffsets))
		for i, v := range stco.ChunkOffsets {
			chunkOffsets[i] = uint64(v)
		}
	} else if co64Box, err := bmff.First(stbl, bmff.TypeCo64); err == nil {
		chunkOffsets = co64Box.Body.(*bmff.Co64).ChunkOffsets
	} else {
		return ErrCorruptData
	}

	syncSamples := map[uint32]bool{}
	if stssBox, err := bmff.First(stbl, bmff.TypeStss); err == nil {
		for _, n := range stssBox.Body.(*bmff.Stss).SampleNumbers {
			syncSamples[n] = true
		}
	}

	sampleCount := int(stsz.SampleCount)
	samples := make([]Sample, 0, sampleCount)

	sampleSizeAt := func(i int) uint32 {
		if stsz.SampleSize != 0 {
			return stsz.SampleSize
		}
		if i < len(stsz.EntrySizes) {
			return stsz.EntrySizes[i]
		}
		return 0
	}

	// Expand stsc's run-length chunk grouping into a per-chunk
	// samples-per-chunk lookup, then walk chunk offsets assigning
	// consecutive samples to each chunk.
	sampleIdx := 0
	var dts int64
	sttsIdx, sttsRemaining := 0, 0
	if len(stts.Entries) > 0 {
		sttsRemaining = int(stts.Entries[0].SampleCount)
	}

	for chunkIdx := 0; chunkIdx < len(chunkOffsets) && sampleIdx < sampleCount; chunkIdx++ {
		samplesPerChunk := samplesPerChunkFor(stsc, uint32(chunkIdx+1))
		offset := int64(chunkOffsets[chunkIdx])
		for j := uint32(0); j < samplesPerChunk && sampleIdx < sampleCount; j++ {
			size := sampleSizeAt(sampleIdx)
			var delta uint32
			if sttsIdx < len(stts.Entries) {
				delta = stts.Entries[sttsIdx].SampleDelta
				sttsRemaining--
				if sttsRemaining <= 0 {
					sttsIdx++
					if sttsIdx < len(stts.Entries) {
						sttsRemaining = int(stts.Entries[sttsIdx].SampleCount)
					}
				}
			}
			sampleNumber := uint32(sampleIdx + 1)
			samples = append(samples, Sample{
				TrackID:  t.ID,
				Offset:   offset,
				Size:     size,
				Duration: delta,
				DTS:      dts,
				IsSync:   len(syncSamples) == 0 || syncSamples[sampleNumber],
			})
			offset += int64(size)
			dts += int64(delta)
			sampleIdx++
		}
	}

	t.Samples = samples
	return nil
}

// samplesPerChunkFor returns the samples-per-chunk value that applies to
// chunkNumber (1-based) under stsc's run-length table.
func samplesPerChunkFor(stsc *bmff.Stsc, chunkNumber uint32) uint32 {
	var samplesPerChunk uint32
	for _, e := range stsc.Entries {
		if e.FirstChunk > chunkNumber {
			break
		}
		samplesPerChunk = e.SamplesPerChunk
	}
	return samplesPerChunk
}
