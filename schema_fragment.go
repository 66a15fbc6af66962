package bmff

// Mfhd is the body of mfhd: the movie fragment sequence number.
type Mfhd struct {
	SequenceNumber uint32
}

func decodeMfhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	m := &Mfhd{}
	var err error
	if m.SequenceNumber, err = c.u32(); err != nil {
		return err
	}
	b.Body = m
	return nil
}

func buildMfhd(b *Box) []byte {
	bw := &builder{}
	bw.u32(b.Body.(*Mfhd).SequenceNumber)
	return bw.buf
}

func init() { register(TypeMfhd, &schema{decode: decodeMfhd, build: buildMfhd}) }

// Tfdt is the body of tfdt: the fragment's base decode time.
type Tfdt struct {
	BaseMediaDecodeTime uint64
}

func decodeTfdt(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	t := &Tfdt{}
	if b.Version == 1 {
		v, err := c.u64()
		if err != nil {
			return err
		}
		t.BaseMediaDecodeTime = v
	} else {
		v, err := c.u32()
		if err != nil {
			return err
		}
		t.BaseMediaDecodeTime = uint64(v)
	}
	b.Body = t
	return nil
}

func buildTfdt(b *Box) []byte {
	t := b.Body.(*Tfdt)
	bw := &builder{}
	if b.Version == 1 {
		bw.u64(t.BaseMediaDecodeTime)
	} else {
		bw.u32(uint32(t.BaseMediaDecodeTime))
	}
	return bw.buf
}

func init() { register(TypeTfdt, &schema{decode: decodeTfdt, build: buildTfdt}) }

// Mehd is the body of mehd: the overall fragmented presentation duration.
type Mehd struct {
	FragmentDuration uint64
}

func decodeMehd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	m := &Mehd{}
	if b.Version == 1 {
		v, err := c.u64()
		if err != nil {
			return err
		}
		m.FragmentDuration = v
	} else {
		v, err := c.u32()
		if err != nil {
			return err
		}
		m.FragmentDuration = uint64(v)
	}
	b.Body = m
	return nil
}

func buildMehd(b *Box) []byte {
	m := b.Body.(*Mehd)
	bw := &builder{}
	if b.Version == 1 {
		bw.u64(m.FragmentDuration)
	} else {
		bw.u32(uint32(m.FragmentDuration))
	}
	return bw.buf
}

func init() { register(TypeMehd, &schema{decode: decodeMehd, build: buildMehd}) }

// Trex is the body of trex: per-track defaults consulted by tfhd/trun
// when their own flag-gated fields are absent.
type Trex struct {
	TrackID                       uint32
	DefaultSampleDescriptionIndex uint32
	DefaultSampleDuration         uint32
	DefaultSampleSize             uint32
	DefaultSampleFlags            sampleFlags
}

func decodeTrex(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	t := &Trex{}
	var err error
	if t.TrackID, err = c.u32(); err != nil {
		return err
	}
	if t.DefaultSampleDescriptionIndex, err = c.u32(); err != nil {
		return err
	}
	if t.DefaultSampleDuration, err = c.u32(); err != nil {
		return err
	}
	if t.DefaultSampleSize, err = c.u32(); err != nil {
		return err
	}
	flags, err := c.u32()
	if err != nil {
		return err
	}
	t.DefaultSampleFlags = decodeSampleFlags(flags)
	b.Body = t
	return nil
}

func buildTrex(b *Box) []byte {
	t := b.Body.(*Trex)
	bw := &builder{}
	bw.u32(t.TrackID)
	bw.u32(t.DefaultSampleDescriptionIndex)
	bw.u32(t.DefaultSampleDuration)
	bw.u32(t.DefaultSampleSize)
	bw.u32(encodeSampleFlags(t.DefaultSampleFlags))
	return bw.buf
}

func init() { register(TypeTrex, &schema{decode: decodeTrex, build: buildTrex}) }

// tfhd flag bits (§4.4 flag-gated field presence).
const (
	TfhdBaseDataOffsetPresent         = 0x000001
	TfhdSampleDescriptionIndexPresent = 0x000002
	TfhdDefaultSampleDurationPresent  = 0x000008
	TfhdDefaultSampleSizePresent      = 0x000010
	TfhdDefaultSampleFlagsPresent     = 0x000020
	TfhdDurationIsEmpty               = 0x010000
	TfhdDefaultBaseIsMoof             = 0x020000
)

// Tfhd is the body of tfhd: per-track-fragment defaults. Each optional
// field's presence is gated by its corresponding Tfhd*Present flag bit in
// the box's own Flags.
type Tfhd struct {
	TrackID                uint32
	BaseDataOffset         uint64
	SampleDescriptionIndex uint32
	DefaultSampleDuration  uint32
	DefaultSampleSize      uint32
	DefaultSampleFlags     sampleFlags
}

func decodeTfhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	t := &Tfhd{}
	var err error
	if t.TrackID, err = c.u32(); err != nil {
		return err
	}
	if b.Flags&TfhdBaseDataOffsetPresent != 0 {
		if t.BaseDataOffset, err = c.u64(); err != nil {
			return err
		}
	}
	if b.Flags&TfhdSampleDescriptionIndexPresent != 0 {
		if t.SampleDescriptionIndex, err = c.u32(); err != nil {
			return err
		}
	}
	if b.Flags&TfhdDefaultSampleDurationPresent != 0 {
		if t.DefaultSampleDuration, err = c.u32(); err != nil {
			return err
		}
	}
	if b.Flags&TfhdDefaultSampleSizePresent != 0 {
		if t.DefaultSampleSize, err = c.u32(); err != nil {
			return err
		}
	}
	if b.Flags&TfhdDefaultSampleFlagsPresent != 0 {
		flags, err := c.u32()
		if err != nil {
			return err
		}
		t.DefaultSampleFlags = decodeSampleFlags(flags)
	}
	b.Body = t
	return nil
}

func buildTfhd(b *Box) []byte {
	t := b.Body.(*Tfhd)
	bw := &builder{}
	bw.u32(t.TrackID)
	if b.Flags&TfhdBaseDataOffsetPresent != 0 {
		bw.u64(t.BaseDataOffset)
	}
	if b.Flags&TfhdSampleDescriptionIndexPresent != 0 {
		bw.u32(t.SampleDescriptionIndex)
	}
	if b.Flags&TfhdDefaultSampleDurationPresent != 0 {
		bw.u32(t.DefaultSampleDuration)
	}
	if b.Flags&TfhdDefaultSampleSizePresent != 0 {
		bw.u32(t.DefaultSampleSize)
	}
	if b.Flags&TfhdDefaultSampleFlagsPresent != 0 {
		bw.u32(encodeSampleFlags(t.DefaultSampleFlags))
	}
	return bw.buf
}

func init() { register(TypeTfhd, &schema{decode: decodeTfhd, build: buildTfhd}) }

// trun flag bits (§4.4 flag-gated field presence).
const (
	TrunDataOffsetPresent                   = 0x000001
	TrunFirstSampleFlagsPresent             = 0x000004
	TrunSampleDurationPresent               = 0x000100
	TrunSampleSizePresent                   = 0x000200
	TrunSampleFlagsPresent                  = 0x000400
	TrunSampleCompositionTimeOffsetsPresent = 0x000800
)

// TrunEntry is one per-sample record in a track run. Field presence
// mirrors the owning trun box's flag bits.
type TrunEntry struct {
	SampleDuration              uint32
	SampleSize                  uint32
	SampleFlags                 sampleFlags
	SampleCompositionTimeOffset int32
}

// Trun is the body of trun: per-sample metadata for one contiguous run of
// samples within a track fragment.
type Trun struct {
	DataOffset       int32
	FirstSampleFlags sampleFlags
	Samples          []TrunEntry
}

func decodeTrun(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	t := &Trun{}
	sampleCount, err := c.u32()
	if err != nil {
		return err
	}
	if b.Flags&TrunDataOffsetPresent != 0 {
		if t.DataOffset, err = c.i32(); err != nil {
			return err
		}
	}
	if b.Flags&TrunFirstSampleFlagsPresent != 0 {
		flags, err := c.u32()
		if err != nil {
			return err
		}
		t.FirstSampleFlags = decodeSampleFlags(flags)
	}
	t.Samples = make([]TrunEntry, 0, sampleCount)
	for range sampleCount {
		var e TrunEntry
		if b.Flags&TrunSampleDurationPresent != 0 {
			if e.SampleDuration, err = c.u32(); err != nil {
				return err
			}
		}
		if b.Flags&TrunSampleSizePresent != 0 {
			if e.SampleSize, err = c.u32(); err != nil {
				return err
			}
		}
		if b.Flags&TrunSampleFlagsPresent != 0 {
			flags, err := c.u32()
			if err != nil {
				return err
			}
			e.SampleFlags = decodeSampleFlags(flags)
		}
		if b.Flags&TrunSampleCompositionTimeOffsetsPresent != 0 {
			if b.Version == 0 {
				v, err := c.u32()
				if err != nil {
					return err
				}
				e.SampleCompositionTimeOffset = int32(v)
			} else {
				v, err := c.i32()
				if err != nil {
					return err
				}
				e.SampleCompositionTimeOffset = v
			}
		}
		t.Samples = append(t.Samples, e)
	}
	b.Body = t
	return nil
}

func buildTrun(b *Box) []byte {
	t := b.Body.(*Trun)
	bw := &builder{}
	bw.u32(uint32(len(t.Samples)))
	if b.Flags&TrunDataOffsetPresent != 0 {
		bw.i32(t.DataOffset)
	}
	if b.Flags&TrunFirstSampleFlagsPresent != 0 {
		bw.u32(encodeSampleFlags(t.FirstSampleFlags))
	}
	for _, e := range t.Samples {
		if b.Flags&TrunSampleDurationPresent != 0 {
			bw.u32(e.SampleDuration)
		}
		if b.Flags&TrunSampleSizePresent != 0 {
			bw.u32(e.SampleSize)
		}
		if b.Flags&TrunSampleFlagsPresent != 0 {
			bw.u32(encodeSampleFlags(e.SampleFlags))
		}
		if b.Flags&TrunSampleCompositionTimeOffsetsPresent != 0 {
			if b.Version == 0 {
				bw.u32(uint32(e.SampleCompositionTimeOffset))
			} else {
				bw.i32(e.SampleCompositionTimeOffset)
			}
		}
	}
	return bw.buf
}

func init() { register(TypeTrun, &schema{decode: decodeTrun, build: buildTrun}) }

// Sidx is the body of sidx: the segment index used for byte-range
// addressed seeking in DASH/HLS fragmented content.
type Sidx struct {
	ReferenceID              uint32
	Timescale                uint32
	EarliestPresentationTime uint64
	FirstOffset              uint64
	References               []sidxReference
}

func decodeSidx(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	s := &Sidx{}
	var err error
	if s.ReferenceID, err = c.u32(); err != nil {
		return err
	}
	if s.Timescale, err = c.u32(); err != nil {
		return err
	}
	if b.Version == 1 {
		if s.EarliestPresentationTime, err = c.u64(); err != nil {
			return err
		}
		if s.FirstOffset, err = c.u64(); err != nil {
			return err
		}
	} else {
		ept, err := c.u32()
		if err != nil {
			return err
		}
		fo, err := c.u32()
		if err != nil {
			return err
		}
		s.EarliestPresentationTime, s.FirstOffset = uint64(ept), uint64(fo)
	}
	if err := c.skip(2); err != nil { // reserved
		return err
	}
	refCount, err := c.u16()
	if err != nil {
		return err
	}
	s.References = make([]sidxReference, refCount)
	for i := range s.References {
		ref, err := decodeSidxReference(c)
		if err != nil {
			return err
		}
		s.References[i] = ref
	}
	b.Body = s
	return nil
}

func buildSidx(b *Box) []byte {
	s := b.Body.(*Sidx)
	bw := &builder{}
	bw.u32(s.ReferenceID)
	bw.u32(s.Timescale)
	if b.Version == 1 {
		bw.u64(s.EarliestPresentationTime)
		bw.u64(s.FirstOffset)
	} else {
		bw.u32(uint32(s.EarliestPresentationTime))
		bw.u32(uint32(s.FirstOffset))
	}
	bw.zero(2)
	bw.u16(uint16(len(s.References)))
	for _, ref := range s.References {
		encodeSidxReference(bw, ref)
	}
	return bw.buf
}

func init() { register(TypeSidx, &schema{decode: decodeSidx, build: buildSidx}) }
