package bmff

// Pasp is the body of pasp: the pixel aspect ratio correction applied
// before display.
type Pasp struct {
	HSpacing uint32
	VSpacing uint32
}

func decodePasp(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	p := &Pasp{}
	var err error
	if p.HSpacing, err = c.u32(); err != nil {
		return err
	}
	if p.VSpacing, err = c.u32(); err != nil {
		return err
	}
	b.Body = p
	return nil
}

func buildPasp(b *Box) []byte {
	p := b.Body.(*Pasp)
	bw := &builder{}
	bw.u32(p.HSpacing)
	bw.u32(p.VSpacing)
	return bw.buf
}

func init() { register(TypePasp, &schema{decode: decodePasp, build: buildPasp}) }

// AvcC is the body of avcC: the AVC decoder configuration record (ISO/IEC
// 14496-15), carrying the SPS/PPS NAL units out-of-band.
type AvcC struct {
	Profile                 uint8
	Compatibility           uint8
	Level                   uint8
	NALUnitLengthSizeMinus1 uint8
	SPS                     [][]byte
	PPS                     [][]byte
}

func decodeAvcC(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	a := &AvcC{}
	if _, err := c.u8(); err != nil { // version, always 1
		return err
	}
	var err error
	if a.Profile, err = c.u8(); err != nil {
		return err
	}
	if a.Compatibility, err = c.u8(); err != nil {
		return err
	}
	if a.Level, err = c.u8(); err != nil {
		return err
	}
	nal, err := c.u8()
	if err != nil {
		return err
	}
	a.NALUnitLengthSizeMinus1 = nal & 0x03
	spsCountByte, err := c.u8()
	if err != nil {
		return err
	}
	spsCount := spsCountByte & 0x1f
	for range spsCount {
		length, err := c.u16()
		if err != nil {
			return err
		}
		nalUnit, err := c.bytesN(int(length))
		if err != nil {
			return err
		}
		a.SPS = append(a.SPS, nalUnit)
	}
	ppsCount, err := c.u8()
	if err != nil {
		return err
	}
	for range ppsCount {
		length, err := c.u16()
		if err != nil {
			return err
		}
		nalUnit, err := c.bytesN(int(length))
		if err != nil {
			return err
		}
		a.PPS = append(a.PPS, nalUnit)
	}
	b.Body = a
	return nil
}

func buildAvcC(b *Box) []byte {
	a := b.Body.(*AvcC)
	bw := &builder{}
	bw.u8(1) // version
	bw.u8(a.Profile)
	bw.u8(a.Compatibility)
	bw.u8(a.Level)
	bw.u8(0xfc | a.NALUnitLengthSizeMinus1&0x03)
	bw.u8(0xe0 | uint8(len(a.SPS))&0x1f)
	for _, nalUnit := range a.SPS {
		bw.u16(uint16(len(nalUnit)))
		bw.bytes(nalUnit)
	}
	bw.u8(uint8(len(a.PPS)))
	for _, nalUnit := range a.PPS {
		bw.u16(uint16(len(nalUnit)))
		bw.bytes(nalUnit)
	}
	return bw.buf
}

func init() { register(TypeAvcC, &schema{decode: decodeAvcC, build: buildAvcC}) }

// HvcCArray is one NAL-unit-type array within an hvcC record.
type HvcCArray struct {
	ArrayCompleteness bool
	NALUnitType       uint8
	NALUnits          [][]byte
}

// HvcC is the body of hvcC: the HEVC decoder configuration record
// (ISO/IEC 14496-15).
type HvcC struct {
	GeneralProfileSpace              uint8
	GeneralTierFlag                  uint8
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  [6]byte
	GeneralLevelIDC                  uint8
	MinSpatialSegmentationIDC        uint16
	ParallelismType                  uint8
	ChromaFormatIDC                  uint8
	BitDepthLumaMinus8               uint8
	BitDepthChromaMinus8             uint8
	AvgFrameRate                     uint16
	ConstantFrameRate                uint8
	NumTemporalLayers                uint8
	TemporalIDNested                 uint8
	LengthSizeMinus1                 uint8
	Arrays                           []HvcCArray
}

func decodeHvcC(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	h := &HvcC{}
	if _, err := c.u8(); err != nil { // version, always 1
		return err
	}
	flags, err := c.u8()
	if err != nil {
		return err
	}
	h.GeneralProfileSpace = flags >> 6
	h.GeneralTierFlag = (flags >> 5) & 0x1
	h.GeneralProfileIDC = flags & 0x1f
	if h.GeneralProfileCompatibilityFlags, err = c.u32(); err != nil {
		return err
	}
	cif, err := c.bytesN(6)
	if err != nil {
		return err
	}
	copy(h.GeneralConstraintIndicatorFlags[:], cif)
	if h.GeneralLevelIDC, err = c.u8(); err != nil {
		return err
	}
	mss, err := c.u16()
	if err != nil {
		return err
	}
	h.MinSpatialSegmentationIDC = mss & 0x0fff
	par, err := c.u8()
	if err != nil {
		return err
	}
	h.ParallelismType = par & 0x03
	chroma, err := c.u8()
	if err != nil {
		return err
	}
	h.ChromaFormatIDC = chroma & 0x03
	bdl, err := c.u8()
	if err != nil {
		return err
	}
	h.BitDepthLumaMinus8 = bdl & 0x07
	bdc, err := c.u8()
	if err != nil {
		return err
	}
	h.BitDepthChromaMinus8 = bdc & 0x07
	if h.AvgFrameRate, err = c.u16(); err != nil {
		return err
	}
	naluFlags, err := c.u8()
	if err != nil {
		return err
	}
	h.ConstantFrameRate = naluFlags >> 6
	h.NumTemporalLayers = (naluFlags >> 3) & 0x07
	h.TemporalIDNested = (naluFlags >> 2) & 0x01
	h.LengthSizeMinus1 = naluFlags & 0x03
	numArrays, err := c.u8()
	if err != nil {
		return err
	}
	h.Arrays = make([]HvcCArray, numArrays)
	for i := range h.Arrays {
		arrFlags, err := c.u8()
		if err != nil {
			return err
		}
		arr := HvcCArray{
			ArrayCompleteness: arrFlags&0x80 != 0,
			NALUnitType:       arrFlags & 0x3f,
		}
		numNalus, err := c.u16()
		if err != nil {
			return err
		}
		arr.NALUnits = make([][]byte, numNalus)
		for j := range arr.NALUnits {
			length, err := c.u16()
			if err != nil {
				return err
			}
			nalUnit, err := c.bytesN(int(length))
			if err != nil {
				return err
			}
			arr.NALUnits[j] = nalUnit
		}
		h.Arrays[i] = arr
	}
	b.Body = h
	return nil
}

func buildHvcC(b *Box) []byte {
	h := b.Body.(*HvcC)
	bw := &builder{}
	bw.u8(1)
	bw.u8(h.GeneralProfileSpace<<6 | h.GeneralTierFlag<<5 | h.GeneralProfileIDC&0x1f)
	bw.u32(h.GeneralProfileCompatibilityFlags)
	bw.bytes(h.GeneralConstraintIndicatorFlags[:])
	bw.u8(h.GeneralLevelIDC)
	bw.u16(0xf000 | h.MinSpatialSegmentationIDC&0x0fff)
	bw.u8(0xfc | h.ParallelismType&0x03)
	bw.u8(0xfc | h.ChromaFormatIDC&0x03)
	bw.u8(0xf8 | h.BitDepthLumaMinus8&0x07)
	bw.u8(0xf8 | h.BitDepthChromaMinus8&0x07)
	bw.u16(h.AvgFrameRate)
	bw.u8(h.ConstantFrameRate<<6 | h.NumTemporalLayers<<3 | h.TemporalIDNested<<2 | h.LengthSizeMinus1&0x03)
	bw.u8(uint8(len(h.Arrays)))
	for _, arr := range h.Arrays {
		var flags uint8
		if arr.ArrayCompleteness {
			flags |= 0x80
		}
		flags |= arr.NALUnitType & 0x3f
		bw.u8(flags)
		bw.u16(uint16(len(arr.NALUnits)))
		for _, nalUnit := range arr.NALUnits {
			bw.u16(uint16(len(nalUnit)))
			bw.bytes(nalUnit)
		}
	}
	return bw.buf
}

func init() { register(TypeHvcC, &schema{decode: decodeHvcC, build: buildHvcC}) }

// VisualSampleEntry is the shared body shape of avc1, hvc1 and encv
// sample entries: fixed geometry/resolution fields followed by the
// entry's codec configuration boxes (avcC/hvcC/pasp/btrt/sinf, ...) as
// ordinary children.
type VisualSampleEntry struct {
	DataReferenceIndex   uint16
	Width                uint16
	Height               uint16
	HorizontalResolution uint16
	VerticalResolution   uint16
	FrameCount           uint16
	CompressorName       [32]byte
	Depth                uint16
	Children             []*Box
}

func decodeVisualSampleEntry(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	v := &VisualSampleEntry{}
	if err := c.skip(6); err != nil { // reserved
		return err
	}
	dri, err := c.u16()
	if err != nil {
		return err
	}
	v.DataReferenceIndex = dri
	if err := c.skip(2 + 2 + 4 + 4 + 4); err != nil { // version/revision, vendor, temporal quality, spatial quality
		return err
	}
	if v.Width, err = c.u16(); err != nil {
		return err
	}
	if v.Height, err = c.u16(); err != nil {
		return err
	}
	if v.HorizontalResolution, err = c.u16(); err != nil {
		return err
	}
	if err := c.skip(2); err != nil {
		return err
	}
	if v.VerticalResolution, err = c.u16(); err != nil {
		return err
	}
	if err := c.skip(2 + 4); err != nil { // reserved, data_size
		return err
	}
	if v.FrameCount, err = c.u16(); err != nil {
		return err
	}
	name, err := c.bytesN(32)
	if err != nil {
		return err
	}
	copy(v.CompressorName[:], name)
	if v.Depth, err = c.u16(); err != nil {
		return err
	}
	if err := c.skip(2); err != nil { // color_table_id, always -1
		return err
	}
	children, err := decodeChildren(c.greedyBytes())
	if err != nil {
		return err
	}
	v.Children = children
	b.Body = v
	return nil
}

func buildVisualSampleEntry(b *Box) []byte {
	v := b.Body.(*VisualSampleEntry)
	bw := &builder{}
	bw.zero(6)
	bw.u16(v.DataReferenceIndex)
	bw.u16(0) // version
	bw.u16(0) // revision
	bw.bytes([]byte("brdy"))
	bw.u32(0) // temporal_quality
	bw.u32(0) // spatial_quality
	bw.u16(v.Width)
	bw.u16(v.Height)
	bw.u16(v.HorizontalResolution)
	bw.zero(2)
	bw.u16(v.VerticalResolution)
	bw.zero(2)
	bw.u32(0) // data_size
	bw.u16(v.FrameCount)
	bw.bytes(v.CompressorName[:])
	bw.u16(v.Depth)
	bw.i16(-1) // color_table_id
	for _, child := range v.Children {
		if err := encodeOne(bw, child); err != nil {
			// Children were produced by Decode, so this can only happen
			// if a caller hand-built an inconsistent tree; surface it by
			// dropping the remaining children rather than panicking.
			break
		}
	}
	return bw.buf
}

func init() {
	s := &schema{decode: decodeVisualSampleEntry, build: buildVisualSampleEntry}
	register(TypeAvc1, s)
	register(TypeHvc1, s)
	register(TypeEncv, s)
}

// AudioSampleEntry is the shared body shape of mp4a, ec-3 and enca
// sample entries.
type AudioSampleEntry struct {
	DataReferenceIndex uint16
	ChannelCount       uint16
	SampleSize         uint16
	SampleRate         uint16
	Children           []*Box
}

func decodeAudioSampleEntry(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	a := &AudioSampleEntry{}
	if err := c.skip(6); err != nil { // reserved
		return err
	}
	dri, err := c.u16()
	if err != nil {
		return err
	}
	a.DataReferenceIndex = dri
	if err := c.skip(2 + 2 + 4); err != nil { // version, revision, vendor
		return err
	}
	if a.ChannelCount, err = c.u16(); err != nil {
		return err
	}
	if a.SampleSize, err = c.u16(); err != nil {
		return err
	}
	if err := c.skip(2 + 2); err != nil { // compression_id, packet_size
		return err
	}
	if a.SampleRate, err = c.u16(); err != nil {
		return err
	}
	if err := c.skip(2); err != nil {
		return err
	}
	children, err := decodeChildren(c.greedyBytes())
	if err != nil {
		return err
	}
	a.Children = children
	b.Body = a
	return nil
}

func buildAudioSampleEntry(b *Box) []byte {
	a := b.Body.(*AudioSampleEntry)
	bw := &builder{}
	bw.zero(6)
	bw.u16(a.DataReferenceIndex)
	bw.u16(0) // version
	bw.u16(0) // revision
	bw.u32(0) // vendor
	bw.u16(a.ChannelCount)
	bw.u16(a.SampleSize)
	bw.i16(0) // compression_id
	bw.u16(0) // packet_size
	bw.u16(a.SampleRate)
	bw.zero(2)
	for _, child := range a.Children {
		if err := encodeOne(bw, child); err != nil {
			break
		}
	}
	return bw.buf
}

func init() {
	s := &schema{decode: decodeAudioSampleEntry, build: buildAudioSampleEntry}
	register(TypeMp4a, s)
	register(TypeEc3, s)
	register(TypeEnca, s)
}

// Stsd is the body of stsd: the list of sample entries describing the
// codec(s) used by a track.
type Stsd struct {
	Entries []*Box
}

func decodeStsd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Stsd{Entries: make([]*Box, 0, count)}
	for range count {
		entry, err := decodeOne(c)
		if err != nil {
			return err
		}
		s.Entries = append(s.Entries, entry)
	}
	b.Body = s
	return nil
}

func buildStsd(b *Box) []byte {
	s := b.Body.(*Stsd)
	bw := &builder{}
	bw.u32(uint32(len(s.Entries)))
	for _, entry := range s.Entries {
		if err := encodeOne(bw, entry); err != nil {
			break
		}
	}
	return bw.buf
}

func init() { register(TypeStsd, &schema{decode: decodeStsd, build: buildStsd}) }
