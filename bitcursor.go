package bmff

// bitReader unpacks MSB-first bitfields out of a fixed byte slice, for the
// handful of bit-struct records this format embeds inside otherwise
// byte-aligned boxes (ISO 639-2/T language codes, TrackSampleFlags,
// abst.attrs, the dac3 record).
type bitReader struct {
	buf  []byte
	pos  int // bit offset from buf[0], MSB-first within each byte
	size int // total bits available
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf, size: len(buf) * 8}
}

// bits reads n bits (0 <= n <= 32) as an unsigned value, MSB first.
func (r *bitReader) bits(n int) (uint32, error) {
	if n < 0 || r.pos+n > r.size {
		return 0, ErrUnexpectedEnd
	}
	var v uint32
	for range n {
		byteIdx := r.pos / 8
		bitIdx := 7 - (r.pos % 8)
		bit := (r.buf[byteIdx] >> bitIdx) & 1
		v = v<<1 | uint32(bit)
		r.pos++
	}
	return v, nil
}

// flag reads a single bit as a bool.
func (r *bitReader) flag() (bool, error) {
	v, err := r.bits(1)
	return v != 0, err
}

// bitWriter packs MSB-first bitfields into a byte slice of known total
// width. The caller must write exactly sizeBits bits before reading buf.
type bitWriter struct {
	buf []byte
	pos int
}

func newBitWriter(sizeBits int) *bitWriter {
	return &bitWriter{buf: make([]byte, (sizeBits+7)/8)}
}

func (w *bitWriter) putBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := byte((v >> i) & 1)
		byteIdx := w.pos / 8
		bitIdx := 7 - (w.pos % 8)
		w.buf[byteIdx] |= bit << bitIdx
		w.pos++
	}
}

func (w *bitWriter) putFlag(b bool) {
	if b {
		w.putBits(1, 1)
	} else {
		w.putBits(0, 1)
	}
}

func (w *bitWriter) bytes() []byte { return w.buf }

// language is an ISO 639-2/T code packed as three 5-bit (letter-0x60)
// fields into 15 bits, preceded by one padding/reserved bit, matching
// pymp4's ISO6392TLanguageCode adapter.
type language [3]byte

func decodeLanguage(v uint16) language {
	r := newBitReader([]byte{byte(v >> 8), byte(v)})
	_, _ = r.bits(1) // pad
	var l language
	for i := range l {
		c, _ := r.bits(5)
		l[i] = byte(c) + 0x60
	}
	return l
}

func encodeLanguage(l language) uint16 {
	w := newBitWriter(16)
	w.putBits(0, 1)
	for _, c := range l {
		w.putBits(uint32(c-0x60), 5)
	}
	b := w.bytes()
	return be.Uint16(b)
}

// sampleFlags is the 32-bit packed TrackSampleFlags bitstruct shared by
// trex.default_sample_flags, tfhd.default_sample_flags and
// trun.sample_flags / first_sample_flags.
type sampleFlags struct {
	IsLeading                 uint32
	SampleDependsOn           uint32
	SampleIsDependedOn        uint32
	SampleHasRedundancy       uint32
	SamplePaddingValue        uint32
	SampleIsNonSyncSample     bool
	SampleDegradationPriority uint32
}

func decodeSampleFlags(v uint32) sampleFlags {
	r := newBitReader([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	_, _ = r.bits(4) // reserved
	var f sampleFlags
	isLeading, _ := r.bits(2)
	dependsOn, _ := r.bits(2)
	isDependedOn, _ := r.bits(2)
	hasRedundancy, _ := r.bits(2)
	padding, _ := r.bits(3)
	nonSync, _ := r.flag()
	degradation, _ := r.bits(16)
	f.IsLeading = isLeading
	f.SampleDependsOn = dependsOn
	f.SampleIsDependedOn = isDependedOn
	f.SampleHasRedundancy = hasRedundancy
	f.SamplePaddingValue = padding
	f.SampleIsNonSyncSample = nonSync
	f.SampleDegradationPriority = degradation
	return f
}

func encodeSampleFlags(f sampleFlags) uint32 {
	w := newBitWriter(32)
	w.putBits(0, 4)
	w.putBits(f.IsLeading, 2)
	w.putBits(f.SampleDependsOn, 2)
	w.putBits(f.SampleIsDependedOn, 2)
	w.putBits(f.SampleHasRedundancy, 2)
	w.putBits(f.SamplePaddingValue, 3)
	w.putFlag(f.SampleIsNonSyncSample)
	w.putBits(f.SampleDegradationPriority, 16)
	b := w.bytes()
	return be.Uint32(b)
}

// sidxReference is one packed 12-byte entry in a sidx box: a 1-bit
// reference_type, 31-bit referenced_size, 32-bit subsegment_duration, and
// a 1-bit starts_with_SAP, 3-bit SAP_type, 28-bit SAP_delta_time word.
type sidxReference struct {
	ReferenceType      uint32
	ReferencedSize     uint32
	SubsegmentDuration uint32
	StartsWithSAP      bool
	SAPType            uint32
	SAPDeltaTime       uint32
}

func decodeSidxReference(c *cursor) (sidxReference, error) {
	var ref sidxReference
	w1, err := c.u32()
	if err != nil {
		return ref, err
	}
	dur, err := c.u32()
	if err != nil {
		return ref, err
	}
	w3, err := c.u32()
	if err != nil {
		return ref, err
	}
	ref.ReferenceType = w1 >> 31
	ref.ReferencedSize = w1 & 0x7fffffff
	ref.SubsegmentDuration = dur
	ref.StartsWithSAP = w3>>31 != 0
	ref.SAPType = (w3 >> 28) & 0x7
	ref.SAPDeltaTime = w3 & 0x0fffffff
	return ref, nil
}

func encodeSidxReference(b *builder, ref sidxReference) {
	w1 := ref.ReferenceType<<31 | (ref.ReferencedSize & 0x7fffffff)
	b.u32(w1)
	b.u32(ref.SubsegmentDuration)
	var sap uint32
	if ref.StartsWithSAP {
		sap |= 1 << 31
	}
	sap |= (ref.SAPType & 0x7) << 28
	sap |= ref.SAPDeltaTime & 0x0fffffff
	b.u32(sap)
}
