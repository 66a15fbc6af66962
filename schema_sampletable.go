package bmff

// Stsz is the body of stsz: either one uniform sample size (SampleSize !=
// 0, EntrySizes nil) or an explicit per-sample size table.
type Stsz struct {
	SampleSize  uint32
	SampleCount uint32
	EntrySizes  []uint32
}

func decodeStsz(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	s := &Stsz{}
	var err error
	if s.SampleSize, err = c.u32(); err != nil {
		return err
	}
	if s.SampleCount, err = c.u32(); err != nil {
		return err
	}
	if s.SampleSize == 0 {
		s.EntrySizes = make([]uint32, s.SampleCount)
		for i := range s.EntrySizes {
			if s.EntrySizes[i], err = c.u32(); err != nil {
				return err
			}
		}
	}
	b.Body = s
	return nil
}

func buildStsz(b *Box) []byte {
	s := b.Body.(*Stsz)
	bw := &builder{}
	bw.u32(s.SampleSize)
	bw.u32(s.SampleCount)
	for _, v := range s.EntrySizes {
		bw.u32(v)
	}
	return bw.buf
}

func init() { register(TypeStsz, &schema{decode: decodeStsz, build: buildStsz}) }

// SttsEntry is one run-length encoded decode-time delta.
type SttsEntry struct {
	SampleCount uint32
	SampleDelta uint32
}

// Stts is the body of stts: the decoding time-to-sample table.
type Stts struct {
	Entries []SttsEntry
}

func decodeStts(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Stts{Entries: make([]SttsEntry, 0, count)}
	for range count {
		var e SttsEntry
		if e.SampleCount, err = c.u32(); err != nil {
			return err
		}
		if e.SampleDelta, err = c.u32(); err != nil {
			return err
		}
		s.Entries = append(s.Entries, e)
	}
	b.Body = s
	return nil
}

func buildStts(b *Box) []byte {
	s := b.Body.(*Stts)
	bw := &builder{}
	bw.u32(uint32(len(s.Entries)))
	for _, e := range s.Entries {
		bw.u32(e.SampleCount)
		bw.u32(e.SampleDelta)
	}
	return bw.buf
}

func init() { register(TypeStts, &schema{decode: decodeStts, build: buildStts}) }

// Stss is the body of stss: the list of sync (key frame) sample numbers.
type Stss struct {
	SampleNumbers []uint32
}

func decodeStss(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Stss{SampleNumbers: make([]uint32, count)}
	for i := range s.SampleNumbers {
		if s.SampleNumbers[i], err = c.u32(); err != nil {
			return err
		}
	}
	b.Body = s
	return nil
}

func buildStss(b *Box) []byte {
	s := b.Body.(*Stss)
	bw := &builder{}
	bw.u32(uint32(len(s.SampleNumbers)))
	for _, v := range s.SampleNumbers {
		bw.u32(v)
	}
	return bw.buf
}

func init() { register(TypeStss, &schema{decode: decodeStss, build: buildStss}) }

// StscEntry maps a run of chunks to a sample count and sample description.
type StscEntry struct {
	FirstChunk             uint32
	SamplesPerChunk        uint32
	SampleDescriptionIndex uint32
}

// Stsc is the body of stsc: the sample-to-chunk table.
type Stsc struct {
	Entries []StscEntry
}

func decodeStsc(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Stsc{Entries: make([]StscEntry, 0, count)}
	for range count {
		var e StscEntry
		if e.FirstChunk, err = c.u32(); err != nil {
			return err
		}
		if e.SamplesPerChunk, err = c.u32(); err != nil {
			return err
		}
		if e.SampleDescriptionIndex, err = c.u32(); err != nil {
			return err
		}
		s.Entries = append(s.Entries, e)
	}
	b.Body = s
	return nil
}

func buildStsc(b *Box) []byte {
	s := b.Body.(*Stsc)
	bw := &builder{}
	bw.u32(uint32(len(s.Entries)))
	for _, e := range s.Entries {
		bw.u32(e.FirstChunk)
		bw.u32(e.SamplesPerChunk)
		bw.u32(e.SampleDescriptionIndex)
	}
	return bw.buf
}

func init() { register(TypeStsc, &schema{decode: decodeStsc, build: buildStsc}) }

// Stco is the body of stco: 32-bit chunk offsets.
type Stco struct {
	ChunkOffsets []uint32
}

func decodeStco(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Stco{ChunkOffsets: make([]uint32, count)}
	for i := range s.ChunkOffsets {
		if s.ChunkOffsets[i], err = c.u32(); err != nil {
			return err
		}
	}
	b.Body = s
	return nil
}

func buildStco(b *Box) []byte {
	s := b.Body.(*Stco)
	bw := &builder{}
	bw.u32(uint32(len(s.ChunkOffsets)))
	for _, v := range s.ChunkOffsets {
		bw.u32(v)
	}
	return bw.buf
}

func init() { register(TypeStco, &schema{decode: decodeStco, build: buildStco}) }

// Co64 is the body of co64: 64-bit chunk offsets, for files too large for
// stco's 32-bit field.
type Co64 struct {
	ChunkOffsets []uint64
}

func decodeCo64(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Co64{ChunkOffsets: make([]uint64, count)}
	for i := range s.ChunkOffsets {
		if s.ChunkOffsets[i], err = c.u64(); err != nil {
			return err
		}
	}
	b.Body = s
	return nil
}

func buildCo64(b *Box) []byte {
	s := b.Body.(*Co64)
	bw := &builder{}
	bw.u32(uint32(len(s.ChunkOffsets)))
	for _, v := range s.ChunkOffsets {
		bw.u64(v)
	}
	return bw.buf
}

func init() { register(TypeCo64, &schema{decode: decodeCo64, build: buildCo64}) }

// CttsEntry is one run-length encoded composition-time offset. SampleOffset
// is signed on version 1 (negative offsets allowed) and unsigned on
// version 0.
type CttsEntry struct {
	SampleCount  uint32
	SampleOffset int32
}

// Ctts is the body of ctts: the composition time-to-sample table, mapping
// decode order to presentation order.
type Ctts struct {
	Entries []CttsEntry
}

func decodeCtts(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	s := &Ctts{Entries: make([]CttsEntry, 0, count)}
	for range count {
		var e CttsEntry
		if e.SampleCount, err = c.u32(); err != nil {
			return err
		}
		if b.Version == 1 {
			if e.SampleOffset, err = c.i32(); err != nil {
				return err
			}
		} else {
			v, err := c.u32()
			if err != nil {
				return err
			}
			e.SampleOffset = int32(v)
		}
		s.Entries = append(s.Entries, e)
	}
	b.Body = s
	return nil
}

func buildCtts(b *Box) []byte {
	s := b.Body.(*Ctts)
	bw := &builder{}
	bw.u32(uint32(len(s.Entries)))
	for _, e := range s.Entries {
		bw.u32(e.SampleCount)
		if b.Version == 1 {
			bw.i32(e.SampleOffset)
		} else {
			bw.u32(uint32(e.SampleOffset))
		}
	}
	return bw.buf
}

func init() { register(TypeCtts, &schema{decode: decodeCtts, build: buildCtts}) }
