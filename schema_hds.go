package bmff

// Abst is the body of abst (Adobe HTTP Dynamic Streaming bootstrap info,
// carried as a top-level box despite its non-ISOBMFF origin): the
// segment/fragment run tables and server metadata needed to locate
// fragments in an HDS stream.
type Abst struct {
	InfoVersion         uint32
	Profile             bool
	Live                bool
	Update              bool
	TimeScale           uint32
	CurrentMediaTime    uint64
	SMPTETimeCodeOffset uint64
	MovieIdentifier     string
	ServerEntryTable    []string
	QualityEntryTable   []string
	DRMData             string
	Metadata            string
	SegmentRunTable     []*Box
	FragmentRunTable    []*Box
}

func decodeAbst(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	a := &Abst{}
	var err error
	if a.InfoVersion, err = c.u32(); err != nil {
		return err
	}
	attrsByte, err := c.u8()
	if err != nil {
		return err
	}
	r := newBitReader([]byte{attrsByte})
	_, _ = r.bits(1) // pad
	a.Profile, _ = r.flag()
	a.Live, _ = r.flag()
	a.Update, _ = r.flag()
	if a.TimeScale, err = c.u32(); err != nil {
		return err
	}
	if a.CurrentMediaTime, err = c.u64(); err != nil {
		return err
	}
	if a.SMPTETimeCodeOffset, err = c.u64(); err != nil {
		return err
	}
	if a.MovieIdentifier, err = c.cstringUTF8(); err != nil {
		return err
	}
	serverCount, err := c.u8()
	if err != nil {
		return err
	}
	for range serverCount {
		s, err := c.cstringUTF8()
		if err != nil {
			return err
		}
		a.ServerEntryTable = append(a.ServerEntryTable, s)
	}
	qualityCount, err := c.u8()
	if err != nil {
		return err
	}
	for range qualityCount {
		s, err := c.cstringUTF8()
		if err != nil {
			return err
		}
		a.QualityEntryTable = append(a.QualityEntryTable, s)
	}
	if a.DRMData, err = c.cstringUTF8(); err != nil {
		return err
	}
	if a.Metadata, err = c.cstringUTF8(); err != nil {
		return err
	}
	segCount, err := c.u8()
	if err != nil {
		return err
	}
	for range segCount {
		box, err := decodeOne(c)
		if err != nil {
			return err
		}
		a.SegmentRunTable = append(a.SegmentRunTable, box)
	}
	fragCount, err := c.u8()
	if err != nil {
		return err
	}
	for range fragCount {
		box, err := decodeOne(c)
		if err != nil {
			return err
		}
		a.FragmentRunTable = append(a.FragmentRunTable, box)
	}
	b.Body = a
	return nil
}

func buildAbst(b *Box) []byte {
	a := b.Body.(*Abst)
	bw := &builder{}
	bw.u32(a.InfoVersion)
	w := newBitWriter(8)
	w.putBits(0, 1)
	w.putFlag(a.Profile)
	w.putFlag(a.Live)
	w.putFlag(a.Update)
	w.putBits(0, 4)
	bw.bytes(w.bytes())
	bw.u32(a.TimeScale)
	bw.u64(a.CurrentMediaTime)
	bw.u64(a.SMPTETimeCodeOffset)
	bw.cstringUTF8(a.MovieIdentifier)
	bw.u8(uint8(len(a.ServerEntryTable)))
	for _, s := range a.ServerEntryTable {
		bw.cstringUTF8(s)
	}
	bw.u8(uint8(len(a.QualityEntryTable)))
	for _, s := range a.QualityEntryTable {
		bw.cstringUTF8(s)
	}
	bw.cstringUTF8(a.DRMData)
	bw.cstringUTF8(a.Metadata)
	bw.u8(uint8(len(a.SegmentRunTable)))
	for _, box := range a.SegmentRunTable {
		if err := encodeOne(bw, box); err != nil {
			break
		}
	}
	bw.u8(uint8(len(a.FragmentRunTable)))
	for _, box := range a.FragmentRunTable {
		if err := encodeOne(bw, box); err != nil {
			break
		}
	}
	return bw.buf
}

func init() { register(TypeAbst, &schema{decode: decodeAbst, build: buildAbst}) }

// AsrtEntry maps a run of consecutive segments to a fragment count.
type AsrtEntry struct {
	FirstSegment        uint32
	FragmentsPerSegment uint32
}

// Asrt is the body of asrt: the HDS segment run table.
type Asrt struct {
	QualityEntryTable []string
	Entries           []AsrtEntry
}

func decodeAsrt(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	a := &Asrt{}
	qualityCount, err := c.u8()
	if err != nil {
		return err
	}
	for range qualityCount {
		s, err := c.cstringUTF8()
		if err != nil {
			return err
		}
		a.QualityEntryTable = append(a.QualityEntryTable, s)
	}
	entryCount, err := c.u32()
	if err != nil {
		return err
	}
	a.Entries = make([]AsrtEntry, entryCount)
	for i := range a.Entries {
		fs, err := c.u32()
		if err != nil {
			return err
		}
		fps, err := c.u32()
		if err != nil {
			return err
		}
		a.Entries[i] = AsrtEntry{FirstSegment: fs, FragmentsPerSegment: fps}
	}
	b.Body = a
	return nil
}

func buildAsrt(b *Box) []byte {
	a := b.Body.(*Asrt)
	bw := &builder{}
	bw.u8(uint8(len(a.QualityEntryTable)))
	for _, s := range a.QualityEntryTable {
		bw.cstringUTF8(s)
	}
	bw.u32(uint32(len(a.Entries)))
	for _, e := range a.Entries {
		bw.u32(e.FirstSegment)
		bw.u32(e.FragmentsPerSegment)
	}
	return bw.buf
}

func init() { register(TypeAsrt, &schema{decode: decodeAsrt, build: buildAsrt}) }

// AfrtEntry describes one run of fragments within a quality level.
// Discontinuity is only meaningful (and only present on the wire) when
// FragmentDuration is zero.
type AfrtEntry struct {
	FirstFragment          uint32
	FirstFragmentTimestamp uint64
	FragmentDuration       uint32
	Discontinuity          uint8
}

// Afrt is the body of afrt: the HDS fragment run table.
type Afrt struct {
	Update            bool
	TimeScale         uint32
	QualityEntryTable []string
	Entries           []AfrtEntry
}

func decodeAfrt(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	a := &Afrt{}
	// flags is a 24-bit field where only the low bit (update) is meaningful.
	a.Update = b.Flags&0x1 != 0
	var err error
	if a.TimeScale, err = c.u32(); err != nil {
		return err
	}
	qualityCount, err := c.u8()
	if err != nil {
		return err
	}
	for range qualityCount {
		s, err := c.cstringUTF8()
		if err != nil {
			return err
		}
		a.QualityEntryTable = append(a.QualityEntryTable, s)
	}
	entryCount, err := c.u32()
	if err != nil {
		return err
	}
	a.Entries = make([]AfrtEntry, entryCount)
	for i := range a.Entries {
		var e AfrtEntry
		if e.FirstFragment, err = c.u32(); err != nil {
			return err
		}
		if e.FirstFragmentTimestamp, err = c.u64(); err != nil {
			return err
		}
		if e.FragmentDuration, err = c.u32(); err != nil {
			return err
		}
		if e.FragmentDuration == 0 {
			if e.Discontinuity, err = c.u8(); err != nil {
				return err
			}
		}
		a.Entries[i] = e
	}
	b.Body = a
	return nil
}

func buildAfrt(b *Box) []byte {
	a := b.Body.(*Afrt)
	bw := &builder{}
	bw.u32(a.TimeScale)
	bw.u8(uint8(len(a.QualityEntryTable)))
	for _, s := range a.QualityEntryTable {
		bw.cstringUTF8(s)
	}
	bw.u32(uint32(len(a.Entries)))
	for _, e := range a.Entries {
		bw.u32(e.FirstFragment)
		bw.u64(e.FirstFragmentTimestamp)
		bw.u32(e.FragmentDuration)
		if e.FragmentDuration == 0 {
			bw.u8(e.Discontinuity)
		}
	}
	return bw.buf
}

func init() { register(TypeAfrt, &schema{decode: decodeAfrt, build: buildAfrt}) }
