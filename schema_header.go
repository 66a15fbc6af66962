package bmff

// Ftyp is the body of both ftyp and styp: a major brand, a minor version
// and a list of compatible brands filling out the rest of the box.
type Ftyp struct {
	MajorBrand       [4]byte
	MinorVersion     uint32
	CompatibleBrands [][4]byte
}

func decodeFtyp(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	f := &Ftyp{}
	major, err := c.array4()
	if err != nil {
		return err
	}
	f.MajorBrand = major
	if f.MinorVersion, err = c.u32(); err != nil {
		return err
	}
	for !c.done() {
		brand, err := c.array4()
		if err != nil {
			return err
		}
		f.CompatibleBrands = append(f.CompatibleBrands, brand)
	}
	b.Body = f
	return nil
}

func buildFtyp(b *Box) []byte {
	f := b.Body.(*Ftyp)
	bw := &builder{}
	bw.array4(f.MajorBrand)
	bw.u32(f.MinorVersion)
	for _, brand := range f.CompatibleBrands {
		bw.array4(brand)
	}
	return bw.buf
}

func init() {
	s := &schema{decode: decodeFtyp, build: buildFtyp}
	register(TypeFtyp, s)
	register(TypeStyp, s)
}

// unityMatrix is the identity transformation matrix used as the default
// for mvhd.Matrix and tkhd.Matrix.
var unityMatrix = [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000}

// Mvhd is the body of mvhd: movie-wide timing and the identity transform.
type Mvhd struct {
	CreationTime     uint64
	ModificationTime uint64
	Timescale        uint32
	Duration         uint64
	Rate             int32
	Volume           int16
	Matrix           [9]int32
	NextTrackID      uint32
}

func decodeMvhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	m := &Mvhd{}
	var err error
	if b.Version == 1 {
		if m.CreationTime, err = c.u64(); err != nil {
			return err
		}
		if m.ModificationTime, err = c.u64(); err != nil {
			return err
		}
		if m.Timescale, err = c.u32(); err != nil {
			return err
		}
		if m.Duration, err = c.u64(); err != nil {
			return err
		}
	} else {
		ct, err := c.u32()
		if err != nil {
			return err
		}
		mt, err := c.u32()
		if err != nil {
			return err
		}
		if m.Timescale, err = c.u32(); err != nil {
			return err
		}
		dur, err := c.u32()
		if err != nil {
			return err
		}
		m.CreationTime, m.ModificationTime, m.Duration = uint64(ct), uint64(mt), uint64(dur)
	}
	rate, err := c.i32()
	if err != nil {
		return err
	}
	m.Rate = rate
	vol, err := c.i16()
	if err != nil {
		return err
	}
	m.Volume = vol
	if err := c.skip(2 + 4 + 4); err != nil { // reserved
		return err
	}
	for i := range m.Matrix {
		v, err := c.i32()
		if err != nil {
			return err
		}
		m.Matrix[i] = v
	}
	if err := c.skip(4 * 6); err != nil { // pre_defined
		return err
	}
	if m.NextTrackID, err = c.u32(); err != nil {
		return err
	}
	b.Body = m
	return nil
}

func buildMvhd(b *Box) []byte {
	m := b.Body.(*Mvhd)
	bw := &builder{}
	if b.Version == 1 {
		bw.u64(m.CreationTime)
		bw.u64(m.ModificationTime)
		bw.u32(m.Timescale)
		bw.u64(m.Duration)
	} else {
		bw.u32(uint32(m.CreationTime))
		bw.u32(uint32(m.ModificationTime))
		bw.u32(m.Timescale)
		bw.u32(uint32(m.Duration))
	}
	bw.i32(m.Rate)
	bw.i16(m.Volume)
	bw.zero(2 + 4 + 4)
	for _, v := range m.Matrix {
		bw.i32(v)
	}
	bw.zero(4 * 6)
	bw.u32(m.NextTrackID)
	return bw.buf
}

func init() { register(TypeMvhd, &schema{decode: decodeMvhd, build: buildMvhd}) }

// Tkhd is the body of tkhd: per-track timing, geometry and the identity
// transform.
type Tkhd struct {
	CreationTime     uint64
	ModificationTime uint64
	TrackID          uint32
	Duration         uint64
	Layer            int16
	AlternateGroup   int16
	Volume           int16
	Matrix           [9]int32
	Width            uint32
	Height           uint32
}

func decodeTkhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	t := &Tkhd{}
	var err error
	if b.Version == 1 {
		if t.CreationTime, err = c.u64(); err != nil {
			return err
		}
		if t.ModificationTime, err = c.u64(); err != nil {
			return err
		}
		if t.TrackID, err = c.u32(); err != nil {
			return err
		}
		if err = c.skip(4); err != nil {
			return err
		}
		if t.Duration, err = c.u64(); err != nil {
			return err
		}
	} else {
		ct, err := c.u32()
		if err != nil {
			return err
		}
		mt, err := c.u32()
		if err != nil {
			return err
		}
		if t.TrackID, err = c.u32(); err != nil {
			return err
		}
		if err = c.skip(4); err != nil {
			return err
		}
		dur, err := c.u32()
		if err != nil {
			return err
		}
		t.CreationTime, t.ModificationTime, t.Duration = uint64(ct), uint64(mt), uint64(dur)
	}
	if err := c.skip(8); err != nil { // reserved
		return err
	}
	layer, err := c.i16()
	if err != nil {
		return err
	}
	t.Layer = layer
	ag, err := c.i16()
	if err != nil {
		return err
	}
	t.AlternateGroup = ag
	vol, err := c.i16()
	if err != nil {
		return err
	}
	t.Volume = vol
	if err := c.skip(2); err != nil {
		return err
	}
	for i := range t.Matrix {
		v, err := c.i32()
		if err != nil {
			return err
		}
		t.Matrix[i] = v
	}
	if t.Width, err = c.u32(); err != nil {
		return err
	}
	if t.Height, err = c.u32(); err != nil {
		return err
	}
	b.Body = t
	return nil
}

func buildTkhd(b *Box) []byte {
	t := b.Body.(*Tkhd)
	bw := &builder{}
	if b.Version == 1 {
		bw.u64(t.CreationTime)
		bw.u64(t.ModificationTime)
		bw.u32(t.TrackID)
		bw.zero(4)
		bw.u64(t.Duration)
	} else {
		bw.u32(uint32(t.CreationTime))
		bw.u32(uint32(t.ModificationTime))
		bw.u32(t.TrackID)
		bw.zero(4)
		bw.u32(uint32(t.Duration))
	}
	bw.zero(8)
	bw.i16(t.Layer)
	bw.i16(t.AlternateGroup)
	bw.i16(t.Volume)
	bw.zero(2)
	for _, v := range t.Matrix {
		bw.i32(v)
	}
	bw.u32(t.Width)
	bw.u32(t.Height)
	return bw.buf
}

func init() { register(TypeTkhd, &schema{decode: decodeTkhd, build: buildTkhd}) }

// Mdhd is the body of mdhd: a media timescale/duration and a packed ISO
// 639-2/T language code.
type Mdhd struct {
	CreationTime     uint64
	ModificationTime uint64
	Timescale        uint32
	Duration         uint64
	Language         language
}

func decodeMdhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	m := &Mdhd{}
	var err error
	if b.Version == 1 {
		if m.CreationTime, err = c.u64(); err != nil {
			return err
		}
		if m.ModificationTime, err = c.u64(); err != nil {
			return err
		}
		if m.Timescale, err = c.u32(); err != nil {
			return err
		}
		if m.Duration, err = c.u64(); err != nil {
			return err
		}
	} else {
		ct, err := c.u32()
		if err != nil {
			return err
		}
		mt, err := c.u32()
		if err != nil {
			return err
		}
		if m.Timescale, err = c.u32(); err != nil {
			return err
		}
		dur, err := c.u32()
		if err != nil {
			return err
		}
		m.CreationTime, m.ModificationTime, m.Duration = uint64(ct), uint64(mt), uint64(dur)
	}
	langWord, err := c.u16()
	if err != nil {
		return err
	}
	m.Language = decodeLanguage(langWord)
	if err := c.skip(2); err != nil {
		return err
	}
	b.Body = m
	return nil
}

func buildMdhd(b *Box) []byte {
	m := b.Body.(*Mdhd)
	bw := &builder{}
	if b.Version == 1 {
		bw.u64(m.CreationTime)
		bw.u64(m.ModificationTime)
		bw.u32(m.Timescale)
		bw.u64(m.Duration)
	} else {
		bw.u32(uint32(m.CreationTime))
		bw.u32(uint32(m.ModificationTime))
		bw.u32(m.Timescale)
		bw.u32(uint32(m.Duration))
	}
	bw.u16(encodeLanguage(m.Language))
	bw.zero(2)
	return bw.buf
}

func init() { register(TypeMdhd, &schema{decode: decodeMdhd, build: buildMdhd}) }

// Hdlr is the body of hdlr: the handler type tag (e.g. "vide", "soun")
// and a human-readable name.
type Hdlr struct {
	HandlerType [4]byte
	Name        string
}

func decodeHdlr(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	h := &Hdlr{}
	if err := c.skip(4); err != nil { // pre_defined
		return err
	}
	ht, err := c.array4()
	if err != nil {
		return err
	}
	h.HandlerType = ht
	if err := c.skip(12); err != nil { // reserved
		return err
	}
	name, err := c.cstringUTF8()
	if err != nil {
		return err
	}
	h.Name = name
	b.Body = h
	return nil
}

func buildHdlr(b *Box) []byte {
	h := b.Body.(*Hdlr)
	bw := &builder{}
	bw.zero(4)
	bw.array4(h.HandlerType)
	bw.zero(12)
	bw.cstringUTF8(h.Name)
	return bw.buf
}

func init() { register(TypeHdlr, &schema{decode: decodeHdlr, build: buildHdlr}) }

// Vmhd is the body of vmhd: the video-track composition mode and color.
type Vmhd struct {
	GraphicsMode uint16
	Opcolor      [3]uint16
}

func decodeVmhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	v := &Vmhd{}
	gm, err := c.u16()
	if err != nil {
		return err
	}
	v.GraphicsMode = gm
	for i := range v.Opcolor {
		o, err := c.u16()
		if err != nil {
			return err
		}
		v.Opcolor[i] = o
	}
	b.Body = v
	return nil
}

func buildVmhd(b *Box) []byte {
	v := b.Body.(*Vmhd)
	bw := &builder{}
	bw.u16(v.GraphicsMode)
	for _, o := range v.Opcolor {
		bw.u16(o)
	}
	return bw.buf
}

func init() { register(TypeVmhd, &schema{decode: decodeVmhd, build: buildVmhd}) }

// Smhd is the body of smhd: the stereo balance of a sound track.
type Smhd struct {
	Balance int16
}

func decodeSmhd(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	s := &Smhd{}
	bal, err := c.i16()
	if err != nil {
		return err
	}
	s.Balance = bal
	if err := c.skip(2); err != nil { // reserved
		return err
	}
	b.Body = s
	return nil
}

func buildSmhd(b *Box) []byte {
	s := b.Body.(*Smhd)
	bw := &builder{}
	bw.i16(s.Balance)
	bw.zero(2)
	return bw.buf
}

func init() { register(TypeSmhd, &schema{decode: decodeSmhd, build: buildSmhd}) }
