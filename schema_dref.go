package bmff

// boxTypeURL and boxTypeURN are the two entry types a dref box holds.
// They carry their own miniature full-box header (version + a single
// self_contained flag bit) but are never dispatched through the general
// Box registry since they only ever appear inside a DataReferenceBox.
var (
	boxTypeURL = BoxType{'u', 'r', 'l', ' '}
	boxTypeURN = BoxType{'u', 'r', 'n', ' '}
)

// DrefEntry is one data-reference entry: either a "url " or "urn "
// record. SelfContained means the referenced media is in the same file,
// in which case Location (and Name, for urn) is omitted.
type DrefEntry struct {
	Type          BoxType
	SelfContained bool
	Name          string
	Location      string
}

// Dref is the body of dref: a list of data-reference entries.
type Dref struct {
	Entries []DrefEntry
}

func decodeDref(b *Box, body []byte) error {
	c := newCursor(body, 0, len(body))
	count, err := c.u32()
	if err != nil {
		return err
	}
	d := &Dref{}
	for range count {
		size, err := c.u32()
		if err != nil {
			return err
		}
		typeTag, err := c.array4()
		if err != nil {
			return err
		}
		entryEnd := c.pos + int(size) - headerSize
		ec := newCursor(c.buf, c.pos, entryEnd)
		if err := c.skip(int(size) - headerSize); err != nil {
			return err
		}
		if _, err := ec.u8(); err != nil { // version, always 0
			return err
		}
		flags, err := ec.u24()
		if err != nil {
			return err
		}
		entry := DrefEntry{Type: BoxType(typeTag), SelfContained: flags&0x1 != 0}
		if BoxType(typeTag) == boxTypeURN && !entry.SelfContained {
			name, err := ec.cstringUTF8()
			if err != nil {
				return err
			}
			entry.Name = name
		}
		if !entry.SelfContained {
			loc, err := ec.cstringUTF8()
			if err != nil {
				return err
			}
			entry.Location = loc
		}
		d.Entries = append(d.Entries, entry)
	}
	b.Body = d
	return nil
}

func buildDref(b *Box) []byte {
	d := b.Body.(*Dref)
	bw := &builder{}
	bw.u32(uint32(len(d.Entries)))
	for _, e := range d.Entries {
		ew := &builder{}
		ew.u8(0) // version
		var flags uint32
		if e.SelfContained {
			flags = 1
		}
		ew.u24(flags)
		if e.Type == boxTypeURN && !e.SelfContained {
			ew.cstringUTF8(e.Name)
		}
		if !e.SelfContained {
			ew.cstringUTF8(e.Location)
		}
		bw.u32(uint32(headerSize + ew.len()))
		bw.array4(e.Type)
		bw.bytes(ew.buf)
	}
	return bw.buf
}

func init() { register(TypeDref, &schema{decode: decodeDref, build: buildDref}) }
