package bmff

// MPEG-4 descriptor parsing for esds boxes (ISO/IEC 14496-1 §8.3).

var tagToName = map[byte]string{
	0x03: "ESDescriptor",
	0x04: "DecoderConfigDescriptor",
	0x05: "DecoderSpecificInfo",
	0x06: "SLConfigDescriptor",
}

type descriptor struct {
	tag      byte
	tagName  string
	length   int
	oti      byte
	buffer   []byte
	children map[string]*descriptor
}

func decodeDescriptor(buf []byte, start, end int) *descriptor {
	if start >= end {
		return nil
	}
	tag := buf[start]
	ptr := start + 1
	length := 0
	for ptr < end {
		lenByte := buf[ptr]
		ptr++
		length = (length << 7) | int(lenByte&0x7f)
		if lenByte&0x80 == 0 {
			break
		}
	}

	tagName := tagToName[tag]
	d := &descriptor{
		tag:      tag,
		tagName:  tagName,
		length:   (ptr - start) + length,
		children: make(map[string]*descriptor),
	}

	switch tagName {
	case "ESDescriptor":
		decodeESDescriptor(d, buf, ptr, end)
	case "DecoderConfigDescriptor":
		decodeDecoderConfigDescriptor(d, buf, ptr, end)
	case "DecoderSpecificInfo":
		dEnd := min(ptr+length, end)
		d.buffer = buf[ptr:dEnd]
	default:
		dEnd := min(ptr+length, end)
		d.buffer = buf[ptr:dEnd]
	}

	return d
}

func decodeDescriptorArray(buf []byte, start, end int) map[string]*descriptor {
	m := make(map[string]*descriptor)
	ptr := start
	for ptr+2 <= end {
		desc := decodeDescriptor(buf, ptr, end)
		if desc == nil {
			break
		}
		ptr += desc.length
		name := desc.tagName
		if name == "" {
			continue
		}
		m[name] = desc
	}
	return m
}

func decodeESDescriptor(d *descriptor, buf []byte, start, end int) {
	if start+3 > end {
		return
	}
	d.buffer = buf[start : start+2] // ES_ID
	flags := buf[start+2]
	ptr := start + 3
	if flags&0x80 != 0 {
		ptr += 2
	}
	if flags&0x40 != 0 {
		if ptr >= end {
			return
		}
		l := int(buf[ptr])
		ptr += l + 1
	}
	if flags&0x20 != 0 {
		ptr += 2
	}
	d.children = decodeDescriptorArray(buf, ptr, end)
}

func decodeDecoderConfigDescriptor(d *descriptor, buf []byte, start, end int) {
	if start >= end {
		return
	}
	d.oti = buf[start]
	d.children = decodeDescriptorArray(buf, start+13, end)
}

// Esds is the body of esds: the minimal subset of the MPEG-4 elementary
// stream descriptor tree needed to recover a codec's object type and its
// decoder-specific configuration bytes (e.g. an AAC AudioSpecificConfig).
type Esds struct {
	ESID                 uint16
	ObjectTypeIndication uint8
	DecoderSpecificInfo  []byte
}

// ParseEsds extracts ES_ID, object type indication and decoder-specific
// info from a raw esds payload (the ES_Descriptor tree, starting at its
// tag byte). esds is not given a registered schema: the real descriptor
// grammar carries variable-length size fields, an optional URL/OCR/stream-
// dependence tail and codec-specific decoder-config fields this module has
// no use for, so re-encoding a decoded Esds could never reliably reproduce
// the original bytes. Boxes of type esds are therefore decoded and encoded
// through the generic Raw passthrough (byte-exact by construction), and
// callers that need the codec details — such as the track package — call
// ParseEsds directly on Box.Raw.
func ParseEsds(body []byte) (*Esds, error) {
	es := decodeDescriptor(body, 0, len(body))
	if es == nil || es.tagName != "ESDescriptor" {
		return nil, ErrConstMismatch
	}
	e := &Esds{}
	if len(es.buffer) >= 2 {
		e.ESID = be.Uint16(es.buffer)
	}
	if dc, ok := es.children["DecoderConfigDescriptor"]; ok {
		e.ObjectTypeIndication = dc.oti
		if dsi, ok := dc.children["DecoderSpecificInfo"]; ok {
			e.DecoderSpecificInfo = dsi.buffer
		}
	}
	return e, nil
}
