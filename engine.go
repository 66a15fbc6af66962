package bmff

import "fmt"

// Box is a node in a decoded ISOBMFF tree. Exactly one of Children, Body or
// Raw is meaningful for a given box, chosen by its Type (and, for uuid
// boxes, its ExtendedType):
//
//   - container types (moov, moof, trak, ...) populate Children and leave
//     Body/Raw nil;
//   - recognized leaf types populate Body with the box's typed struct
//     (*Ftyp, *Mvhd, *Trun, ...);
//   - unrecognized types keep their payload verbatim in Raw.
//
// Box is a plain mutable value: callers build, inspect and rewrite trees
// with ordinary field assignment and the helpers in tree.go.
type Box struct {
	Type BoxType

	// ExtendedType holds the 16-byte UUID that follows a uuid box's type
	// tag. It is the zero value for every other box type.
	ExtendedType [16]byte

	// Version and Flags are populated for full boxes (IsFullBox(Type)) and
	// for uuid boxes whose ExtendedType is a known PIFF type; they are zero
	// otherwise.
	Version uint8
	Flags   uint32

	Children []*Box
	Body     any
	Raw      []byte
}

// schema binds a box type to its body decoder/encoder pair. Every schema's
// Encode is derived from Build so length and content can never disagree
// (§8 length consistency).
type schema struct {
	decode func(b *Box, body []byte) error
	build  func(b *Box) []byte
}

var schemas = map[BoxType]*schema{}

func register(t BoxType, s *schema) {
	schemas[t] = s
}

const headerSize = 8   // size(4) + type(4)
const fullBoxPrefix = 4 // version(1) + flags(3)

// Decode parses a single top-level box from buf. buf must contain exactly
// one box; trailing or missing bytes are reported as ErrLengthOverrun /
// ErrUnexpectedEnd.
func Decode(buf []byte) (*Box, error) {
	if len(buf) >= 4 && uint64(be.Uint32(buf)) > uint64(len(buf)) {
		return nil, ErrUnexpectedEnd
	}
	c := newCursor(buf, 0, len(buf))
	b, err := decodeOne(c)
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, ErrLengthOverrun
	}
	return b, nil
}

// DecodeAll parses every top-level box in buf in sequence (the shape of a
// full file or a standalone segment: ftyp, moov, one or more moof/mdat
// pairs, ...).
func DecodeAll(buf []byte) ([]*Box, error) {
	c := newCursor(buf, 0, len(buf))
	var boxes []*Box
	for !c.done() {
		b, err := decodeOne(c)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

func decodeOne(c *cursor) (*Box, error) {
	start := c.pos
	size32, err := c.u32()
	if err != nil {
		return nil, ErrUnexpectedEnd
	}
	typeTag, err := c.array4()
	if err != nil {
		return nil, ErrUnexpectedEnd
	}
	t := BoxType(typeTag)

	var size int
	switch size32 {
	case 1:
		return nil, ErrUnsupportedLength64
	case 0:
		size = c.end - start
	default:
		size = int(size32)
	}
	if size < headerSize {
		return nil, ErrLengthUnderrun
	}
	bodyEnd := start + size
	if bodyEnd > c.end {
		return nil, ErrLengthOverrun
	}

	b := &Box{Type: t}

	if t == TypeUuid {
		uuid, err := c.array16()
		if err != nil {
			return nil, wrapPath("uuid", err)
		}
		b.ExtendedType = uuid
	}

	if IsFullBox(t) || (t == TypeUuid && isKnownPIFFType(b.ExtendedType)) {
		vflags, err := c.u32()
		if err != nil {
			return nil, wrapPath(t.String(), err)
		}
		b.Version = uint8(vflags >> 24)
		b.Flags = vflags & 0x00ffffff
	}

	body, err := c.bytesN(bodyEnd - c.pos)
	if err != nil {
		return nil, wrapPath(t.String(), err)
	}

	if err := decodeBody(b, body); err != nil {
		return nil, wrapPath(t.String(), err)
	}

	c.pos = bodyEnd
	return b, nil
}

func decodeBody(b *Box, body []byte) error {
	if IsContainerBox(b.Type) {
		children, err := decodeChildren(body)
		if err != nil {
			return err
		}
		b.Children = children
		return nil
	}
	if s, ok := schemas[b.Type]; ok {
		return s.decode(b, body)
	}
	if b.Type == TypeUuid {
		if s, ok := uuidSchemas[b.ExtendedType]; ok {
			return s.decode(b, body)
		}
	}
	b.Raw = body
	return nil
}

func decodeChildren(body []byte) ([]*Box, error) {
	c := newCursor(body, 0, len(body))
	var children []*Box
	for !c.done() {
		child, err := decodeOne(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Encode serializes a box tree back into its wire representation.
func Encode(b *Box) ([]byte, error) {
	bw := &builder{}
	if err := encodeOne(bw, b); err != nil {
		return nil, err
	}
	return bw.buf, nil
}

// EncodeAll serializes a sequence of top-level boxes back to back.
func EncodeAll(boxes []*Box) ([]byte, error) {
	bw := &builder{}
	for _, b := range boxes {
		if err := encodeOne(bw, b); err != nil {
			return nil, err
		}
	}
	return bw.buf, nil
}

func encodeOne(bw *builder, b *Box) error {
	body, err := encodeBody(b)
	if err != nil {
		return wrapPath(b.Type.String(), err)
	}
	fullBox := IsFullBox(b.Type) || (b.Type == TypeUuid && isKnownPIFFType(b.ExtendedType))
	size := headerSize + len(body)
	if b.Type == TypeUuid {
		size += 16
	}
	if fullBox {
		size += fullBoxPrefix
	}
	bw.u32(uint32(size))
	bw.array4(b.Type)
	if b.Type == TypeUuid {
		bw.array16(b.ExtendedType)
	}
	if fullBox {
		bw.u32(uint32(b.Version)<<24 | b.Flags&0x00ffffff)
	}
	bw.bytes(body)
	return nil
}

func encodeBody(b *Box) ([]byte, error) {
	if IsContainerBox(b.Type) {
		cw := &builder{}
		for _, child := range b.Children {
			if err := encodeOne(cw, child); err != nil {
				return nil, err
			}
		}
		return cw.buf, nil
	}
	if s, ok := schemas[b.Type]; ok {
		return s.build(b), nil
	}
	if b.Type == TypeUuid {
		if s, ok := uuidSchemas[b.ExtendedType]; ok {
			return s.build(b), nil
		}
	}
	return b.Raw, nil
}

// Length reports the total encoded size of b, including its own header.
// It is computed from the same Build path Encode uses, so it can never
// disagree with len(Encode(b)) (§8 length consistency).
func Length(b *Box) (int, error) {
	buf, err := Encode(b)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

// errf is a small fmt.Errorf wrapper kept for schema decode functions that
// need to annotate an error with a field name without pulling in fmt
// themselves at every call site.
func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
