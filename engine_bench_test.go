package bmff

import "testing"

func buildSampleMoovForBench() *Box {
	mvhd := &Box{Type: TypeMvhd, Body: &Mvhd{Timescale: 30000, Duration: 368640, Matrix: unityMatrix}}
	tkhd := &Box{Type: TypeTkhd, Body: &Tkhd{TrackID: 1, Duration: 368640, Matrix: unityMatrix, Width: 1920 << 16, Height: 1080 << 16}}
	mdhd := &Box{Type: TypeMdhd, Body: &Mdhd{Timescale: 12288, Duration: 368640, Language: language{'u', 'n', 'd'}}}
	hdlr := &Box{Type: TypeHdlr, Body: &Hdlr{HandlerType: [4]byte{'v', 'i', 'd', 'e'}, Name: "VideoHandler"}}
	avcC := &Box{Type: TypeAvcC, Body: &AvcC{Profile: 0x64, Level: 0x1e, SPS: [][]byte{{0x67, 0x64, 0x00, 0x1e}}, PPS: [][]byte{{0x68, 0xeb}}}}
	avc1 := &Box{Type: TypeAvc1, Body: &VisualSampleEntry{DataReferenceIndex: 1, Width: 1920, Height: 1080, Children: []*Box{avcC}}}
	stsd := &Box{Type: TypeStsd, Body: &Stsd{Entries: []*Box{avc1}}}
	stsz := &Box{Type: TypeStsz, Body: &Stsz{SampleCount: 900, EntrySizes: make([]uint32, 900)}}
	stts := &Box{Type: TypeStts, Body: &Stts{Entries: []SttsEntry{{SampleCount: 900, SampleDelta: 512}}}}
	stsc := &Box{Type: TypeStsc, Body: &Stsc{Entries: []StscEntry{{FirstChunk: 1, SamplesPerChunk: 900, SampleDescriptionIndex: 1}}}}
	stco := &Box{Type: TypeStco, Body: &Stco{ChunkOffsets: []uint32{1024}}}
	stbl := &Box{Type: TypeStbl, Children: []*Box{stsd, stsz, stts, stsc, stco}}
	minf := &Box{Type: TypeMinf, Children: []*Box{stbl}}
	mdia := &Box{Type: TypeMdia, Children: []*Box{mdhd, hdlr, minf}}
	trak := &Box{Type: TypeTrak, Children: []*Box{tkhd, mdia}}
	trex := &Box{Type: TypeTrex, Body: &Trex{TrackID: 1, DefaultSampleDescriptionIndex: 1}}
	mvex := &Box{Type: TypeMvex, Children: []*Box{trex}}
	return &Box{Type: TypeMoov, Children: []*Box{mvhd, trak, mvex}}
}

func BenchmarkEncodeMoov(b *testing.B) {
	moov := buildSampleMoovForBench()
	b.ResetTimer()
	for b.Loop() {
		_, err := Encode(moov)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeMoov(b *testing.B) {
	moov := buildSampleMoovForBench()
	data, err := Encode(moov)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		if _, err := Decode(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeAllTopLevelBoxes(b *testing.B) {
	ftyp := &Box{Type: TypeFtyp, Body: &Ftyp{MajorBrand: [4]byte{'i', 's', 'o', 'm'}, MinorVersion: 1, CompatibleBrands: [][4]byte{{'m', 'p', '4', '2'}, {'i', 's', 'o', '6'}}}}
	moov := buildSampleMoovForBench()
	var data []byte
	for _, box := range []*Box{ftyp, moov} {
		enc, err := Encode(box)
		if err != nil {
			b.Fatal(err)
		}
		data = append(data, enc...)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for b.Loop() {
		if _, err := DecodeAll(data); err != nil {
			b.Fatal(err)
		}
	}
}
