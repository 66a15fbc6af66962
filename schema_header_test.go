package bmff

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMvhdRoundTripVersion0(t *testing.T) {
	b := &Box{Type: TypeMvhd, Body: &Mvhd{
		CreationTime:     1000,
		ModificationTime: 2000,
		Timescale:        10000000,
		Duration:         5000000,
		Rate:             65536,
		Volume:           256,
		Matrix:           unityMatrix,
		NextTrackID:      0xFFFFFFFF,
	}}
	out, err := Encode(b)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, uint8(0), decoded.Version)
	got := decoded.Body.(*Mvhd)
	require.Equal(t, uint64(1000), got.CreationTime)
	require.Equal(t, uint32(10000000), got.Timescale)
	require.Equal(t, uint64(5000000), got.Duration)
	require.Equal(t, unityMatrix, got.Matrix)
	require.Equal(t, uint32(0xFFFFFFFF), got.NextTrackID)
}

func TestMvhdRoundTripVersion1(t *testing.T) {
	b := &Box{Type: TypeMvhd, Version: 1, Body: &Mvhd{
		CreationTime:     1 << 40,
		ModificationTime: 2 << 40,
		Timescale:        48000,
		Duration:         1 << 40,
		Matrix:           unityMatrix,
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, uint8(1), decoded.Version)
	got := decoded.Body.(*Mvhd)
	require.Equal(t, uint64(1<<40), got.CreationTime)
	require.Equal(t, uint64(1<<40), got.Duration)
}

func TestTkhdRoundTrip(t *testing.T) {
	b := &Box{Type: TypeTkhd, Body: &Tkhd{
		TrackID:  7,
		Duration: 1000,
		Matrix:   unityMatrix,
		Width:    640 << 16,
		Height:   480 << 16,
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*Tkhd)
	require.Equal(t, uint32(7), got.TrackID)
	require.Equal(t, uint32(640<<16), got.Width)
	require.Equal(t, uint32(480<<16), got.Height)
}

func TestMdhdRoundTripWithLanguage(t *testing.T) {
	b := &Box{Type: TypeMdhd, Body: &Mdhd{
		Timescale: 44100,
		Duration:  9000,
		Language:  language{'u', 'n', 'd'},
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*Mdhd)
	require.Equal(t, uint32(44100), got.Timescale)
	require.Equal(t, language{'u', 'n', 'd'}, got.Language)
}

func TestHdlrRoundTrip(t *testing.T) {
	b := &Box{Type: TypeHdlr, Body: &Hdlr{
		HandlerType: [4]byte{'v', 'i', 'd', 'e'},
		Name:        "VideoHandler",
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	got := decoded.Body.(*Hdlr)
	require.Equal(t, [4]byte{'v', 'i', 'd', 'e'}, got.HandlerType)
	require.Equal(t, "VideoHandler", got.Name)
}

func TestVmhdAndSmhdRoundTrip(t *testing.T) {
	vb := &Box{Type: TypeVmhd, Body: &Vmhd{GraphicsMode: 1, Opcolor: [3]uint16{1, 2, 3}}}
	out, err := Encode(vb)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	gotV := decoded.Body.(*Vmhd)
	require.Equal(t, [3]uint16{1, 2, 3}, gotV.Opcolor)

	sb := &Box{Type: TypeSmhd, Body: &Smhd{Balance: -256}}
	out, err = Encode(sb)
	require.NoError(t, err)
	decoded, err = Decode(out)
	require.NoError(t, err)
	gotS := decoded.Body.(*Smhd)
	require.Equal(t, int16(-256), gotS.Balance)
}

func TestFtypAndStypShareSchema(t *testing.T) {
	b := &Box{Type: TypeStyp, Body: &Ftyp{
		MajorBrand:       [4]byte{'m', 's', 'd', 'h'},
		MinorVersion:     0,
		CompatibleBrands: [][4]byte{{'m', 's', 'd', 'h'}},
	}}
	out, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(out)
	require.NoError(t, err)
	require.Equal(t, TypeStyp, decoded.Type)
	got := decoded.Body.(*Ftyp)
	require.Equal(t, [4]byte{'m', 's', 'd', 'h'}, got.MajorBrand)
}
