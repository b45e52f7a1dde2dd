package rgbimage

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"path/filepath"
	"testing"

	"harpoon/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func sampleImage() *Image {
	im := New(3, 4)
	im.Scene = "cornell-box"
	im.MaxDepth = 50
	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			for i := 0; i < r+c; i++ {
				im.RecordSample(r, c, vec3.T{float64(r), float64(c), 0.5})
			}
		}
	}
	return im
}

func TestRoundTrip(t *testing.T) {
	want := sampleImage()

	buf := &bytes.Buffer{}
	if err := Write(want, buf); err != nil {
		t.Fatalf("Error writing image: %v", err)
	}

	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Error reading image: %v", err)
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Round trip changed the image; diff (-got +want)\n%s", diff)
	}
}

func TestRoundTripFile(t *testing.T) {
	want := sampleImage()
	name := filepath.Join(t.TempDir(), "render.harpoon")

	if err := WriteToFile(want, name); err != nil {
		t.Fatalf("Error writing image: %v", err)
	}
	got, err := ReadFromFile(name)
	if err != nil {
		t.Fatalf("Error reading image: %v", err)
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Round trip changed the image; diff (-got +want)\n%s", diff)
	}
}

// headerOnly returns an encoded file consisting of just a header with the
// given fields.
func headerOnly(t *testing.T, fields map[string]interface{}) *bytes.Buffer {
	t.Helper()
	hdr, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("Error building header: %v", err)
	}
	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		t.Fatalf("Error marshaling header: %v", err)
	}

	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint64(len(hdrBytes)))
	buf.Write(hdrBytes)
	return buf
}

func TestReadRejectsBadHeader(t *testing.T) {
	good := func() map[string]interface{} {
		return map[string]interface{}{
			"rows":                1,
			"cols":                1,
			"channels":            Channels,
			"data_layout_version": DataLayoutVersion,
		}
	}

	testCases := []struct {
		desc  string
		field string
		value interface{}
	}{
		{"unknown layout version", "data_layout_version", DataLayoutVersion + 1},
		{"wrong channel count", "channels", 4},
		{"negative rows", "rows", -5},
		{"zero cols", "cols", 0},
		{"fractional rows", "rows", 2.5},
		{"too many pixels", "rows", 1 << 40},
		{"rows not a number", "rows", "three"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fields := good()
			fields[tc.field] = tc.value
			if _, err := Read(headerOnly(t, fields)); err == nil {
				t.Errorf("Expected an error")
			}
		})
	}
}

func TestReadRejectsHugeHeaderLength(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint64(1)<<63)
	buf.Write([]byte{0, 0, 0, 0})

	if _, err := Read(buf); err == nil {
		t.Errorf("Expected an error for a header length of 1<<63")
	}
}

func TestReadTruncated(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Write(sampleImage(), buf); err != nil {
		t.Fatalf("Error writing image: %v", err)
	}

	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()/2])
	if _, err := Read(truncated); err == nil {
		t.Errorf("Expected an error for a truncated file")
	}
}

func TestCutPaste(t *testing.T) {
	im := sampleImage()

	cut := im.Cut(1, 3, 1, 3)
	if cut.RowSize != 2 || cut.ColSize != 2 {
		t.Fatalf("Cut has size %dx%d, want 2x2", cut.RowSize, cut.ColSize)
	}
	if diff := cmp.Diff(cut.ReadSample(0, 0), im.ReadSample(1, 1)); diff != "" {
		t.Errorf("Bad cut; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(cut.ReadSample(1, 1), im.ReadSample(2, 2)); diff != "" {
		t.Errorf("Bad cut; diff (-got +want)\n%s", diff)
	}

	cut.RecordSample(0, 1, vec3.T{9, 9, 9})
	want := cut.ReadSample(0, 1)
	before := im.ReadSample(0, 0)

	im.Paste(cut, 1, 1)
	if diff := cmp.Diff(im.ReadSample(1, 2), want); diff != "" {
		t.Errorf("Bad paste; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(im.ReadSample(0, 0), before); diff != "" {
		t.Errorf("Paste touched a pixel outside the rectangle; diff (-got +want)\n%s", diff)
	}
}

func TestTotalSamples(t *testing.T) {
	// Pixel (r, c) holds r+c samples.
	want := 0
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			want += r + c
		}
	}
	if got := sampleImage().TotalSamples(); got != want {
		t.Errorf("TotalSamples() = %d, want %d", got, want)
	}
}

func TestToImage(t *testing.T) {
	im := New(1, 4)
	im.RecordSample(0, 1, vec3.T{0.25, 0.25, 0.25})
	im.RecordSample(0, 2, vec3.T{4, 1, 0})
	im.RecordSample(0, 2, vec3.T{2, 1, 0})
	im.RecordSample(0, 3, vec3.T{-1, 0.01, 0})

	out := im.ToImage()

	testCases := []struct {
		col  int
		want color.NRGBA
	}{
		// No samples.
		{0, color.NRGBA{0, 0, 0, 255}},
		// sqrt(0.25) = 0.5, scaled by 256.
		{1, color.NRGBA{128, 128, 128, 255}},
		// Averages above 1 saturate.
		{2, color.NRGBA{255, 255, 0, 255}},
		// Negative input is black; sqrt(0.01) = 0.1.
		{3, color.NRGBA{0, 25, 0, 255}},
	}

	for _, tc := range testCases {
		if diff := cmp.Diff(out.NRGBAAt(tc.col, 0), tc.want); diff != "" {
			t.Errorf("Bad pixel at column %d; diff (-got +want)\n%s", tc.col, diff)
		}
	}
}
