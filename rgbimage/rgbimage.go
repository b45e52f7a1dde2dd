// Package rgbimage stores per-pixel running sums of RGB radiance samples.
//
// An Image can be written to disk and read back later to continue adding
// samples, so a long render can be interrupted and resumed.
package rgbimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"harpoon/ray"
	"harpoon/vmath/vec3"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Channels          = 3
	DataLayoutVersion = 1

	// Limits on what Read accepts, so a corrupt file fails cleanly instead
	// of exhausting memory.
	maxHeaderLength = 1 << 20
	maxPixels       = 1 << 28
)

// Image is row-major.  Sums holds Channels floats per pixel, Counts one.
type Image struct {
	RowSize, ColSize int

	// Scene and MaxDepth record what produced the samples, so that a resumed
	// render can refuse to mix in samples from something else.
	Scene    string
	MaxDepth int

	Sums   []float32
	Counts []float32
}

type Sample struct {
	Sum   vec3.T
	Count float32
}

func New(rowSize, colSize int) *Image {
	im := &Image{}
	im.Resize(rowSize, colSize)
	return im
}

// Resize discards all samples.
func (s *Image) Resize(rowSize, colSize int) {
	s.RowSize = rowSize
	s.ColSize = colSize

	s.Sums = make([]float32, rowSize*colSize*Channels)
	s.Counts = make([]float32, rowSize*colSize)
}

func (s *Image) RecordSample(r, c int, radiance vec3.T) {
	idx := r*s.ColSize + c
	for i := 0; i < Channels; i++ {
		s.Sums[idx*Channels+i] += float32(radiance[i])
	}
	s.Counts[idx] += 1
}

func (s *Image) ReadSample(r, c int) Sample {
	idx := r*s.ColSize + c
	return Sample{
		Sum: vec3.T{
			float64(s.Sums[idx*Channels+0]),
			float64(s.Sums[idx*Channels+1]),
			float64(s.Sums[idx*Channels+2]),
		},
		Count: s.Counts[idx],
	}
}

// TotalSamples is the number of samples recorded across all pixels.
func (s *Image) TotalSamples() int {
	total := 0
	for _, c := range s.Counts {
		total += int(c)
	}
	return total
}

// Cut copies out the rectangle [rowSrc, rowLim) x [colSrc, colLim).
func (s *Image) Cut(rowSrc, rowLim, colSrc, colLim int) *Image {
	dst := &Image{Scene: s.Scene, MaxDepth: s.MaxDepth}
	dst.Resize(rowLim-rowSrc, colLim-colSrc)

	dstIndex := 0
	for r := rowSrc; r < rowLim; r++ {
		for c := colSrc; c < colLim; c++ {
			srcIndex := r*s.ColSize + c
			copy(dst.Sums[dstIndex*Channels:(dstIndex+1)*Channels], s.Sums[srcIndex*Channels:(srcIndex+1)*Channels])
			dst.Counts[dstIndex] = s.Counts[srcIndex]
			dstIndex++
		}
	}

	return dst
}

// Paste overwrites the rectangle of s starting at (rowSrc, colSrc) with src.
func (s *Image) Paste(src *Image, rowSrc, colSrc int) {
	for r := 0; r < src.RowSize; r++ {
		for c := 0; c < src.ColSize; c++ {
			dstIndex := (r+rowSrc)*s.ColSize + (c + colSrc)
			srcIndex := r*src.ColSize + c
			copy(s.Sums[dstIndex*Channels:(dstIndex+1)*Channels], src.Sums[srcIndex*Channels:(srcIndex+1)*Channels])
			s.Counts[dstIndex] = src.Counts[srcIndex]
		}
	}
}

var intensity = ray.Span{Lo: 0.000, Hi: 0.999}

// ToImage averages each pixel, applies gamma 2 and quantizes to 8 bits.
// Pixels with no samples are black.
func (s *Image) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, s.ColSize, s.RowSize))
	for r := 0; r < s.RowSize; r++ {
		for c := 0; c < s.ColSize; c++ {
			samp := s.ReadSample(r, c)

			var px [Channels]uint8
			if samp.Count > 0 {
				avg := vec3.DivVS(samp.Sum, float64(samp.Count))
				for i := 0; i < Channels; i++ {
					px[i] = uint8(256 * intensity.Clamp(linearToGamma(avg[i])))
				}
			}

			out.SetNRGBA(c, r, color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xff})
		}
	}
	return out
}

func linearToGamma(x float64) float64 {
	// NaN from a degenerate path shows up black instead of poisoning the
	// conversion.
	if x > 0 {
		return math.Sqrt(x)
	}
	return 0
}

// Header is the metadata block written ahead of the sample data.
func (s *Image) Header() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"rows":                s.RowSize,
		"cols":                s.ColSize,
		"channels":            Channels,
		"data_layout_version": DataLayoutVersion,
		"scene":               s.Scene,
		"max_depth":           s.MaxDepth,
	})
}

// ReadHeader reads only the length-prefixed header from in.
func ReadHeader(in io.Reader) (*structpb.Struct, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > maxHeaderLength {
		return nil, fmt.Errorf("header length %d exceeds limit %d", headerLength, maxHeaderLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	return hdr, nil
}

func headerInt(hdr *structpb.Struct, key string) (int, error) {
	v, ok := hdr.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("header is missing field %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("header field %q is not a number", key)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.Abs(f) > 1<<53 || f != math.Trunc(f) {
		return 0, fmt.Errorf("header field %q is not an integer: %v", key, f)
	}
	return int(f), nil
}

func Read(in io.Reader) (*Image, error) {
	hdr, err := ReadHeader(in)
	if err != nil {
		return nil, err
	}

	version, err := headerInt(hdr, "data_layout_version")
	if err != nil {
		return nil, err
	}
	if version != DataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", version)
	}

	channels, err := headerInt(hdr, "channels")
	if err != nil {
		return nil, err
	}
	if channels != Channels {
		return nil, fmt.Errorf("bad channel count: %v", channels)
	}

	rows, err := headerInt(hdr, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := headerInt(hdr, "cols")
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 || rows > maxPixels/cols {
		return nil, fmt.Errorf("bad image size %dx%d", cols, rows)
	}

	im := &Image{}
	im.Resize(rows, cols)
	im.Scene = hdr.GetFields()["scene"].GetStringValue()
	if maxDepth, err := headerInt(hdr, "max_depth"); err == nil {
		im.MaxDepth = maxDepth
	}

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, &im.Sums); err != nil {
		return nil, fmt.Errorf("while reading radiance sums: %w", err)
	}

	if err := binary.Read(zipReader, binary.LittleEndian, &im.Counts); err != nil {
		return nil, fmt.Errorf("while reading sample counts: %w", err)
	}

	return im, nil
}

func ReadFromFile(name string) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func Write(im *Image, w io.Writer) error {
	hdr, err := im.Header()
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Sums); err != nil {
		return fmt.Errorf("while writing radiance sums: %w", err)
	}

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Counts); err != nil {
		return fmt.Errorf("while writing sample counts: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

// WriteToFile writes im to a temporary file beside name and renames it into
// place, so an interrupted write never clobbers an earlier checkpoint.
func WriteToFile(im *Image, name string) error {
	tmpName := name + ".tmp"
	out, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("while opening output file: %w", err)
	}

	if err := Write(im, out); err != nil {
		out.Close()
		return fmt.Errorf("while writing image: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing output file: %w", err)
	}

	if err := os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("while renaming output file into place: %w", err)
	}

	return nil
}
