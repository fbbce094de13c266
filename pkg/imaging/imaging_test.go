package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestProcessKeepsSmallImages(t *testing.T) {
	res, err := NewProcessor(0, 0).Process(bytes.NewReader(encodePNG(t, 120, 80)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MIME)
	assert.Equal(t, 120, res.Width)
	assert.Equal(t, 80, res.Height)

	_, format, err := image.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestProcessDownscalesLongestEdge(t *testing.T) {
	res, err := NewProcessor(0, 100).Process(bytes.NewReader(encodeJPEG(t, 400, 200)))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 50, res.Height)

	res, err = NewProcessor(0, 100).Process(bytes.NewReader(encodeJPEG(t, 50, 300)))
	require.NoError(t, err)
	assert.Equal(t, 16, res.Width)
	assert.Equal(t, 100, res.Height)
}

func TestProcessRejectsOversized(t *testing.T) {
	data := encodePNG(t, 64, 64)
	_, err := NewProcessor(int64(len(data)-1), 0).Process(bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestProcessRejectsNonImages(t *testing.T) {
	_, err := NewProcessor(0, 0).Process(strings.NewReader("GIF89a not really"))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = NewProcessor(0, 0).Process(bytes.NewReader([]byte("\x89PNG\r\n\x1a\ncorrupt")))
	assert.True(t, errors.Is(err, ErrUnsupported))
}

// withDimensions rewrites the IHDR chunk of a PNG so it declares w x h pixels.
func withDimensions(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestProcessRejectsHugeCanvasBeforeDecoding(t *testing.T) {
	data := withDimensions(encodePNG(t, 1, 1), 20000, 20000)
	require.Less(t, len(data), DefaultMaxBytes)

	_, err := NewProcessor(0, 0).Process(bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrTooLarge))
	assert.True(t, errors.Is(err, ErrTooManyPixels))
}
