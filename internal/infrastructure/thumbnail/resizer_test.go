package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) image.Point {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Size()
}

func TestResizer_Resize(t *testing.T) {
	r := NewResizer()

	t.Run("scales wide png keeping ratio", func(t *testing.T) {
		out, ct, err := r.Resize(encoded(t, 800, 400, imaging.PNG), "image/png", 200)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)
		assert.Equal(t, image.Pt(200, 100), decodeSize(t, out))
	})

	t.Run("jpeg stays jpeg", func(t *testing.T) {
		out, ct, err := r.Resize(encoded(t, 600, 600, imaging.JPEG), "image/jpg", 300)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ct)
		assert.Equal(t, image.Pt(300, 300), decodeSize(t, out))
	})

	t.Run("narrow image untouched", func(t *testing.T) {
		in := encoded(t, 100, 50, imaging.PNG)
		out, ct, err := r.Resize(in, "image/png", 300)
		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.Equal(t, "image/png", ct)
	})

	t.Run("not an image", func(t *testing.T) {
		_, _, err := r.Resize([]byte("%PDF-1.4"), "image/png", 300)
		assert.Error(t, err)
	})
}
