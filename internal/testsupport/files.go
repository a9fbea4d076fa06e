package testsupport

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// FrameColor returns a distinct opaque color for frame index i.
func FrameColor(i int) color.RGBA {
	palette := []color.RGBA{
		{R: 0xd0, G: 0x20, B: 0x20, A: 0xff},
		{R: 0x20, G: 0xa0, B: 0x30, A: 0xff},
		{R: 0x20, G: 0x40, B: 0xd0, A: 0xff},
		{R: 0xf0, G: 0xd0, B: 0x10, A: 0xff},
		{R: 0x90, G: 0x20, B: 0xb0, A: 0xff},
		{R: 0x10, G: 0xc0, B: 0xc0, A: 0xff},
		{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
		{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
	return palette[((i%len(palette))+len(palette))%len(palette)]
}

// ShotColor encodes call index n in the red and green channels. Colors are
// unique for n below 65536.
func ShotColor(n int) color.RGBA {
	return color.RGBA{R: uint8(n >> 8), G: uint8(n), B: 0x80, A: 0xff}
}

// ShotIndex reads back the call index of a PNG filled with ShotColor.
func ShotIndex(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	c := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)
	if c.B != 0x80 {
		return 0, fmt.Errorf("%s: pixel %v was not written by ShotColor", path, c)
	}
	return int(c.R)<<8 | int(c.G), nil
}

// SolidPNG encodes a size x size PNG filled with c.
func SolidPNG(t testing.TB, size int, c color.Color) []byte {
	t.Helper()
	data, err := EncodeSolidPNG(size, c)
	if err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return data
}

// EncodeSolidPNG is SolidPNG without a testing.TB, for fakes that run
// outside the test goroutine.
func EncodeSolidPNG(size int, c color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePNG writes a solid size x size PNG to path, creating parent
// directories.
func WritePNG(t testing.TB, path string, size int, c color.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, SolidPNG(t, size, c), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
