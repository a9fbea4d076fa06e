package encoding_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orisano/pixelmatch"

	"webgif/internal/encoding"
	"webgif/internal/failure"
	"webgif/internal/logging"
	"webgif/internal/testsupport"
)

const frameSize = 16

func writeFrames(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "frame-"+string(rune('a'+i))+".png")
		testsupport.WritePNG(t, path, frameSize, testsupport.FrameColor(i))
		paths = append(paths, path)
	}
	return paths
}

func decodePNGFile(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestEncodeKeepsFrameOrder(t *testing.T) {
	paths := writeFrames(t, t.TempDir(), 4)
	enc := encoding.New(encoding.Options{Size: frameSize, FrameDelay: 150 * time.Millisecond, Quality: 1}, logging.NewNop())

	var buf bytes.Buffer
	n, err := enc.Encode(context.Background(), paths, &buf)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != len(paths) {
		t.Fatalf("expected %d frames, got %d", len(paths), n)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != len(paths) {
		t.Fatalf("expected %d gif frames, got %d", len(paths), len(anim.Image))
	}
	if anim.LoopCount != 0 {
		t.Fatalf("expected infinite loop, got LoopCount=%d", anim.LoopCount)
	}
	for i, frame := range anim.Image {
		if anim.Delay[i] != 15 {
			t.Fatalf("frame %d: expected delay 15cs, got %d", i, anim.Delay[i])
		}
		want := decodePNGFile(t, paths[i])
		diff, err := pixelmatch.MatchPixel(want, frame, pixelmatch.Threshold(0.1))
		if err != nil {
			t.Fatalf("frame %d: pixelmatch: %v", i, err)
		}
		if diff != 0 {
			t.Fatalf("frame %d differs from source in %d pixels", i, diff)
		}
	}
}

func TestEncodeZeroFramesWritesEmptyGIF(t *testing.T) {
	enc := encoding.New(encoding.Options{Size: 480, Quality: 25}, logging.NewNop())
	var buf bytes.Buffer
	n, err := enc.Encode(context.Background(), nil, &buf)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected zero frames, got %d", n)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, []byte("GIF89a")) {
		t.Fatalf("missing GIF89a header: %q", data)
	}
	if data[len(data)-1] != 0x3B {
		t.Fatalf("missing trailer byte, got %#x", data[len(data)-1])
	}
	cfg, err := gif.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 480 || cfg.Height != 480 {
		t.Fatalf("expected 480x480 screen, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestEncodeFitsLargerFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, testsupport.FrameColor(2))
		}
	}
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	testsupport.WriteFile(t, path, raw.Bytes())

	enc := encoding.New(encoding.Options{Size: frameSize, Quality: 30}, logging.NewNop())
	var buf bytes.Buffer
	if _, err := enc.Encode(context.Background(), []string{path}, &buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if b := anim.Image[0].Bounds(); b.Dx() != frameSize || b.Dy() != frameSize {
		t.Fatalf("expected %dx%d frame, got %dx%d", frameSize, frameSize, b.Dx(), b.Dy())
	}
}

func TestEncodeFileLeavesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	paths := writeFrames(t, dir, 2)
	broken := filepath.Join(dir, "broken.png")
	testsupport.WriteFile(t, broken, []byte("not a png"))
	paths = append(paths, broken)

	outDir := t.TempDir()
	dest := filepath.Join(outDir, "web.gif")
	enc := encoding.New(encoding.Options{Size: frameSize, Quality: 10}, logging.NewNop())
	_, err := enc.EncodeFile(context.Background(), paths, dest)
	if err == nil {
		t.Fatal("expected error for undecodable frame")
	}
	if !errors.Is(err, failure.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, found %d entries", len(entries))
	}
}

func TestEncodeFileWritesGIF(t *testing.T) {
	paths := writeFrames(t, t.TempDir(), 3)
	dest := filepath.Join(t.TempDir(), "web.gif")
	enc := encoding.New(encoding.Options{Size: frameSize, FrameDelay: 40 * time.Millisecond, Quality: 25}, logging.NewNop())
	n, err := enc.EncodeFile(context.Background(), paths, dest)
	if err != nil {
		t.Fatalf("EncodeFile failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 frames, got %d", n)
	}
	file, err := os.Open(dest)
	if err != nil {
		t.Fatalf("open gif: %v", err)
	}
	defer file.Close()
	anim, err := gif.DecodeAll(file)
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != 3 || anim.Delay[0] != 4 {
		t.Fatalf("unexpected gif: frames=%d delay=%v", len(anim.Image), anim.Delay)
	}
}

func TestEncodeStopsWhenCanceled(t *testing.T) {
	paths := writeFrames(t, t.TempDir(), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enc := encoding.New(encoding.Options{Size: frameSize, Quality: 25}, logging.NewNop())
	if _, err := enc.Encode(ctx, paths, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDelayCentiseconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{4 * time.Millisecond, 0},
		{5 * time.Millisecond, 1},
		{150 * time.Millisecond, 15},
		{1 * time.Second, 100},
	}
	for _, tt := range tests {
		if got := encoding.DelayCentiseconds(tt.in); got != tt.want {
			t.Errorf("DelayCentiseconds(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
