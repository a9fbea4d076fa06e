package encoding

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/ericpauley/go-quantize/quantize"

	"webgif/internal/failure"
	"webgif/internal/fileutil"
	"webgif/internal/logging"
)

const (
	// MinQuality samples every pixel when building a palette.
	MinQuality = 1
	// MaxQuality samples every 30th pixel.
	MaxQuality = 30

	paletteSize = 256
)

// Options configures an Encoder.
type Options struct {
	// Size is the canvas edge in pixels. Frames of another size are scaled
	// to fit and centered.
	Size int
	// FrameDelay is the display time of each frame, stored in centiseconds.
	FrameDelay time.Duration
	// Quality is the palette sampling stride, MinQuality..MaxQuality.
	Quality int
}

// Encoder turns PNG frames into an animated GIF.
type Encoder struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Encoder. Out-of-range quality values are clamped.
func New(opts Options, logger *slog.Logger) *Encoder {
	opts.Quality = min(max(opts.Quality, MinQuality), MaxQuality)
	if opts.FrameDelay < 0 {
		opts.FrameDelay = 0
	}
	return &Encoder{opts: opts, logger: logging.NewComponentLogger(logger, "encoder")}
}

// DelayCentiseconds converts d to the GIF frame delay unit, rounding to the
// nearest centisecond.
func DelayCentiseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(d) / float64(10*time.Millisecond)))
}

// Encode writes an animated GIF built from the PNG files at paths, in order,
// and returns the number of frames written. An empty path list produces a
// GIF with no frames.
func (e *Encoder) Encode(ctx context.Context, paths []string, w io.Writer) (int, error) {
	if len(paths) == 0 {
		e.logger.Warn("no frames captured; writing empty gif",
			logging.String(logging.FieldEventType, "empty_gif"),
		)
		if err := writeEmptyGIF(w, e.opts.Size); err != nil {
			return 0, failure.Wrap(failure.ErrEncode, "encode", "write empty gif", "", err)
		}
		return 0, nil
	}

	delay := DelayCentiseconds(e.opts.FrameDelay)
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(paths)),
		Delay:     make([]int, 0, len(paths)),
		LoopCount: 0,
	}

	canvas := image.NewRGBA(image.Rect(0, 0, e.opts.Size, e.opts.Size))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		src, err := decodePNG(path)
		if err != nil {
			return 0, failure.Wrap(failure.ErrEncode, "encode", "decode frame", fmt.Sprintf("frame %d", i+1), err)
		}
		fit(canvas, src)
		anim.Image = append(anim.Image, e.palettize(canvas))
		anim.Delay = append(anim.Delay, delay)
	}

	buffered := bufio.NewWriter(w)
	if err := gif.EncodeAll(buffered, anim); err != nil {
		return 0, failure.Wrap(failure.ErrEncode, "encode", "write gif", "", err)
	}
	if err := buffered.Flush(); err != nil {
		return 0, failure.Wrap(failure.ErrEncode, "encode", "flush gif", "", err)
	}

	e.logger.Debug("gif encoded",
		logging.Int("frames", len(anim.Image)),
		logging.Int("delay_cs", delay),
		logging.Int("quality", e.opts.Quality),
	)
	return len(anim.Image), nil
}

// EncodeFile encodes paths into dest. dest only appears once the whole GIF
// has been written.
func (e *Encoder) EncodeFile(ctx context.Context, paths []string, dest string) (int, error) {
	file, err := fileutil.CreateAtomic(dest, 0o644)
	if err != nil {
		return 0, failure.Wrap(failure.ErrEncode, "encode", "create output", dest, err)
	}
	defer file.Abort()

	frames, err := e.Encode(ctx, paths, file)
	if err != nil {
		return 0, err
	}
	if err := file.Commit(); err != nil {
		return 0, failure.Wrap(failure.ErrEncode, "encode", "finalize output", dest, err)
	}
	e.logger.Info("gif written",
		logging.String("path", dest),
		logging.Int("frames", frames),
	)
	return frames, nil
}

func (e *Encoder) palettize(src *image.RGBA) *image.Paletted {
	pal := buildPalette(src, e.opts.Quality)
	dst := image.NewPaletted(src.Bounds(), pal)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, src.Bounds().Min)
	return dst
}

// buildPalette quantizes a sample of every stride-th pixel of img.
func buildPalette(img *image.RGBA, stride int) color.Palette {
	sample := samplePixels(img, stride)
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, paletteSize), sample)
	if len(pal) == 0 {
		return palette.Plan9
	}
	return pal
}

// samplePixels copies every stride-th pixel, in raster order, into a
// one-row image.
func samplePixels(img *image.RGBA, stride int) image.Image {
	if stride <= 1 {
		return img
	}
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	count := (total + stride - 1) / stride
	sample := image.NewRGBA(image.Rect(0, 0, count, 1))
	for i, n := 0, 0; i < total; i, n = i+stride, n+1 {
		x := b.Min.X + i%b.Dx()
		y := b.Min.Y + i/b.Dx()
		sample.SetRGBA(n, 0, img.RGBAAt(x, y))
	}
	return sample
}

// fit paints src onto canvas over white, scaled down to fit when larger
// and centered.
func fit(canvas *image.RGBA, src image.Image) {
	cb := canvas.Bounds()
	draw.Draw(canvas, cb, image.White, image.Point{}, draw.Src)

	sb := src.Bounds()
	if sb.Dx() <= cb.Dx() && sb.Dy() <= cb.Dy() {
		offset := image.Pt((cb.Dx()-sb.Dx())/2, (cb.Dy()-sb.Dy())/2)
		draw.Draw(canvas, sb.Sub(sb.Min).Add(offset), src, sb.Min, draw.Over)
		return
	}

	scale := math.Min(float64(cb.Dx())/float64(sb.Dx()), float64(cb.Dy())/float64(sb.Dy()))
	w := max(int(float64(sb.Dx())*scale), 1)
	h := max(int(float64(sb.Dy())*scale), 1)
	ox := (cb.Dx() - w) / 2
	oy := (cb.Dy() - h) / 2
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			scaled.Set(x, y, src.At(sx, sy))
		}
	}
	draw.Draw(canvas, image.Rect(ox, oy, ox+w, oy+h), scaled, image.Point{}, draw.Over)
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, err := png.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
