package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageSide bounds listing and message images.
	MaxImageSide = 1200
	// AvatarSide is the square avatar edge.
	AvatarSide = 400
	// MaxPixels caps the decoded canvas. A few KB of compressed input can
	// otherwise declare gigapixel dimensions.
	MaxPixels = 40_000_000
)

var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// Result is an encoded image ready for storage.
type Result struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
	Ext      string
}

type Processor struct {
	quality int // JPEG quality (1-100)
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &Processor{quality: quality}
}

// Fit scales the image down so neither side exceeds maxSide. Smaller images are only re-encoded.
func (p *Processor) Fit(reader io.Reader, maxSide int) (*Result, error) {
	img, err := decode(reader)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := fitDimensions(b.Dx(), b.Dy(), maxSide)
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}
	return p.encode(img)
}

// Cover crops the centre square and scales it to side x side.
func (p *Processor) Cover(reader io.Reader, side int) (*Result, error) {
	img, err := decode(reader)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, centerSquare(img.Bounds()), draw.Over, nil)
	return p.encode(dst)
}

// decode checks the header against MaxPixels before allocating the full image.
func decode(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// encode writes JPEG. Transparent areas are flattened onto white.
func (p *Processor) encode(img image.Image) (*Result, error) {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &Result{
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: "image/jpeg",
		Ext:      ".jpg",
	}, nil
}

func fitDimensions(w, h, maxSide int) (int, int) {
	if w <= maxSide && h <= maxSide {
		return w, h
	}
	if w >= h {
		nh := h * maxSide / w
		if nh < 1 {
			nh = 1
		}
		return maxSide, nh
	}
	nw := w * maxSide / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxSide
}

func centerSquare(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w > h {
		off := (w - h) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+h, b.Max.Y)
	}
	off := (h - w) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+w)
}

// Dimensions decodes only the header.
func Dimensions(reader io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
