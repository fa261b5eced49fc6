// Package output writes rendered images to disk in common raster formats.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for file extensions or names that map to no
// encoder.
var ErrUnknownFormat = errors.New("unknown image format")

// Format identifies an image encoding.
type Format int

// Supported formats.
const (
	PNG Format = iota
	BMP
	TIFF
	WebP
	TGA
)

var formatNames = map[Format]string{
	PNG:  "png",
	BMP:  "bmp",
	TIFF: "tiff",
	WebP: "webp",
	TGA:  "tga",
}

var extensions = map[string]Format{
	".png":  PNG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".webp": WebP,
	".tga":  TGA,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
}

// Encode writes img to w. All formats are lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case WebP:
		return nativewebp.Encode(w, img, nil)
	case TGA:
		return tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Save encodes img into path, creating parent directories as needed.
// The format comes from the extension.
func Save(path string, img image.Image) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if err := Encode(file, img, f); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}

// Resize scales img by factor with Catmull-Rom filtering. Factors of 1 or
// less than or equal to 0 return img unchanged; the result is at least 1×1.
func Resize(img image.Image, factor float64) image.Image {
	if factor == 1 || factor <= 0 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
