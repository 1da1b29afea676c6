// Package hdrio reads and writes panorama images. Radiance .hdr files
// keep their native float range; LDR formats (PNG, JPEG) are scaled to
// [0, 1] on decode.
package hdrio

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"golang.org/x/image/draw"

	"github.com/gekko3d/envlight/cubemap"
)

// Decode reads a panorama from path. Extension selects the codec:
// .hdr/.pic/.rgbe decode through the Radiance codec, anything else goes
// through the stdlib image registry.
func Decode(path string) (*cubemap.Panorama, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open panorama: %w", err)
	}
	defer f.Close()

	var img image.Image
	if isRadiance(path) {
		img, err = rgbe.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode panorama %s: %w", path, err)
	}
	return fromImage(img)
}

func isRadiance(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdr", ".pic", ".rgbe":
		return true
	}
	return false
}

func fromImage(img image.Image) (*cubemap.Panorama, error) {
	b := img.Bounds()
	p, err := cubemap.NewPanorama(b.Dy(), b.Dx())
	if err != nil {
		return nil, err
	}
	if h, ok := img.(hdr.Image); ok {
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				r, g, bl, _ := h.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
				p.Pix[(y*p.W+x)*3+0] = float32(r)
				p.Pix[(y*p.W+x)*3+1] = float32(g)
				p.Pix[(y*p.W+x)*3+2] = float32(bl)
			}
		}
		return p, nil
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			p.Pix[(y*p.W+x)*3+0] = float32(r) / 65535
			p.Pix[(y*p.W+x)*3+1] = float32(g) / 65535
			p.Pix[(y*p.W+x)*3+2] = float32(bl) / 65535
		}
	}
	return p, nil
}

// Encode writes a panorama as a Radiance .hdr file.
func Encode(path string, p *cubemap.Panorama) error {
	img := hdr.NewRGB(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			c := p.At(x, y)
			img.SetRGB(x, y, hdrcolor.RGB{R: float64(c.X()), G: float64(c.Y()), B: float64(c.Z())})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create panorama: %w", err)
	}
	defer f.Close()
	if err := rgbe.Encode(f, img); err != nil {
		return fmt.Errorf("encode panorama %s: %w", path, err)
	}
	return nil
}

// SavePreviewPNG writes a tone-mapped LDR preview of an HDR panorama,
// Reinhard-compressed and gamma-encoded, resized to h x w with
// Catmull-Rom filtering.
func SavePreviewPNG(path string, p *cubemap.Panorama, h, w int) error {
	if h <= 0 || w <= 0 {
		return fmt.Errorf("%w: preview size %dx%d", cubemap.ErrInvalidArgument, h, w)
	}
	src := image.NewNRGBA(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			c := p.At(x, y)
			i := src.PixOffset(x, y)
			src.Pix[i+0] = toneMap(c.X())
			src.Pix[i+1] = toneMap(c.Y())
			src.Pix[i+2] = toneMap(c.Z())
			src.Pix[i+3] = 0xff
		}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	defer f.Close()
	return png.Encode(f, dst)
}

func toneMap(v float32) uint8 {
	if v < 0 {
		v = 0
	}
	// Reinhard compression followed by sRGB-ish gamma.
	v = v / (1 + v)
	v = math32.Pow(v, 1/2.2)
	return uint8(v*255 + 0.5)
}
