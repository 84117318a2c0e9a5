package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// GrayMethod selects how color pixels are reduced to one intensity.
type GrayMethod string

const (
	// GrayLuma uses bild's weighted RGB sum.
	GrayLuma GrayMethod = "luma"
	// GrayLightness uses CIE L*, which tracks perceived brightness more
	// closely on saturated colors.
	GrayLightness GrayMethod = "lightness"
)

// Preprocess describes how a decoded image becomes detector input.
type Preprocess struct {
	// Scale resizes the image before conversion; 1 keeps the original size.
	Scale float64 `json:"scale"`
	// Gray is the grayscale method, "luma" when empty.
	Gray GrayMethod `json:"grayscale"`
	// BlurRadius applies a Gaussian blur after conversion when positive.
	BlurRadius float64 `json:"blur_radius"`
}

// DefaultPreprocess keeps the image size, uses luma and does not blur.
func DefaultPreprocess() Preprocess {
	return Preprocess{Scale: 1, Gray: GrayLuma}
}

// Validate checks the preprocessing options.
func (p Preprocess) Validate() error {
	if p.Scale <= 0 || p.Scale > 8 {
		return fmt.Errorf("scale %g out of range (0, 8]", p.Scale)
	}
	switch p.Gray {
	case "", GrayLuma, GrayLightness:
	default:
		return fmt.Errorf("unknown grayscale method %q (want luma or lightness)", p.Gray)
	}
	if p.BlurRadius < 0 {
		return fmt.Errorf("blur radius %g must not be negative", p.BlurRadius)
	}
	return nil
}

// ToGray converts img into an 8-bit grayscale frame whose bounds start at
// the origin.
func ToGray(img image.Image, p Preprocess) (*image.Gray, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}

	src := img
	if p.Scale != 1 {
		w := int(math.Round(float64(img.Bounds().Dx()) * p.Scale))
		h := int(math.Round(float64(img.Bounds().Dy()) * p.Scale))
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %g leaves an empty %dx%d image", p.Scale, w, h)
		}
		src = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var g *image.Gray
	if p.Gray == GrayLightness {
		g = lightnessGray(src)
	} else {
		g = GrayFromRGBA(effect.Grayscale(src))
	}
	if p.BlurRadius > 0 {
		g = GrayFromRGBA(blur.Gaussian(g, p.BlurRadius))
	}
	return g, nil
}

// GrayFromRGBA copies the red channel of img into a grayscale image whose
// bounds start at the origin. bild returns *image.RGBA even for gray
// results; those carry equal R, G and B.
func GrayFromRGBA(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+4*w]
		dst := g.Pix[y*g.Stride : y*g.Stride+w]
		for x := range dst {
			dst[x] = src[4*x]
		}
	}
	return g
}

// lightnessGray maps every pixel to its CIE L* lightness scaled to 0-255.
// Fully transparent pixels become black.
func lightnessGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			g.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: clampByte(l * 255)})
		}
	}
	return g
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
