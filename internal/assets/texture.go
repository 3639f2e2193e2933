package assets

import (
	"image"
	"image/draw"
	_ "image/png"
	"math"
	"os"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Texture holds tightly packed RGBA8 pixels.
type Texture struct {
	Width     int
	Height    int
	MipLevels int
	Pixels    []byte
}

// LoadTexture decodes a PNG, BMP or TIFF file.
func LoadTexture(path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open texture")
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode texture %s", path)
	}

	return NewTexture(decoded), nil
}

func NewTexture(img image.Image) *Texture {
	bounds := img.Bounds()
	// straight alpha
	pixels, ok := img.(*image.NRGBA)
	if !ok || pixels.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		pixels = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(pixels, pixels.Bounds(), img, bounds.Min, draw.Src)
	}

	return &Texture{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		MipLevels: MipLevels(bounds.Dx(), bounds.Dy()),
		Pixels:    pixels.Pix,
	}
}

// MipLevels is the length of the mip chain down to 1x1.
func MipLevels(width, height int) int {
	largest := width
	if height > largest {
		largest = height
	}
	if largest < 1 {
		return 1
	}
	return int(math.Floor(math.Log2(float64(largest)))) + 1
}
