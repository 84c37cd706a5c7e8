package world

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	// Heightmap assets are PNG files.
	_ "image/png"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// LoadHeightmap reads an image from disk for use as a heightmap. Only
// channel 0 of each pixel is sampled during generation.
func LoadHeightmap(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("heightmap %s: %w", path, ErrEmptyHeightmap)
	}
	return img, nil
}

// ErrEmptyHeightmap is returned when a heightmap has no pixels.
var ErrEmptyHeightmap = errors.New("heightmap has no pixels")

// NoiseHeightmap synthesizes a width × height grayscale heightmap from layered
// simplex noise. Used when no heightmap asset is configured.
func NoiseHeightmap(width, height int, seed int64) *image.Gray {
	noise := opensimplex.NewNormalized(seed)
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := octaveNoise(noise, float64(x), float64(y), 4, 0.08, 0.5)
			img.SetGray(x, y, color.Gray{Y: uint8(v * 255)})
		}
	}
	return img
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// sample returns channel 0 of the pixel at (x, y), scaled to 0–255.
func sample(img image.Image, x, y int) float64 {
	r, _, _, _ := img.At(x, y).RGBA()
	return float64(r >> 8)
}
