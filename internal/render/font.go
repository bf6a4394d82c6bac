package render

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var labelFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faceCache hands out label faces by pixel size. Sizes are rounded to a
// quarter pixel so a slow zoom does not create a face per frame.
type faceCache struct {
	mu    sync.Mutex
	faces map[float64]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[float64]font.Face)}
}

func (fc *faceCache) face(px float64) (font.Face, error) {
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return nil, fmt.Errorf("invalid font size %v", px)
	}
	px = math.Round(px*4) / 4
	if px == 0 {
		px = 0.25
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if f, ok := fc.faces[px]; ok {
		return f, nil
	}
	f, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("label face at %vpx: %w", px, err)
	}
	fc.faces[px] = face
	return face, nil
}

// measure returns the advance width of s in pixels.
func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
