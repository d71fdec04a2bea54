package imageconv

import (
	"context"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // decode webp sources
)

// Imaging converts images in-process with disintegration/imaging.
type Imaging struct{}

// NewImaging constructs the native engine.
func NewImaging() *Imaging {
	return &Imaging{}
}

// Name identifies the engine.
func (i *Imaging) Name() string { return "imaging" }

// Convert decodes src honoring EXIF orientation, shrinks it to fit the
// profile's maximum dimension, and encodes dst in the format implied by its
// extension. Metadata is not carried over.
func (i *Imaging) Convert(ctx context.Context, src, dst string, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := imaging.FormatFromFilename(dst); err != nil {
		return fmt.Errorf("imaging %s: %w", p.Name, err)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("imaging %s: decode: %w", p.Name, err)
	}

	if d := p.ResizeMaxDimension; d > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > d || bounds.Dy() > d {
			img = imaging.Fit(img, d, d, imaging.Lanczos)
		}
	}

	quality := p.Quality
	if quality <= 0 || quality > 100 {
		quality = 75
	}
	if err := imaging.Save(img, dst,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	); err != nil {
		return fmt.Errorf("imaging %s: encode: %w", p.Name, err)
	}
	return nil
}
