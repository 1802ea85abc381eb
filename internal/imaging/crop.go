package imaging

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyRegion is returned when a region does not overlap the image.
var ErrEmptyRegion = errors.New("region does not overlap the image")

// CropRegion extracts region from img, clamped to the image bounds, and
// resizes it by scale with a Lanczos filter. A scale of 1 or less than or
// equal to 0 leaves the size unchanged. The result has its origin at (0, 0).
func CropRegion(img image.Image, region image.Rectangle, scale float64) (*image.NRGBA, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, ErrEmptyRegion
	}

	cropped := imaging.Crop(img, region)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}
