package ocr

import "image"

// MinInk is the smallest fraction of text pixels a preprocessed region needs
// before it is worth handing to Tesseract. Empty strips below it yield no lines.
const MinInk = 0.004

// InkRatio returns the fraction of dark pixels in a region produced by
// Preprocess. Only the red channel is read since the image is binary.
func InkRatio(img *image.RGBA) float64 {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	dark := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4] < 128 {
				dark++
			}
		}
	}
	return float64(dark) / float64(total)
}
