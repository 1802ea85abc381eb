package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Label is one region to outline on an annotated capture.
type Label struct {
	Region image.Rectangle
	Text   string

	// Resolved regions get a palette colour, unresolved ones are drawn red.
	Resolved bool
}

// UnresolvedColor outlines regions that produced no confident match.
var UnresolvedColor = color.RGBA{220, 40, 40, 255}

const (
	outlineWidth = 2
	labelPadding = 3
)

var (
	labelText = color.RGBA{255, 255, 255, 255}
	labelBack = color.RGBA{0, 0, 0, 180}
)

// Palette returns n distinct outline colours. Hues are spread evenly starting
// from green so none of them collides with UnresolvedColor.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		hue := math.Mod(120+float64(i)*360/float64(n), 360)
		r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
		out[i] = color.RGBA{r, g, b, 255}
	}
	return out
}

// Annotate copies img and draws every label's region outline with its text
// above it. The result has the same bounds as img.
func Annotate(img image.Image, labels []Label) *image.NRGBA {
	bounds := img.Bounds()
	result := image.NewNRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	palette := Palette(len(labels))
	for i, l := range labels {
		c := palette[i]
		if !l.Resolved {
			c = UnresolvedColor
		}
		drawOutline(result, l.Region, c)

		text := l.Text
		if text == "" {
			text = "?"
		}
		drawLabel(result, l.Region, text)
	}
	return result
}

// SaveAnnotated writes an annotated capture. The format follows the
// extension of path.
func SaveAnnotated(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	return nil
}

func drawOutline(img *image.NRGBA, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+outlineWidth),
		image.Rect(r.Min.X, r.Max.Y-outlineWidth, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+outlineWidth, r.Max.Y),
		image.Rect(r.Max.X-outlineWidth, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text on a darkened box just above region, or just inside
// its top edge when there is no room above.
func drawLabel(img *image.NRGBA, region image.Rectangle, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(labelText), Face: face}

	width := d.MeasureString(text).Ceil()
	height := face.Height
	box := image.Rect(0, 0, width+2*labelPadding, height+2*labelPadding)

	top := region.Min.Y - box.Dy()
	if top < img.Bounds().Min.Y {
		top = region.Min.Y
	}
	box = box.Add(image.Pt(region.Min.X, top))

	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(labelBack), image.Point{}, draw.Over)

	d.Dot = fixed.P(box.Min.X+labelPadding, box.Min.Y+labelPadding+face.Ascent)
	d.DrawString(text)
}
