package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func rgb(c color.Color) (uint8, uint8, uint8) {
	r, g, b, _ := c.RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestAnnotate_SameSize(t *testing.T) {
	img := createInMemoryImage(320, 180, color.RGBA{30, 30, 30, 255})

	out := Annotate(img, []Label{
		{Region: image.Rect(40, 80, 140, 110), Text: "Forma Blueprint", Resolved: true},
		{Region: image.Rect(180, 80, 280, 110)},
	})

	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
}

func TestAnnotate_OutlineColours(t *testing.T) {
	img := createInMemoryImage(320, 180, color.RGBA{30, 30, 30, 255})

	out := Annotate(img, []Label{
		{Region: image.Rect(40, 80, 140, 110), Text: "Forma Blueprint", Resolved: true},
		{Region: image.Rect(180, 80, 280, 110)},
	})

	// bottom edges are never covered by a label box
	if r, g, b := rgb(out.At(90, 109)); r == 30 && g == 30 && b == 30 {
		t.Error("resolved region was not outlined")
	}
	if r, g, b := rgb(out.At(230, 109)); r != UnresolvedColor.R || g != UnresolvedColor.G || b != UnresolvedColor.B {
		t.Errorf("unresolved outline: got (%d,%d,%d), want red", r, g, b)
	}

	// interior untouched
	if r, g, b := rgb(out.At(90, 100)); r != 30 || g != 30 || b != 30 {
		t.Errorf("interior changed: got (%d,%d,%d)", r, g, b)
	}

	// source image untouched
	if r, _, _ := rgb(img.At(230, 109)); r != 30 {
		t.Error("Annotate modified its input")
	}
}

func TestAnnotate_LabelAtTopEdge(t *testing.T) {
	img := createInMemoryImage(200, 60, color.Black)

	// no room above: label must still land inside the image
	out := Annotate(img, []Label{{Region: image.Rect(10, 0, 190, 40), Text: "Lex Prime Barrel", Resolved: true}})

	found := false
	for y := 0; y < 20 && !found; y++ {
		for x := 10; x < 190; x++ {
			if r, g, b := rgb(out.At(x, y)); r == 255 && g == 255 && b == 255 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("label text not drawn")
	}
}

func TestPalette(t *testing.T) {
	p := Palette(4)
	if len(p) != 4 {
		t.Fatalf("len: got %d, want 4", len(p))
	}

	seen := map[[3]uint8]bool{}
	for _, c := range p {
		r, g, b := rgb(c)
		key := [3]uint8{r, g, b}
		if seen[key] {
			t.Errorf("duplicate colour %v", key)
		}
		seen[key] = true
		if key == [3]uint8{UnresolvedColor.R, UnresolvedColor.G, UnresolvedColor.B} {
			t.Error("palette reuses the unresolved colour")
		}
	}

	if len(Palette(0)) != 0 {
		t.Error("Palette(0) should be empty")
	}
}

func TestSaveAnnotated(t *testing.T) {
	img := Annotate(createInMemoryImage(50, 50, color.Black), nil)
	path := filepath.Join(t.TempDir(), "annotated.png")

	if err := SaveAnnotated(img, path); err != nil {
		t.Fatalf("SaveAnnotated failed: %v", err)
	}

	loaded, err := NewImageCache().Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Bounds().Dx() != 50 {
		t.Errorf("width: got %d, want 50", loaded.Bounds().Dx())
	}

	if err := SaveAnnotated(img, filepath.Join(t.TempDir(), "annotated.unknown")); err == nil {
		t.Error("SaveAnnotated should fail for an unknown extension")
	}
}
