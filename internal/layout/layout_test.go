package layout

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/relic-scan/internal/catalog"
	"github.com/ironsheep/relic-scan/internal/match"
)

// fakeOCR returns canned lines keyed by the exact region it is asked about.
type fakeOCR struct {
	text  map[image.Rectangle][]string
	err   error
	calls []image.Rectangle
}

func (f *fakeOCR) RecognizeRegion(_ context.Context, _ image.Image, region image.Rectangle) ([]string, error) {
	f.calls = append(f.calls, region)
	if f.err != nil {
		return nil, f.err
	}
	return f.text[region], nil
}

func newResolver(t *testing.T, ocr Recognizer) *Resolver {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewResolver(ocr, match.New(c, match.Options{}), zerolog.Nop())
}

func reference() image.Image {
	return image.NewGray(image.Rect(0, 0, ReferenceWidth, ReferenceHeight))
}

func TestTable(t *testing.T) {
	for _, n := range SearchOrder {
		l, ok := ForSlots(n)
		require.True(t, ok, n.String())
		assert.Equal(t, n, l.Slots)
		assert.Len(t, l.Regions, int(n))

		for i := 1; i < len(l.Regions); i++ {
			assert.Less(t, l.Regions[i-1].Max.X, l.Regions[i].Min.X, "%s regions overlap", n)
		}
		for _, r := range l.Regions {
			assert.True(t, r.In(image.Rect(0, 0, ReferenceWidth, ReferenceHeight)))
		}
	}

	_, ok := ForSlots(5)
	assert.False(t, ok)
}

func TestForSlots_ReturnsCopy(t *testing.T) {
	l, _ := ForSlots(Two)
	l.Regions[0] = image.Rectangle{}

	again, _ := ForSlots(Two)
	assert.Equal(t, strip(724), again.Regions[0])
}

func TestAll_SearchOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	for i, l := range all {
		assert.Equal(t, SearchOrder[i], l.Slots)
	}
}

func TestScaledTo(t *testing.T) {
	l, _ := ForSlots(Two)

	assert.Equal(t, l.Regions, l.ScaledTo(image.Rect(0, 0, ReferenceWidth, ReferenceHeight)))

	half := l.ScaledTo(image.Rect(0, 0, 960, 540))
	assert.Equal(t, image.Rect(362, 202, 477, 230), half[0])

	offset := l.ScaledTo(image.Rect(100, 50, 100+ReferenceWidth, 50+ReferenceHeight))
	assert.Equal(t, strip(724).Add(image.Pt(100, 50)), offset[0])
}

func TestResolve_TwoSlotCapture(t *testing.T) {
	ocr := &fakeOCR{text: map[image.Rectangle][]string{
		strip(724): {"Loki Prime", " Systems "},
		strip(966): {"Ash Prime Blueprint"},
	}}

	out, err := newResolver(t, ocr).Resolve(context.Background(), reference())
	require.NoError(t, err)

	require.True(t, out.Resolved())
	assert.Equal(t, Two, out.Layout.Slots)
	assert.Equal(t, []string{"Loki Prime Systems", "Ash Prime Blueprint"}, out.Names)

	require.Len(t, out.Slots, 2)
	assert.Equal(t, "Loki Prime Systems", out.Slots[0].Cleaned)
	assert.Equal(t, []string{"Loki Prime", " Systems "}, out.Slots[0].Lines)

	assert.Equal(t, []Attempt{
		{Slots: Four, Resolved: 0},
		{Slots: Three, Resolved: 0},
		{Slots: Two, Resolved: 2, Accepted: true},
	}, out.Attempts)

	// 4 + 3 + 2 regions, and never the single-slot layout.
	assert.Len(t, ocr.calls, 9)
}

func TestResolve_PartialFourSlotIsNotAccepted(t *testing.T) {
	ocr := &fakeOCR{text: map[image.Rectangle][]string{
		strip(480):  {"Loki Prime Systems"},
		strip(722):  {"Ash Prime Blueprint"},
		strip(964):  {"Forma Blueprint"},
		strip(1210): {"zzzz qqqq"},
	}}

	out, err := newResolver(t, ocr).Resolve(context.Background(), reference())
	require.NoError(t, err)

	assert.False(t, out.Resolved())
	assert.Empty(t, out.Names)
	assert.Nil(t, out.Slots)
	require.Len(t, out.Attempts, 4)
	assert.Equal(t, Attempt{Slots: Four, Resolved: 3}, out.Attempts[0])
}

func TestResolve_NothingRecognized(t *testing.T) {
	out, err := newResolver(t, &fakeOCR{}).Resolve(context.Background(), reference())
	require.NoError(t, err)

	assert.False(t, out.Resolved())
	assert.NotNil(t, out.Names)
	assert.Empty(t, out.Names)
	assert.Len(t, out.Attempts, 4)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"names":[]`)
	assert.NotContains(t, string(b), `"layout"`)
}

func TestResolve_DuplicateLabelsCollapse(t *testing.T) {
	ocr := &fakeOCR{text: map[image.Rectangle][]string{
		strip(724): {"Forma Blueprint"},
		strip(966): {"forma blueprint"},
	}}

	out, err := newResolver(t, ocr).Resolve(context.Background(), reference())
	require.NoError(t, err)

	assert.Equal(t, Two, out.Layout.Slots)
	assert.Equal(t, []string{"Forma Blueprint"}, out.Names)
	assert.LessOrEqual(t, len(out.Names), int(out.Layout.Slots))
}

func TestResolve_LabelIsFirstMatch(t *testing.T) {
	ocr := &fakeOCR{text: map[image.Rectangle][]string{
		strip(845): {"zzzz qqqq | Lex Prime Barrel | Forma Blueprint"},
	}}

	out, err := newResolver(t, ocr).Resolve(context.Background(), reference())
	require.NoError(t, err)

	require.True(t, out.Resolved())
	assert.Equal(t, One, out.Layout.Slots)
	assert.Equal(t, "Lex Prime Barrel", out.Slots[0].Label)
	assert.Equal(t, []string{"Lex Prime Barrel"}, out.Names)
	assert.Len(t, out.Slots[0].Results, 3)
}

func TestResolve_ScalesToCapture(t *testing.T) {
	capture := image.NewGray(image.Rect(0, 0, 960, 540))
	l, _ := ForSlots(One)
	region := l.ScaledTo(capture.Bounds())[0]

	ocr := &fakeOCR{text: map[image.Rectangle][]string{region: {"Vasto Prime Receiver"}}}

	out, err := newResolver(t, ocr).Resolve(context.Background(), capture)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vasto Prime Receiver"}, out.Names)
	assert.Equal(t, region, out.Slots[0].Region)
}

func TestResolve_OCRErrorAborts(t *testing.T) {
	boom := errors.New("engine crashed")
	ocr := &fakeOCR{err: boom}

	_, err := newResolver(t, ocr).Resolve(context.Background(), reference())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "4-slot layout")
	assert.Len(t, ocr.calls, 1)
}

func TestResolve_EmptyCaptureSkipsOCR(t *testing.T) {
	ocr := &fakeOCR{}

	out, err := newResolver(t, ocr).Resolve(context.Background(), image.NewGray(image.Rectangle{}))
	require.NoError(t, err)
	assert.False(t, out.Resolved())
	assert.Empty(t, ocr.calls)
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ocr := &fakeOCR{}
	_, err := newResolver(t, ocr).Resolve(ctx, reference())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ocr.calls)
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"Forma Blueprint", "Lex Prime Barrel", "FORMA BLUEPRINT", "Lex Prime Barrel"})
	assert.Equal(t, []string{"Forma Blueprint", "Lex Prime Barrel"}, got)

	assert.Empty(t, Dedupe(nil))
}
