package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/imaging"
)

// Defaults tuned for the reward screen's light-on-dark name strips.
const (
	DefaultLanguage  = "eng"
	DefaultThreshold = 140
	DefaultUpscale   = 2.0
)

// Options configures the Tesseract adapter.
type Options struct {
	// Language is the Tesseract language code. Its traineddata must be installed.
	Language string

	// TessdataPrefix overrides the directory Tesseract loads traineddata from.
	// Empty uses the system default.
	TessdataPrefix string

	// Threshold is the luminance cutoff used to binarize a region (0-255).
	Threshold uint8

	// Upscale is the Lanczos resize factor applied before OCR. 1 disables it.
	Upscale float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Language:  DefaultLanguage,
		Threshold: DefaultThreshold,
		Upscale:   DefaultUpscale,
	}
}

// Tesseract recognizes reward names with a local Tesseract install.
//
// A new gosseract client is created per region. Clients are not safe for
// concurrent use and a scan only needs a handful of regions.
type Tesseract struct {
	opts Options
	log  zerolog.Logger
}

// New creates a Tesseract adapter. Zero-valued options fall back to the defaults.
func New(opts Options, log zerolog.Logger) *Tesseract {
	def := DefaultOptions()
	if opts.Language == "" {
		opts.Language = def.Language
	}
	if opts.Threshold == 0 {
		opts.Threshold = def.Threshold
	}
	if opts.Upscale == 0 {
		opts.Upscale = def.Upscale
	}
	return &Tesseract{opts: opts, log: log}
}

// Options returns the effective options.
func (t *Tesseract) Options() Options {
	return t.opts
}

// RecognizeRegion runs OCR over one region of capture.
//
// The region is clamped to the capture bounds, upscaled, preprocessed with
// Preprocess, and handed to Tesseract as a PNG. The result is split into trimmed,
// non-empty lines. An empty region, or one with less than MinInk text pixels,
// yields no lines and no error.
//
// Tesseract calls cannot be interrupted, so ctx is only checked before the
// call starts.
func (t *Tesseract) RecognizeRegion(ctx context.Context, capture image.Image, region image.Rectangle) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	crop, err := imaging.CropRegion(capture, region, t.opts.Upscale)
	if errors.Is(err, imaging.ErrEmptyRegion) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prepared := Preprocess(crop, t.opts.Threshold)
	if ink := InkRatio(prepared); ink < MinInk {
		t.log.Debug().Stringer("region", region).Float64("ink", ink).Msg("blank region, skipping OCR")
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}

	text, err := t.recognize(buf.Bytes())
	if err != nil {
		return nil, err
	}

	lines := SplitLines(text)
	t.log.Debug().Stringer("region", region).Strs("lines", lines).Msg("ocr")
	return lines, nil
}

func (t *Tesseract) recognize(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.opts.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(t.opts.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Preprocess prepares a cropped name strip for Tesseract.
//
// The steps are:
//  1. Convert to grayscale
//  2. Binarize at threshold, so text pixels become white
//  3. Invert, giving dark text on a white page
func Preprocess(img image.Image, threshold uint8) *image.RGBA {
	gray := effect.Grayscale(img)
	binary := segment.Threshold(gray, threshold)
	return effect.Invert(binary)
}

// SplitLines splits Tesseract output into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Info describes the OCR backend.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Backend        string `json:"backend"`
	Language       string `json:"language"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
}

// Info reports whether Tesseract is usable and which version is linked.
func (t *Tesseract) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Info{
		Available:      version != "",
		Version:        version,
		Backend:        "gosseract",
		Language:       t.opts.Language,
		TessdataPrefix: t.opts.TessdataPrefix,
	}
}
