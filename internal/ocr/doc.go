// Package ocr adapts Tesseract to the layout.Recognizer port.
//
// It wraps the Tesseract OCR engine (via gosseract/v2). Each region of a capture
// is cropped, cleaned up and recognized on its own.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for the configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//
// A custom traineddata directory can be set with Options.TessdataPrefix.
//
// # Preprocessing
//
// Reward names are drawn in light text on a dark, textured background, which
// Tesseract reads poorly as-is. Each strip is upscaled with a Lanczos filter
// (imaging.CropRegion), then Preprocess converts it to grayscale, binarizes it
// at a fixed threshold and inverts it using anthonynsimon/bild. Strips with
// almost no dark pixels left (InkRatio below MinInk) are blank and skip
// Tesseract entirely.
//
// # Error Handling
//
// Tesseract initialization and recognition failures are returned wrapped. A
// region with no readable text is not an error: RecognizeRegion returns no
// lines.
package ocr
