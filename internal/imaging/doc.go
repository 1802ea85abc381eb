// Package imaging loads captures and draws annotated copies of them.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based, with (0,0) at the
// top-left corner. Regions are image.Rectangle values: Min is inclusive and
// Max is exclusive.
//
// # Loading
//
// ImageCache decodes PNG, JPEG, GIF and BMP captures and keeps them keyed by
// path. It is safe for concurrent use.
//
// # Cropping
//
// CropRegion clamps a region to the image, crops it and optionally resizes it
// with a Lanczos filter. The OCR adapter uses it to enlarge name strips before
// recognition.
//
// # Annotation
//
// Annotate draws each scanned region's outline with its label above it, using
// the x/image basic font on a darkened box. Resolved regions get distinct
// colours from Palette and unresolved ones are drawn in UnresolvedColor.
// SaveAnnotated writes the result in the format matching the file extension.
package imaging
