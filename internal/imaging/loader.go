package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp" // Register BMP format decoder
)

// SupportedExtensions lists the capture file extensions the loader can decode.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}

// IsSupported reports whether path has a capture extension the loader can decode.
// The check is case-insensitive.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

type cached struct {
	img    image.Image
	format string
}

// ImageCache provides thread-safe caching of decoded captures to avoid
// redundant disk reads.
//
// The cache stores decoded images keyed by their file path. Once a capture
// is loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// The folder watcher evicts each capture after scanning it, since a new screenshot
// may reuse the same file name.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/capture.png")
//	if err != nil {
//	    return err
//	}
//	defer cache.Evict("/path/to/capture.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cached
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cached),
	}
}

// Load retrieves a capture from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: File path to the capture. Supported formats are PNG, JPEG, GIF
//     and BMP; the format is detected from the file contents.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cached, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cached{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cached{}, fmt.Errorf("failed to decode image: %w", err)
	}

	entry := cached{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Len returns the number of cached captures.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cached)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// CaptureInfo describes a loaded capture.
type CaptureInfo struct {
	// Width is the capture width in pixels.
	Width int `json:"width"`

	// Height is the capture height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg", "gif" or "bmp".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Info loads a capture into the cache (if not already cached) and describes it.
func (c *ImageCache) Info(path string) (*CaptureInfo, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := entry.img.Bounds()
	return &CaptureInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		FileSizeBytes: stat.Size(),
	}, nil
}
