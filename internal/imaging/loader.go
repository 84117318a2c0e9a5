package imaging

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded images and the grayscale frames derived from
// them so that repeated detection on the same file does no disk I/O.
//
// Decoded images are keyed by path. Frames are keyed by path and the
// Preprocess options that produced them, so one file may have several
// frames (for example at different scales).
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Entries stay in memory until Evict() or Clear(). A sequence run over many
// frames should evict each path once it has left the two-frame window.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	frames map[frameKey]*image.Gray
}

type frameKey struct {
	path string
	prep Preprocess
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
		frames: make(map[frameKey]*image.Gray),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Any format registered with the image package or handled by
// github.com/disintegration/imaging (PNG, JPEG, GIF, TIFF, BMP) is
// accepted. JPEG EXIF orientation is applied so that keypoint coordinates
// match what a viewer shows.
//
// The cache key is the exact path string; relative and absolute spellings
// of the same file are separate entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadGray returns the grayscale frame for path under the given
// preprocessing, computing and caching it on first use.
func (c *ImageCache) LoadGray(path string, p Preprocess) (*image.Gray, error) {
	key := frameKey{path: path, prep: p}
	c.mu.RLock()
	if g, ok := c.frames[key]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	g, err := ToGray(img, p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[key] = g
	c.mu.Unlock()

	return g, nil
}

// Clear removes every image and frame from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.frames = make(map[frameKey]*image.Gray)
	c.mu.Unlock()
}

// Evict removes the image at path and all frames derived from it. Unknown
// paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for k := range c.frames {
		if k.path == path {
			delete(c.frames, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of decoded images held.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo describes an image file.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format comes from the file extension: "png", "jpeg", "gif", "tiff",
	// "bmp" or "unknown".
	Format string `json:"format"`

	// ColorModel is "gray", "gray16", "rgba", "rgba64", "ycbcr", "paletted"
	// or "other". Gray images skip the grayscale conversion's color math.
	ColorModel string `json:"color_model"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}
	switch img.(type) {
	case *image.Gray:
		info.ColorModel = "gray"
	case *image.Gray16:
		info.ColorModel = "gray16"
	case *image.RGBA, *image.NRGBA:
		info.ColorModel = "rgba"
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.ColorModel = "rgba64"
		info.HasAlpha = true
	case *image.YCbCr:
		info.ColorModel = "ycbcr"
	case *image.Paletted:
		info.ColorModel = "paletted"
		info.HasAlpha = true
	default:
		info.ColorModel = "other"
	}
	return info, nil
}
