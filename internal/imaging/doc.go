// Package imaging loads images from disk and turns them into the 8-bit
// grayscale frames the feature detectors work on.
//
// Decoding and resizing use github.com/disintegration/imaging, grayscale
// conversion and blur use github.com/anthonynsimon/bild, and the perceptual
// lightness method uses github.com/lucasb-eyer/go-colorful.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Frames returned by ToGray and ImageCache.LoadGray always have their bounds
// at the origin, so keypoint coordinates index the frame directly. When a
// frame is scaled, coordinates are in the scaled frame; use Region.Scaled to
// map a region given in original pixels.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Frames returned from the cache are
// shared and must not be modified.
//
// # Memory Management
//
// Cached images and frames stay in memory until Evict() or Clear().
package imaging
