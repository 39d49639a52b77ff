// Package imaging renders edit previews and committed versions of a photo.
//
// It is the graphics capability of the edit session: a Renderer loads the
// base version, applies a Transform (geometry, color matrix, blur, text
// overlay) and returns a Surface that can be snapshotted and encoded.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X increases rightward, Y increases downward
//   - For rectangles, Min is inclusive and Max is exclusive
//
// Geometry is applied in the order crop, horizontal flip, vertical flip,
// before any color processing.
//
// # Color Processing
//
// Color matrices operate on straight (non-premultiplied) channels
// normalized to [0,1]. The pixel pass runs in parallel through bild's
// adjust package. Blur is a Gaussian with the tool's radius in pixels.
//
// # Thread Safety
//
// ImageCache and Renderer are safe for concurrent use. A Surface is owned by
// the caller that rendered it.
//
// # Performance Considerations
//
// Decoded versions are cached by path. Versions are immutable, so cached
// entries never go stale; call Evict or Clear to bound memory in long
// sessions.
package imaging
