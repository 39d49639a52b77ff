package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/photoedit-mcp/internal/colormatrix"
	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/history"
)

// ErrSurfaceReleased is returned by a Surface after Release.
var ErrSurfaceReleased = errors.New("surface released")

// Transform is everything a tool asks the renderer to apply to a base
// version.
type Transform struct {
	Geometry Geometry
	Color    colormatrix.Matrix
	Blur     float64
	Overlay  *TextOverlay
}

// IdentityTransform leaves the base image unchanged.
func IdentityTransform() Transform {
	return Transform{Color: colormatrix.Identity()}
}

// Renderer loads versions and renders transforms onto them.
type Renderer struct {
	cache       *ImageCache
	maxW, maxH  int
	jpegQuality int
	logger      *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithCanvas limits rendered surfaces to w×h pixels; larger results are
// scaled down to fit.
func WithCanvas(w, h int) RendererOption {
	return func(r *Renderer) { r.maxW, r.maxH = w, h }
}

// WithJPEGQuality sets the quality used by Surface.Encode for JPEG.
func WithJPEGQuality(q int) RendererOption {
	return func(r *Renderer) { r.jpegQuality = q }
}

// WithLogger sets the renderer's logger.
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer creates a renderer backed by cache. A nil cache gets a fresh
// one of DefaultCacheSize.
func NewRenderer(cache *ImageCache, opts ...RendererOption) *Renderer {
	if cache == nil {
		cache = NewImageCache(0)
	}
	r := &Renderer{
		cache:       cache,
		jpegQuality: 80,
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Bounds returns the pixel bounds of a version. A version that cannot be
// read is an io error.
func (r *Renderer) Bounds(ctx context.Context, v history.ImageVersion) (image.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return image.Rectangle{}, err
	}
	img, err := r.cache.Load(v.Path())
	if err != nil {
		return image.Rectangle{}, editerr.IO("imaging.bounds", err)
	}
	return img.Bounds(), nil
}

// Render applies t to the base version and returns a mounted surface.
//
// Steps run in a fixed order: geometry, color matrix, blur, text overlay,
// then fitting to the canvas. A base version that cannot be read is an io
// error; a crop or overlay that does not fit the image is a validation
// error.
func (r *Renderer) Render(ctx context.Context, base history.ImageVersion, t Transform) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := r.cache.Load(base.Path())
	if err != nil {
		return nil, editerr.IO("imaging.render", err)
	}

	out, err := ApplyGeometry(img, t.Geometry)
	if err != nil {
		return nil, editerr.Validation("imaging.render", err)
	}
	if !t.Color.IsIdentity(0) {
		out = ApplyMatrix(out, t.Color)
	}
	out = Blur(out, t.Blur)
	if t.Overlay != nil {
		if out, err = DrawText(out, *t.Overlay); err != nil {
			return nil, editerr.Validation("imaging.render", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out = FitWithin(out, r.maxW, r.maxH)

	b := out.Bounds()
	st := r.cache.Stats()
	r.logger.Debug("rendered surface", "base", base.URI, "width", b.Dx(), "height", b.Dy(),
		"cache_hits", st.Hits, "cache_misses", st.Misses)
	return &Surface{img: out, jpegQuality: r.jpegQuality}, nil
}

// Surface holds rendered pixels until they are captured.
type Surface struct {
	img         image.Image
	jpegQuality int
}

// NewSurface wraps an image as a mounted surface.
func NewSurface(img image.Image) *Surface {
	return &Surface{img: img, jpegQuality: 80}
}

// Mounted reports whether the surface still holds pixels.
func (s *Surface) Mounted() bool { return s != nil && s.img != nil }

// Snapshot returns the rendered pixels.
func (s *Surface) Snapshot() (image.Image, error) {
	if !s.Mounted() {
		return nil, ErrSurfaceReleased
	}
	return s.img, nil
}

// Encode serialises the surface in the named format ("jpeg", "jpg",
// "png", "gif", "bmp", "tiff").
func (s *Surface) Encode(format string) ([]byte, error) {
	img, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return nil, fmt.Errorf("unsupported format %q: %w", format, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(s.jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode surface: %w", err)
	}
	return buf.Bytes(), nil
}

// Release drops the pixels. Later Snapshot and Encode calls fail.
func (s *Surface) Release() {
	if s != nil {
		s.img = nil
	}
}
