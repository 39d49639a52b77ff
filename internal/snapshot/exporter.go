// Package snapshot turns rendered surfaces into durable image versions.
//
// The Exporter is the only producer of history.ImageVersion values. Every
// operation is all-or-nothing: on failure no file is left behind and no
// version is returned.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/history"
)

// Defaults for the exporter.
const (
	DefaultLogicalWidth  = 1000
	DefaultLogicalHeight = 1000
	MIMEJPEG             = "image/jpeg"
)

// Surface is a rendered image waiting to be captured.
type Surface interface {
	Mounted() bool
	Snapshot() (image.Image, error)
	Encode(format string) ([]byte, error)
}

// Exporter captures surfaces and writes them to the app-private directory.
type Exporter struct {
	store     FileStore
	dir       string
	exportDir string
	width     int
	height    int
	now       func() time.Time
	newName   func() string
	logger    *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogicalSize sets the width and height recorded on every version.
func WithLogicalSize(w, h int) Option {
	return func(e *Exporter) { e.width, e.height = w, h }
}

// WithExportDir sets the directory used by ExportCopy.
func WithExportDir(dir string) Option {
	return func(e *Exporter) { e.exportDir = dir }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger sets the exporter's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// NewExporter creates an exporter writing versions into dir.
func NewExporter(store FileStore, dir string, opts ...Option) *Exporter {
	e := &Exporter{
		store:     store,
		dir:       dir,
		exportDir: filepath.Join(dir, "exports"),
		width:     DefaultLogicalWidth,
		height:    DefaultLogicalHeight,
		now:       time.Now,
		newName:   func() string { return uuid.Must(uuid.NewV7()).String() },
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Capture checks that the surface is mounted and returns its pixels.
func (e *Exporter) Capture(s Surface) (image.Image, error) {
	if s == nil || !s.Mounted() {
		return nil, editerr.Capture("snapshot.capture", errors.New("render surface not mounted"))
	}
	img, err := s.Snapshot()
	if err != nil {
		return nil, editerr.Capture("snapshot.capture", err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, editerr.Capture("snapshot.capture", errors.New("empty snapshot"))
	}
	return img, nil
}

// Encode serialises a captured surface as JPEG.
func (e *Exporter) Encode(s Surface) ([]byte, error) {
	data, err := s.Encode("jpeg")
	if err != nil {
		return nil, editerr.Capture("snapshot.encode", err)
	}
	if len(data) == 0 {
		return nil, editerr.Capture("snapshot.encode", errors.New("encoder produced no bytes"))
	}
	return data, nil
}

// PersistLocally writes data under a new time-ordered name and returns the
// resulting version.
func (e *Exporter) PersistLocally(ctx context.Context, data []byte) (history.ImageVersion, error) {
	if err := ctx.Err(); err != nil {
		return history.ImageVersion{}, err
	}
	path := filepath.Join(e.dir, e.newName()+".jpg")
	if err := e.store.Write(path, data, Binary); err != nil {
		return history.ImageVersion{}, editerr.IO("snapshot.write", err)
	}
	return e.versionAt(path)
}

// Export runs capture, encode and persist as one step.
func (e *Exporter) Export(ctx context.Context, s Surface) (history.ImageVersion, error) {
	if _, err := e.Capture(s); err != nil {
		return history.ImageVersion{}, err
	}
	data, err := e.Encode(s)
	if err != nil {
		return history.ImageVersion{}, err
	}
	v, err := e.PersistLocally(ctx, data)
	if err != nil {
		return history.ImageVersion{}, err
	}
	e.logger.Debug("exported version", "uri", v.URI, "size_bytes", v.SizeBytes)
	return v, nil
}

// Import copies a picked photo into the app directory and returns it as the
// seed version. Files that do not decode as JPEG, PNG or GIF are rejected
// with a validation error and nothing is written.
func (e *Exporter) Import(ctx context.Context, src string) (history.ImageVersion, error) {
	if err := ctx.Err(); err != nil {
		return history.ImageVersion{}, err
	}
	src = strings.TrimPrefix(src, history.FileScheme)
	data, err := e.store.Read(src, Binary)
	if err != nil {
		return history.ImageVersion{}, editerr.IO("snapshot.import", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return history.ImageVersion{}, editerr.Validation("snapshot.import",
			fmt.Errorf("%s is not a supported image: %w", filepath.Base(src), err))
	}
	ext := extFor(format)
	path := filepath.Join(e.dir, e.newName()+ext)
	if err := e.store.Write(path, data, Binary); err != nil {
		return history.ImageVersion{}, editerr.IO("snapshot.import", err)
	}
	v, err := e.versionAt(path)
	if err != nil {
		return history.ImageVersion{}, err
	}
	v.MIME = mimeFor(ext)
	return v, nil
}

// ExportCopy copies a version to the export directory as
// "edited_<millis>.jpg" and returns the destination path.
func (e *Exporter) ExportCopy(ctx context.Context, v history.ImageVersion) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst := filepath.Join(e.exportDir, fmt.Sprintf("edited_%d.jpg", e.now().UnixMilli()))
	if err := e.store.Copy(v.Path(), dst); err != nil {
		return "", editerr.IO("snapshot.export", err)
	}
	return dst, nil
}

// ReadBase64 returns the bytes of a version as base64 text, as expected by
// the image host.
func (e *Exporter) ReadBase64(v history.ImageVersion) ([]byte, error) {
	data, err := e.store.Read(v.Path(), Base64)
	if err != nil {
		return nil, editerr.IO("snapshot.read", err)
	}
	return data, nil
}

func (e *Exporter) versionAt(path string) (history.ImageVersion, error) {
	fi, err := e.store.Stat(path)
	if err != nil {
		// Do not leave an unreferenced file behind.
		_ = e.store.Remove(path)
		return history.ImageVersion{}, editerr.IO("snapshot.stat", err)
	}
	return history.ImageVersion{
		URI:       history.FileURI(path),
		Width:     e.width,
		Height:    e.height,
		MIME:      MIMEJPEG,
		SizeBytes: fi.Size,
		CreatedAt: fi.ModTime,
	}, nil
}

// extFor maps a format name reported by image.DecodeConfig to a file
// extension.
func extFor(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func mimeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return MIMEJPEG
	}
}
