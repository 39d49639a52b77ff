// Package history implements the linear edit history of a photo session.
//
// A History is an ordered list of immutable ImageVersion records and a
// cursor pointing at the version currently shown. Committing while the
// cursor is behind the tip discards the redo branch. The list is never
// empty: it is seeded with the imported photo.
package history

import (
	"errors"
	"strings"
	"time"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// ImageVersion describes one rendered state of the photo.
//
// Values are created by the snapshot exporter and never modified afterwards.
type ImageVersion struct {
	URI       string    `json:"uri"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	MIME      string    `json:"mime"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// FileScheme prefixes the URI of locally stored versions.
const FileScheme = "file://"

// Path returns the local file path behind a file:// URI. Other URIs are
// returned unchanged.
func (v ImageVersion) Path() string { return strings.TrimPrefix(v.URI, FileScheme) }

// FileURI builds the URI of a locally stored version.
func FileURI(path string) string { return FileScheme + path }

// History is an ordered version list with a cursor.
//
// History is not safe for concurrent use; the owning session serialises
// access.
type History struct {
	versions []ImageVersion
	cursor   int
}

// New creates a history seeded with the initial photo.
func New(seed ImageVersion) *History {
	return &History{versions: []ImageVersion{seed}}
}

// Restore rebuilds a history from a version list and cursor, as carried by
// a stage payload.
func Restore(versions []ImageVersion, cursor int) (*History, error) {
	if len(versions) == 0 {
		return nil, editerr.Validation("history.restore", errors.New("empty version list"))
	}
	if cursor < 0 || cursor >= len(versions) {
		return nil, editerr.Validationf("history.restore", "cursor %d outside [0,%d)", cursor, len(versions))
	}
	vs := make([]ImageVersion, len(versions))
	copy(vs, versions)
	return &History{versions: vs, cursor: cursor}, nil
}

// Commit drops every version after the cursor, appends v and moves the
// cursor to it. Duplicates are kept.
func (h *History) Commit(v ImageVersion) {
	h.versions = append(h.versions[:h.cursor+1:h.cursor+1], v)
	h.cursor = len(h.versions) - 1
}

// Undo steps the cursor back one version. At the first version it does
// nothing.
func (h *History) Undo() ImageVersion {
	if h.cursor > 0 {
		h.cursor--
	}
	return h.versions[h.cursor]
}

// Redo steps the cursor forward one version. At the tip it does nothing.
func (h *History) Redo() ImageVersion {
	if h.cursor < len(h.versions)-1 {
		h.cursor++
	}
	return h.versions[h.cursor]
}

// Current returns the version at the cursor.
func (h *History) Current() ImageVersion { return h.versions[h.cursor] }

// Cursor returns the cursor index.
func (h *History) Cursor() int { return h.cursor }

// Len returns the number of versions.
func (h *History) Len() int { return len(h.versions) }

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.versions)-1 }

// Versions returns a copy of the version list.
func (h *History) Versions() []ImageVersion {
	out := make([]ImageVersion, len(h.versions))
	copy(out, h.versions)
	return out
}
