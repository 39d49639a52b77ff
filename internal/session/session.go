// Package session owns one photo edit session.
//
// A Session holds the edit history and the tool pipeline for the photo that
// is open, carries the optional project id between saves, and runs the
// final save through the image host and the project gateway. One Session
// serves one interaction stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/history"
	"github.com/ironsheep/photoedit-mcp/internal/metrics"
	"github.com/ironsheep/photoedit-mcp/internal/project"
	"github.com/ironsheep/photoedit-mcp/internal/snapshot"
	"github.com/ironsheep/photoedit-mcp/internal/tool"
	"github.com/ironsheep/photoedit-mcp/internal/upload"
)

var (
	// ErrBusy is returned when a commit, export or save is requested while
	// another one is running. Requests are not queued.
	ErrBusy = errors.New("an export or save is already in progress")

	// ErrNoPhoto is returned by operations that need an open photo.
	ErrNoPhoto = errors.New("no photo is open")
)

// Payload is the state handed from one editing stage to the next.
type Payload struct {
	CurrentImageURI string                 `json:"current_image_uri"`
	Versions        []history.ImageVersion `json:"versions"`
	Cursor          int                    `json:"cursor"`
	ProjectID       project.ID             `json:"project_id"`
}

// SaveResult reports a finished save.
type SaveResult struct {
	ProjectID string `json:"project_id"`
	ImageURL  string `json:"image_url"`
	Created   bool   `json:"created"`
}

// Importer copies a picked photo into local storage. *snapshot.Exporter
// implements it together with VersionStore.
type Importer interface {
	Import(ctx context.Context, src string) (history.ImageVersion, error)
}

// VersionStore reads and copies committed versions.
type VersionStore interface {
	tool.Exporter
	Importer
	ExportCopy(ctx context.Context, v history.ImageVersion) (string, error)
	ReadBase64(v history.ImageVersion) ([]byte, error)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Auth     *auth.Session
	Renderer tool.Renderer
	Versions VersionStore
	Uploader upload.Uploader
	Projects project.Gateway
	Logger   *slog.Logger
}

// Session is one edit session.
type Session struct {
	deps   Deps
	logger *slog.Logger
	busy   atomic.Bool

	mu        sync.Mutex
	pipeline  *tool.Pipeline
	projectID project.ID
}

var _ VersionStore = (*snapshot.Exporter)(nil)

// New creates a session with no photo open.
func New(deps Deps) *Session {
	l := deps.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Session{deps: deps, logger: l}
}

// acquire claims the in-flight slot for op.
func (s *Session) acquire(op string) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("request rejected while busy", "op", op)
		return editerr.Validation(op, ErrBusy)
	}
	return nil
}

func (s *Session) release() { s.busy.Store(false) }

// Busy reports whether a commit, export or save is running.
func (s *Session) Busy() bool { return s.busy.Load() }

func (s *Session) current(op string) (*tool.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return nil, editerr.Validation(op, ErrNoPhoto)
	}
	return s.pipeline, nil
}

func (s *Session) install(h *history.History, id project.ID) {
	p := tool.NewPipeline(h, s.deps.Renderer, s.deps.Versions, tool.WithLogger(s.logger))
	s.mu.Lock()
	s.pipeline, s.projectID = p, id
	s.mu.Unlock()
}

func (s *Session) observe(op string, err error) error {
	if err != nil {
		metrics.ErrorSeen(editerr.KindName(err))
		s.logger.Debug("operation failed", "op", op, "kind", editerr.KindName(err), "error", err)
	}
	return err
}

// Open imports a photo and starts a new history seeded with it. The session
// is not linked to any saved project afterwards.
func (s *Session) Open(ctx context.Context, src string) (Payload, error) {
	if err := s.acquire("session.open"); err != nil {
		return Payload{}, err
	}
	defer s.release()

	seed, err := s.deps.Versions.Import(ctx, src)
	if err != nil {
		return Payload{}, s.observe("session.open", err)
	}
	s.install(history.New(seed), project.NoID)
	s.logger.Info("photo opened", "uri", seed.URI)
	return s.Payload()
}

// Resume rebuilds the session from a payload produced by an earlier stage.
func (s *Session) Resume(p Payload) error {
	if err := s.acquire("session.resume"); err != nil {
		return err
	}
	defer s.release()

	h, err := history.Restore(p.Versions, p.Cursor)
	if err != nil {
		return s.observe("session.resume", err)
	}
	if p.CurrentImageURI != "" && p.CurrentImageURI != h.Current().URI {
		return s.observe("session.resume", editerr.Validationf("session.resume",
			"current image %q does not match version at cursor %d", p.CurrentImageURI, p.Cursor))
	}
	s.install(h, p.ProjectID)
	return nil
}

// Payload returns the state to hand to the next stage.
func (s *Session) Payload() (Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipeline == nil {
		return Payload{}, editerr.Validation("session.payload", ErrNoPhoto)
	}
	vs, cursor := s.pipeline.Snapshot()
	return Payload{
		CurrentImageURI: vs[cursor].URI,
		Versions:        vs,
		Cursor:          cursor,
		ProjectID:       s.projectID,
	}, nil
}

// ProjectID returns the saved project the session is linked to.
func (s *Session) ProjectID() project.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// ToolState returns the active tool state and pipeline phase.
func (s *Session) ToolState() (tool.ToolState, tool.Phase, error) {
	p, err := s.current("session.tool_state")
	if err != nil {
		return nil, tool.Idle, err
	}
	return p.State(), p.Phase(), nil
}

// Begin starts an editing stage.
func (s *Session) Begin(ctx context.Context, kind tool.Kind) (tool.ToolState, error) {
	p, err := s.current("tool.begin")
	if err != nil {
		return nil, err
	}
	st, err := p.Begin(ctx, kind)
	return st, s.observe("tool.begin", err)
}

// Adjust applies an action to the active stage.
func (s *Session) Adjust(a tool.Action) (tool.ToolState, error) {
	p, err := s.current("tool.adjust")
	if err != nil {
		return nil, err
	}
	st, err := p.Adjust(a.Apply)
	return st, s.observe("tool.adjust", err)
}

// Confirm commits the active stage and returns the updated payload.
func (s *Session) Confirm(ctx context.Context) (Payload, error) {
	p, err := s.current("tool.confirm")
	if err != nil {
		return Payload{}, err
	}
	if err := s.acquire("tool.confirm"); err != nil {
		return Payload{}, err
	}
	defer s.release()

	kind := "none"
	if st := p.State(); st != nil {
		kind = string(st.Kind())
	}
	start := time.Now()
	_, err = p.Confirm(ctx)
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ToolCommitted(kind, result, time.Since(start))
	if err != nil {
		return Payload{}, s.observe("tool.confirm", err)
	}
	return s.Payload()
}

// Cancel discards the active stage.
func (s *Session) Cancel() error {
	p, err := s.current("tool.cancel")
	if err != nil {
		return err
	}
	return s.observe("tool.cancel", p.Cancel())
}

// Undo steps back one version. It is refused while a tool is active.
func (s *Session) Undo() (Payload, error) {
	p, err := s.current("history.undo")
	if err != nil {
		return Payload{}, err
	}
	if _, err := p.Undo(); err != nil {
		return Payload{}, s.observe("history.undo", err)
	}
	metrics.HistoryMoved("undo")
	return s.Payload()
}

// Redo steps forward one version. It is refused while a tool is active.
func (s *Session) Redo() (Payload, error) {
	p, err := s.current("history.redo")
	if err != nil {
		return Payload{}, err
	}
	if _, err := p.Redo(); err != nil {
		return Payload{}, s.observe("history.redo", err)
	}
	metrics.HistoryMoved("redo")
	return s.Payload()
}

// Export copies the current version to the export directory and returns
// the written path.
func (s *Session) Export(ctx context.Context) (string, error) {
	p, err := s.current("image.export")
	if err != nil {
		return "", err
	}
	if err := s.acquire("image.export"); err != nil {
		return "", err
	}
	defer s.release()

	dst, err := s.deps.Versions.ExportCopy(ctx, p.Current())
	if err != nil {
		return "", s.observe("image.export", err)
	}
	s.logger.Info("image exported", "path", dst)
	return dst, nil
}

// Save uploads the current version and creates or updates the project
// record. Without a signed-in user nothing is uploaded, and it is refused
// while a tool is active. On any failure the history and the project link
// are unchanged.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	res, err := s.save(ctx)
	switch {
	case errors.Is(err, ErrBusy):
		metrics.SaveFinished(metrics.ResultBusy)
	case err != nil:
		metrics.SaveFinished(metrics.ResultError)
	default:
		metrics.SaveFinished(metrics.ResultOK)
	}
	return res, err
}

func (s *Session) save(ctx context.Context) (SaveResult, error) {
	p, err := s.current("session.save")
	if err != nil {
		return SaveResult{}, err
	}
	user, err := s.deps.Auth.Require("session.save")
	if err != nil {
		return SaveResult{}, s.observe("session.save", err)
	}
	if p.Phase() != tool.Idle {
		return SaveResult{}, s.observe("session.save", editerr.Validation("session.save", tool.ErrToolActive))
	}
	if err := s.acquire("session.save"); err != nil {
		return SaveResult{}, err
	}
	defer s.release()

	v := p.Current()
	data, err := s.deps.Versions.ReadBase64(v)
	if err != nil {
		return SaveResult{}, s.observe("session.save", err)
	}
	up, err := s.deps.Uploader.Upload(ctx, data)
	if err != nil {
		return SaveResult{}, s.observe("session.save", err)
	}
	if !up.Success || up.URL == "" {
		return SaveResult{}, s.observe("session.save",
			editerr.Network("session.save", fmt.Errorf("upload of %s was not accepted", v.URI)))
	}

	prev := s.ProjectID()
	id, err := s.deps.Projects.Save(ctx, user.ID, prev, up.URL)
	if err != nil {
		return SaveResult{}, s.observe("session.save", err)
	}

	s.mu.Lock()
	s.projectID = project.NewID(id)
	s.mu.Unlock()

	s.logger.Info("project saved", "project_id", id, "owner_id", user.ID, "image_url", up.URL)
	return SaveResult{ProjectID: id, ImageURL: up.URL, Created: !prev.IsSet()}, nil
}
