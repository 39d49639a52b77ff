package tool

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/history"
	"github.com/ironsheep/photoedit-mcp/internal/imaging"
	"github.com/ironsheep/photoedit-mcp/internal/snapshot"
)

// Pipeline errors. They are wrapped as validation errors.
var (
	ErrToolActive   = errors.New("a tool is already active")
	ErrNoActiveTool = errors.New("no tool is active")
	ErrCommitting   = errors.New("a commit is in progress")
)

// Phase is the pipeline's position in its state machine.
type Phase int

// Pipeline phases.
const (
	Idle Phase = iota
	Active
	Committing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// Renderer produces surfaces for a version and a transform.
type Renderer interface {
	Bounds(ctx context.Context, v history.ImageVersion) (image.Rectangle, error)
	Render(ctx context.Context, base history.ImageVersion, t imaging.Transform) (*imaging.Surface, error)
}

// Exporter turns a rendered surface into a new version.
type Exporter interface {
	Export(ctx context.Context, s snapshot.Surface) (history.ImageVersion, error)
}

// Pipeline threads one history through a sequence of editing stages.
//
// It is the only writer of the history it is given: Confirm commits to it,
// and Undo and Redo move its cursor while no tool is active.
type Pipeline struct {
	mu       sync.Mutex
	hist     *history.History
	renderer Renderer
	exporter Exporter
	logger   *slog.Logger

	phase Phase
	state ToolState
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates an idle pipeline over h.
func NewPipeline(h *history.History, r Renderer, e Exporter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{hist: h, renderer: r, exporter: e, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Phase returns the current phase.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// State returns the active ToolState, or nil when idle.
func (p *Pipeline) State() ToolState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the version at the history cursor.
func (p *Pipeline) Current() history.ImageVersion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hist.Current()
}

// Snapshot returns a copy of the history and its cursor.
func (p *Pipeline) Snapshot() ([]history.ImageVersion, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hist.Versions(), p.hist.Cursor()
}

func (p *Pipeline) phaseErr(op string, want Phase) error {
	if p.phase == want {
		return nil
	}
	switch p.phase {
	case Committing:
		return editerr.Validation(op, ErrCommitting)
	case Active:
		return editerr.Validation(op, ErrToolActive)
	default:
		return editerr.Validation(op, ErrNoActiveTool)
	}
}

// Begin starts a stage of the given kind with its default state.
func (p *Pipeline) Begin(ctx context.Context, kind Kind) (ToolState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.phaseErr("tool.begin", Idle); err != nil {
		return nil, err
	}

	var bounds image.Rectangle
	if kind == KindCrop || kind == KindText {
		b, err := p.renderer.Bounds(ctx, p.hist.Current())
		if err != nil {
			return nil, classify("tool.begin", err, editerr.IO)
		}
		bounds = b
	}
	s, err := DefaultState(kind, bounds)
	if err != nil {
		return nil, err
	}
	p.phase, p.state = Active, s
	p.logger.Debug("tool started", "tool", kind)
	return s, nil
}

// Adjust replaces the active ToolState with fn's result. When fn fails the
// state is left untouched.
func (p *Pipeline) Adjust(fn func(ToolState) (ToolState, error)) (ToolState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.phaseErr("tool.adjust", Active); err != nil {
		return nil, err
	}
	next, err := fn(p.state)
	if err != nil {
		return p.state, err
	}
	if next == nil || next.Kind() != p.state.Kind() {
		return p.state, editerr.Validationf("tool.adjust", "adjustment changed the tool kind")
	}
	p.state = next
	return next, nil
}

// Confirm renders the active stage onto the current version, exports the
// result and commits it. On success the pipeline is idle again.
//
// On failure the pipeline returns to Active with the same ToolState and the
// history is unchanged.
func (p *Pipeline) Confirm(ctx context.Context) (history.ImageVersion, error) {
	p.mu.Lock()
	if err := p.phaseErr("tool.confirm", Active); err != nil {
		p.mu.Unlock()
		return history.ImageVersion{}, err
	}
	state, base := p.state, p.hist.Current()
	p.phase = Committing
	p.mu.Unlock()

	v, err := p.produce(ctx, base, state)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.phase = Active
		p.logger.Warn("tool confirm failed", "tool", state.Kind(), "error", err)
		return history.ImageVersion{}, err
	}
	p.hist.Commit(v)
	p.phase, p.state = Idle, nil
	p.logger.Info("tool committed", "tool", state.Kind(), "uri", v.URI, "cursor", p.hist.Cursor())
	return v, nil
}

func (p *Pipeline) produce(ctx context.Context, base history.ImageVersion, s ToolState) (history.ImageVersion, error) {
	t, err := TransformFor(s)
	if err != nil {
		return history.ImageVersion{}, err
	}
	surface, err := p.renderer.Render(ctx, base, t)
	if err != nil {
		return history.ImageVersion{}, classify("tool.render", err, editerr.Capture)
	}
	defer surface.Release()
	return p.exporter.Export(ctx, surface)
}

// classify passes context errors and errors that already carry a kind
// through unchanged, and wraps anything else with wrap.
func classify(op string, err error, wrap func(string, error) error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if editerr.KindOf(err) != nil {
		return err
	}
	return wrap(op, err)
}

// Cancel discards the active stage. It has no other effect.
func (p *Pipeline) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.phaseErr("tool.cancel", Active); err != nil {
		return err
	}
	p.logger.Debug("tool cancelled", "tool", p.state.Kind())
	p.phase, p.state = Idle, nil
	return nil
}

// Undo moves the history cursor back. It is refused while a tool is
// active.
func (p *Pipeline) Undo() (history.ImageVersion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.phaseErr("history.undo", Idle); err != nil {
		return history.ImageVersion{}, err
	}
	return p.hist.Undo(), nil
}

// Redo moves the history cursor forward. It is refused while a tool is
// active.
func (p *Pipeline) Redo() (history.ImageVersion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.phaseErr("history.redo", Idle); err != nil {
		return history.ImageVersion{}, err
	}
	return p.hist.Redo(), nil
}
