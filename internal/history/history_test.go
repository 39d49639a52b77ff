package history

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

func version(uri string) ImageVersion {
	return ImageVersion{URI: uri, Width: 1000, Height: 1000, MIME: "image/jpeg"}
}

func uris(h *History) []string {
	out := make([]string, 0, h.Len())
	for _, v := range h.Versions() {
		out = append(out, v.URI)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew(t *testing.T) {
	h := New(version("v0"))

	if h.Len() != 1 || h.Cursor() != 0 {
		t.Fatalf("new history: len=%d cursor=%d, want 1/0", h.Len(), h.Cursor())
	}
	if h.Current().URI != "v0" {
		t.Errorf("Current: got %s, want v0", h.Current().URI)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("new history should not allow undo or redo")
	}
}

func TestUndo_AtStartIsNoop(t *testing.T) {
	h := New(version("v0"))
	h.Commit(version("v1"))
	h.Undo()

	before := uris(h)
	got := h.Undo()

	if h.Cursor() != 0 {
		t.Errorf("cursor: got %d, want 0", h.Cursor())
	}
	if got.URI != "v0" {
		t.Errorf("Undo returned %s, want v0", got.URI)
	}
	if !equalStrings(before, uris(h)) {
		t.Errorf("versions changed: %v -> %v", before, uris(h))
	}
}

func TestRedo_AtTipIsNoop(t *testing.T) {
	h := New(version("v0"))
	h.Commit(version("v1"))

	got := h.Redo()

	if h.Cursor() != 1 {
		t.Errorf("cursor: got %d, want 1", h.Cursor())
	}
	if got.URI != "v1" {
		t.Errorf("Redo returned %s, want v1", got.URI)
	}
}

func TestCommit_TruncatesRedoBranch(t *testing.T) {
	h := New(version("A"))
	h.Commit(version("B"))
	h.Commit(version("C"))

	if got := h.Undo(); got.URI != "B" {
		t.Fatalf("Undo: got %s, want B", got.URI)
	}
	if h.Cursor() != 1 {
		t.Fatalf("cursor after undo: got %d, want 1", h.Cursor())
	}

	h.Commit(version("D"))

	if want := []string{"A", "B", "D"}; !equalStrings(uris(h), want) {
		t.Errorf("versions: got %v, want %v", uris(h), want)
	}
	if h.Cursor() != 2 {
		t.Errorf("cursor: got %d, want 2", h.Cursor())
	}
}

func TestCommit_TruncationDoesNotAliasOldSlice(t *testing.T) {
	h := New(version("A"))
	h.Commit(version("B"))
	h.Commit(version("C"))
	snapshot := h.Versions()

	h.Undo()
	h.Undo()
	h.Commit(version("X"))

	if snapshot[1].URI != "B" || snapshot[2].URI != "C" {
		t.Errorf("earlier Versions() copy was mutated: %v", snapshot)
	}
}

func TestCommit_AllowsDuplicates(t *testing.T) {
	h := New(version("A"))
	h.Commit(version("A"))

	if h.Len() != 2 {
		t.Errorf("len: got %d, want 2", h.Len())
	}
}

func TestInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		h := New(version("seed"))
		for step := 0; step < 100; step++ {
			switch rng.Intn(3) {
			case 0:
				h.Commit(version("v"))
			case 1:
				h.Undo()
			case 2:
				h.Redo()
			}
			if h.Len() < 1 {
				t.Fatalf("run %d step %d: len %d < 1", run, step, h.Len())
			}
			if h.Cursor() < 0 || h.Cursor() >= h.Len() {
				t.Fatalf("run %d step %d: cursor %d outside [0,%d)", run, step, h.Cursor(), h.Len())
			}
		}
	}
}

func TestRestore(t *testing.T) {
	vs := []ImageVersion{version("a"), version("b"), version("c")}

	h, err := Restore(vs, 1)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if h.Current().URI != "b" {
		t.Errorf("Current: got %s, want b", h.Current().URI)
	}

	vs[1].URI = "mutated"
	if h.Current().URI != "b" {
		t.Error("Restore should copy the input slice")
	}
}

func TestRestore_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		versions []ImageVersion
		cursor   int
	}{
		{"empty", nil, 0},
		{"negative cursor", []ImageVersion{version("a")}, -1},
		{"cursor past end", []ImageVersion{version("a")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.versions, tt.cursor)
			if !errors.Is(err, editerr.ErrValidation) {
				t.Errorf("want ErrValidation, got %v", err)
			}
		})
	}
}
