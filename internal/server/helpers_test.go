package server

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	disimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
	"github.com/ironsheep/photoedit-mcp/internal/imaging"
	"github.com/ironsheep/photoedit-mcp/internal/project"
	"github.com/ironsheep/photoedit-mcp/internal/session"
	"github.com/ironsheep/photoedit-mcp/internal/snapshot"
	"github.com/ironsheep/photoedit-mcp/internal/upload"
)

// testEnv is a server wired to real components, a temp directory and a
// fake image host.
type testEnv struct {
	srv     *Server
	dir     string
	photo   string
	uploads *atomic.Int32
	hostOK  *atomic.Bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	photo := filepath.Join(dir, "photo.png")
	if err := disimaging.Save(disimaging.New(80, 60, color.NRGBA{R: 10, G: 120, B: 200, A: 255}), photo); err != nil {
		t.Fatalf("failed to write test photo: %v", err)
	}

	var uploads atomic.Int32
	var hostOK atomic.Bool
	hostOK.Store(true)
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := uploads.Add(1)
		if !hostOK.Load() {
			w.Write([]byte(`{"success":false,"error":{"message":"rejected"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"url": "https://img.example/" + string(rune('a'+n-1)) + ".jpg"},
		})
	}))
	t.Cleanup(host.Close)

	db, err := project.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := auth.NewSession()
	store := project.NewSQLiteStore(db, a)
	sess := session.New(session.Deps{
		Auth:     a,
		Renderer: imaging.NewRenderer(nil),
		Versions: snapshot.NewExporter(snapshot.DiskStore{}, filepath.Join(dir, "versions"),
			snapshot.WithExportDir(filepath.Join(dir, "exports"))),
		Uploader: upload.NewClient(host.URL, "test-key"),
		Projects: store,
	})

	return &testEnv{
		srv:     New(sess, a, store, WithVersion("1.2.3")),
		dir:     dir,
		photo:   photo,
		uploads: &uploads,
		hostOK:  &hostOK,
	}
}

// call invokes a tool and returns the raw response.
func (e *testEnv) call(t *testing.T, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	resp := e.srv.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// mustCall invokes a tool, fails on error and decodes the text content into
// out.
func (e *testEnv) mustCall(t *testing.T, name string, args interface{}, out interface{}) {
	t.Helper()
	resp := e.call(t, name, args)
	if resp.Error != nil {
		t.Fatalf("%s failed: %+v", name, resp.Error)
	}
	if out == nil {
		return
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode %s result: %v", name, err)
	}
}

// errorKind returns the kind reported in an error response.
func errorKind(t *testing.T, resp *MCPResponse) (int, string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	data, ok := resp.Error.Data.(map[string]string)
	if !ok {
		return resp.Error.Code, ""
	}
	return resp.Error.Code, data["kind"]
}
