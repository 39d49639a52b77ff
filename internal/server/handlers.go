package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/photoedit-mcp/internal/auth"
	"github.com/ironsheep/photoedit-mcp/internal/colormatrix"
	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/session"
	"github.com/ironsheep/photoedit-mcp/internal/tool"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "tool_begin", "project_save").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

var (
	// errBadArguments marks argument decoding failures.
	errBadArguments = errors.New("invalid arguments")

	// errUnknownTool marks a tool name the dispatcher does not know.
	errUnknownTool = fmt.Errorf("%w: unknown tool", errBadArguments)
)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments and validation failures return code -32602; every
// other failure returns -32000. The error kind is reported in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool call failed", "tool", params.Name, "kind", editerr.KindName(err), "error", err)
		data := map[string]string{"kind": editerr.KindName(err), "detail": err.Error()}
		if errors.Is(err, errBadArguments) || errors.Is(err, editerr.ErrValidation) {
			return s.errorResponse(req.ID, -32602, "Invalid params", data)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", data)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Account
	case "auth_login":
		return s.handleAuthLogin(args)
	case "auth_logout":
		s.auth.Logout()
		return s.authStatus(), nil
	case "auth_status":
		return s.authStatus(), nil

	// Session
	case "session_open":
		return s.handleSessionOpen(ctx, args)
	case "session_resume":
		return s.handleSessionResume(args)
	case "session_state":
		return s.handleSessionState()

	// Editing stages
	case "tool_begin":
		return s.handleToolBegin(ctx, args)
	case "tool_adjust":
		return s.handleToolAdjust(args)
	case "tool_confirm":
		return s.sess.Confirm(ctx)
	case "tool_cancel":
		if err := s.sess.Cancel(); err != nil {
			return nil, err
		}
		return s.handleSessionState()

	// History
	case "history_undo":
		return s.sess.Undo()
	case "history_redo":
		return s.sess.Redo()

	// Output
	case "image_export":
		path, err := s.sess.Export(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]string{"path": path}, nil
	case "project_save":
		return s.sess.Save(ctx)

	// Projects
	case "projects_list":
		return s.handleProjectsList(ctx)
	case "project_delete":
		return s.handleProjectDelete(ctx, args)
	case "projects_clear":
		return s.handleProjectsClear(ctx)

	// Catalog
	case "effects_list":
		return catalogInfo(), nil

	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errBadArguments, err)
	}
	return nil
}

// === Account Handlers ===

type authLoginArgs struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type authStatusResult struct {
	SignedIn bool   `json:"signed_in"`
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (s *Server) handleAuthLogin(args json.RawMessage) (interface{}, error) {
	var a authLoginArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.auth.Login(auth.User{ID: a.UserID, Email: a.Email}); err != nil {
		return nil, err
	}
	return s.authStatus(), nil
}

func (s *Server) authStatus() authStatusResult {
	u, ok := s.auth.CurrentUser()
	return authStatusResult{SignedIn: ok, UserID: u.ID, Email: u.Email}
}

// === Session Handlers ===

type sessionOpenArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSessionOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sessionOpenArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, editerr.Validationf("session.open", "path is required")
	}
	return s.sess.Open(ctx, a.Path)
}

type sessionResumeArgs struct {
	Payload session.Payload `json:"payload"`
}

func (s *Server) handleSessionResume(args json.RawMessage) (interface{}, error) {
	var a sessionResumeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.sess.Resume(a.Payload); err != nil {
		return nil, err
	}
	return s.sess.Payload()
}

type sessionStateResult struct {
	Payload session.Payload `json:"payload"`
	Phase   string          `json:"phase"`
	Tool    *toolResult     `json:"tool,omitempty"`
	Busy    bool            `json:"busy"`
}

type toolResult struct {
	Kind  tool.Kind      `json:"kind"`
	State tool.ToolState `json:"state"`
}

func newToolResult(st tool.ToolState) *toolResult {
	if st == nil {
		return nil
	}
	return &toolResult{Kind: st.Kind(), State: st}
}

func (s *Server) handleSessionState() (interface{}, error) {
	p, err := s.sess.Payload()
	if err != nil {
		return nil, err
	}
	st, phase, err := s.sess.ToolState()
	if err != nil {
		return nil, err
	}
	return sessionStateResult{Payload: p, Phase: phase.String(), Tool: newToolResult(st), Busy: s.sess.Busy()}, nil
}

// === Editing Stage Handlers ===

type toolBeginArgs struct {
	Tool string `json:"tool"`
}

func (s *Server) handleToolBegin(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a toolBeginArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	kind, err := tool.ParseKind(a.Tool)
	if err != nil {
		return nil, err
	}
	st, err := s.sess.Begin(ctx, kind)
	if err != nil {
		return nil, err
	}
	return newToolResult(st), nil
}

func (s *Server) handleToolAdjust(args json.RawMessage) (interface{}, error) {
	var a tool.Action
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Op == "" {
		return nil, editerr.Validationf("tool.adjust", "op is required")
	}
	st, err := s.sess.Adjust(a)
	if err != nil {
		return nil, err
	}
	return newToolResult(st), nil
}

// === Project Handlers ===

func (s *Server) handleProjectsList(ctx context.Context) (interface{}, error) {
	u, err := s.auth.Require("projects.list")
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.Refresh(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"projects": items, "count": len(items)}, nil
}

type projectDeleteArgs struct {
	ProjectID string `json:"project_id"`
}

func (s *Server) handleProjectDelete(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a projectDeleteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ProjectID == "" {
		return nil, editerr.Validationf("project.delete", "project_id is required")
	}
	if err := s.catalog.Delete(ctx, a.ProjectID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": a.ProjectID, "projects": s.catalog.Items()}, nil
}

func (s *Server) handleProjectsClear(ctx context.Context) (interface{}, error) {
	u, err := s.auth.Require("projects.clear")
	if err != nil {
		return nil, err
	}
	n, err := s.catalog.Clear(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return map[string]int{"deleted": n}, nil
}

// === Catalog ===

type catalogResult struct {
	Tools        []tool.Kind `json:"tools"`
	Effects      []string    `json:"effects"`
	FilterParams []string    `json:"filter_params"`
	FactorRange  [2]float64  `json:"factor_range"`
	BlurRange    [2]float64  `json:"blur_range"`
	TextPalette  []string    `json:"text_palette"`
	TextSizes    [2]int      `json:"text_size_range"`
}

func catalogInfo() catalogResult {
	return catalogResult{
		Tools:   tool.Kinds(),
		Effects: colormatrix.EffectNames(),
		FilterParams: []string{
			string(tool.ParamBrightness), string(tool.ParamContrast),
			string(tool.ParamSaturation), string(tool.ParamBlur),
		},
		FactorRange: [2]float64{colormatrix.MinFactor, colormatrix.MaxFactor},
		BlurRange:   [2]float64{colormatrix.MinBlur, colormatrix.MaxBlur},
		TextPalette: tool.TextPalette,
		TextSizes:   [2]int{tool.MinTextSize, tool.MaxTextSize},
	}
}
