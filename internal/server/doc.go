// Package server exposes a photo edit session as an MCP (Model Context
// Protocol) server.
//
// The server speaks JSON-RPC 2.0 over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Account:
//   - auth_login, auth_logout, auth_status
//
// Session:
//   - session_open: Import a photo and seed a new history
//   - session_resume: Rebuild the session from a stage payload
//   - session_state: History, cursor, project link and active stage
//
// Editing stages:
//   - tool_begin: Start crop, flip, filter, effect or text
//   - tool_adjust: Change the active stage's parameters
//   - tool_confirm: Render, export and commit the stage
//   - tool_cancel: Discard the stage
//
// History:
//   - history_undo, history_redo
//
// Output and projects:
//   - image_export: Copy the current version to the export directory
//   - project_save: Upload and record the current version
//   - projects_list, project_delete, projects_clear
//   - effects_list: Stage and effect catalog
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - code: -32602 for malformed arguments and rejected requests, -32000 for
//     failures while rendering, writing, uploading or storing
//   - message: Human-readable error description
//   - data: {"kind": "validation|capture|io|network|not_found|other", "detail": "..."}
//
// # Usage
//
//	srv := server.New(sess, authSession, projects)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
