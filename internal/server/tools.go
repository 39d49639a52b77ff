package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of tools without parameters.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Account
		{
			Name:        "auth_login",
			Description: "Sign a user in. Saving and the project list require a signed-in user.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"user_id": map[string]interface{}{
						"type":        "string",
						"description": "Account identifier",
					},
					"email": map[string]interface{}{
						"type":        "string",
						"description": "Optional email address",
					},
				},
				"required": []string{"user_id"},
			},
		},
		{
			Name:        "auth_logout",
			Description: "Sign the current user out.",
			InputSchema: noArgs(),
		},
		{
			Name:        "auth_status",
			Description: "Report whether a user is signed in.",
			InputSchema: noArgs(),
		},

		// Session
		{
			Name:        "session_open",
			Description: "Import a photo and start a new edit history seeded with it. The session is not linked to a saved project.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the photo (JPEG, PNG or GIF)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "session_resume",
			Description: "Rebuild the session from a payload returned by an earlier call (versions, cursor, current image and project id).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"payload": map[string]interface{}{
						"type":        "object",
						"description": "Payload with current_image_uri, versions, cursor and project_id",
					},
				},
				"required": []string{"payload"},
			},
		},
		{
			Name:        "session_state",
			Description: "Return the history, the cursor, the linked project and the active tool state.",
			InputSchema: noArgs(),
		},

		// Editing stages
		{
			Name:        "tool_begin",
			Description: "Start an editing stage on the current version. Only one stage can be active.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tool": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"crop", "flip", "filter", "effect", "text"},
						"description": "Stage to start",
					},
				},
				"required": []string{"tool"},
			},
		},
		{
			Name: "tool_adjust",
			Description: "Adjust the active stage. Operations per stage: " +
				"crop set_rect(x,y,width,height); flip toggle_horizontal, toggle_vertical; " +
				"filter select(param), nudge(delta), set(param,value); effect select(effect); " +
				"text set_text(text), resize(delta), set_color(color), move_to(x,y).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"op": map[string]interface{}{
						"type":        "string",
						"description": "Adjustment to apply",
					},
					"param": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"brightness", "contrast", "saturation", "blur"},
						"description": "Filter parameter",
					},
					"value":  map[string]interface{}{"type": "number", "description": "New filter value (clamped)"},
					"delta":  map[string]interface{}{"type": "number", "description": "Filter nudge or text size change (clamped)"},
					"effect": map[string]interface{}{"type": "string", "description": "Effect name, see effects_list"},
					"text":   map[string]interface{}{"type": "string", "description": "Overlay text"},
					"color":  map[string]interface{}{"type": "string", "description": "Text color as #RRGGBB"},
					"x":      map[string]interface{}{"type": "integer", "description": "X coordinate in pixels"},
					"y":      map[string]interface{}{"type": "integer", "description": "Y coordinate in pixels"},
					"width":  map[string]interface{}{"type": "integer", "description": "Crop width in pixels"},
					"height": map[string]interface{}{"type": "integer", "description": "Crop height in pixels"},
				},
				"required": []string{"op"},
			},
		},
		{
			Name:        "tool_confirm",
			Description: "Render the active stage, save it as a new version and append it to the history. Versions after the cursor are discarded.",
			InputSchema: noArgs(),
		},
		{
			Name:        "tool_cancel",
			Description: "Discard the active stage without changing the history.",
			InputSchema: noArgs(),
		},

		// History
		{
			Name:        "history_undo",
			Description: "Move back one version. Does nothing at the first version. Refused while a stage is active.",
			InputSchema: noArgs(),
		},
		{
			Name:        "history_redo",
			Description: "Move forward one version. Does nothing at the newest version. Refused while a stage is active.",
			InputSchema: noArgs(),
		},

		// Output
		{
			Name:        "image_export",
			Description: "Copy the current version to the export directory as edited_<millis>.jpg.",
			InputSchema: noArgs(),
		},
		{
			Name:        "project_save",
			Description: "Upload the current version to the image host and create or update the project record.",
			InputSchema: noArgs(),
		},

		// Projects
		{
			Name:        "projects_list",
			Description: "List the signed-in user's saved projects, newest first.",
			InputSchema: noArgs(),
		},
		{
			Name:        "project_delete",
			Description: "Delete one saved project.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"project_id": map[string]interface{}{
						"type":        "string",
						"description": "Project identifier from projects_list",
					},
				},
				"required": []string{"project_id"},
			},
		},
		{
			Name:        "projects_clear",
			Description: "Delete every saved project of the signed-in user.",
			InputSchema: noArgs(),
		},

		// Catalog
		{
			Name:        "effects_list",
			Description: "List the stages, effects, filter parameters with their ranges and the text palette.",
			InputSchema: noArgs(),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
