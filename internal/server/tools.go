package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func textProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Scanning
		{
			Name:        "relic_scan",
			Description: "Scan a reward screen capture. Works out how many reward slots are shown and returns the matched item names in slot order, with per-region OCR detail. Optionally looks up prices and writes an annotated copy of the capture.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": textProperty("Absolute path to the capture (PNG, JPEG, GIF or BMP)"),
					"prices": map[string]interface{}{
						"type":        "boolean",
						"description": "Look up the current price of every matched item. Default false",
						"default":     false,
					},
					"annotate_path": textProperty("Optional path to write the capture with region outlines and labels"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "relic_layouts",
			Description: "List the fixed reward slot layouts and their regions at the 1920x1080 reference resolution.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Text
		{
			Name:        "relic_match",
			Description: "Clean up OCR text and match it against the item catalog. Returns one result per sub-phrase, either a matched catalog name or the unknown fragment.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": textProperty("Raw OCR text for one region"),
					"debug": map[string]interface{}{
						"type":        "boolean",
						"description": "Include every candidate score for each sub-phrase. Default false",
						"default":     false,
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "relic_normalize",
			Description: "Apply the OCR cleanup rules (ligature repairs, accent stripping, separator and whitespace cleanup) to text without matching it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": textProperty("Raw OCR text"),
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "relic_catalog",
			Description: "List the catalog of known item names.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"contains": textProperty("Optional case-insensitive substring filter"),
				},
			},
		},

		// Market
		{
			Name:        "relic_price",
			Description: "Look up the cheapest in-game sell order for an item on warframe.market.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"item": textProperty("Catalog item name, e.g. \"Lex Prime Barrel\""),
				},
				"required": []string{"item"},
			},
		},

		// Diagnostics
		{
			Name:        "relic_ocr_info",
			Description: "Report whether Tesseract is available, its version and the configured language.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
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
