package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/relic-scan/internal/imaging"
	"github.com/ironsheep/relic-scan/internal/layout"
	"github.com/ironsheep/relic-scan/internal/market"
	"github.com/ironsheep/relic-scan/internal/match"
	"github.com/ironsheep/relic-scan/internal/normalize"
	"github.com/ironsheep/relic-scan/internal/session"
)

// Errors for tools whose backing component was not configured.
var (
	ErrNoPrices = errors.New("price lookup is not configured")
	ErrNoOCR    = errors.New("OCR is not configured")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "relic_scan", "relic_match").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
	// Scanning
	case "relic_scan":
		return s.handleRelicScan(ctx, args)
	case "relic_layouts":
		return s.handleRelicLayouts()

	// Text
	case "relic_match":
		return s.handleRelicMatch(args)
	case "relic_normalize":
		return s.handleRelicNormalize(args)
	case "relic_catalog":
		return s.handleRelicCatalog(args)

	// Market
	case "relic_price":
		return s.handleRelicPrice(ctx, args)

	// Diagnostics
	case "relic_ocr_info":
		return s.handleOCRInfo()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Scanning ===

type scanArgs struct {
	Path         string `json:"path"`
	Prices       bool   `json:"prices"`
	AnnotatePath string `json:"annotate_path"`
}

type scanResult struct {
	Capture   *imaging.CaptureInfo `json:"capture"`
	Outcome   layout.Outcome       `json:"outcome"`
	Prices    []session.Priced     `json:"prices,omitempty"`
	Annotated string               `json:"annotated,omitempty"`
}

func (s *Server) handleRelicScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Prices && s.prices == nil {
		return nil, ErrNoPrices
	}

	info, err := s.cache.Info(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	out, err := s.session.RunScan(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := scanResult{Capture: info, Outcome: out}
	if a.Prices {
		result.Prices = s.session.Prices(ctx, out)
	}
	if a.AnnotatePath != "" {
		annotated := imaging.Annotate(img, session.Labels(out, img.Bounds()))
		if err := imaging.SaveAnnotated(annotated, a.AnnotatePath); err != nil {
			return nil, err
		}
		result.Annotated = a.AnnotatePath
	}
	return result, nil
}

func (s *Server) handleRelicLayouts() (interface{}, error) {
	return map[string]interface{}{
		"reference_width":  layout.ReferenceWidth,
		"reference_height": layout.ReferenceHeight,
		"layouts":          layout.All(),
	}, nil
}

// === Text ===

type textArgs struct {
	Text  string `json:"text"`
	Debug bool   `json:"debug"`
}

type matchResult struct {
	Input   string         `json:"input"`
	Cleaned string         `json:"cleaned"`
	Results []match.Result `json:"results"`
	Traces  []match.Trace  `json:"traces,omitempty"`
}

func (s *Server) handleRelicMatch(args json.RawMessage) (interface{}, error) {
	var a textArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	cleaned := normalize.Text(a.Text)
	report := match.New(s.catalog, match.Options{Debug: a.Debug}).Match(cleaned)

	results := report.Results
	if results == nil {
		results = []match.Result{}
	}
	return matchResult{
		Input:   a.Text,
		Cleaned: cleaned,
		Results: results,
		Traces:  report.Traces,
	}, nil
}

func (s *Server) handleRelicNormalize(args json.RawMessage) (interface{}, error) {
	var a textArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]string{
		"input":   a.Text,
		"cleaned": normalize.Text(a.Text),
	}, nil
}

type catalogArgs struct {
	Contains string `json:"contains"`
}

func (s *Server) handleRelicCatalog(args json.RawMessage) (interface{}, error) {
	var a catalogArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}

	needle := strings.ToLower(strings.TrimSpace(a.Contains))
	names := make([]string, 0, s.catalog.Len())
	s.catalog.Each(func(name string) {
		if needle == "" || strings.Contains(strings.ToLower(name), needle) {
			names = append(names, name)
		}
	})
	return map[string]interface{}{
		"count": len(names),
		"names": names,
	}, nil
}

// === Market ===

type priceArgs struct {
	Item string `json:"item"`
}

func (s *Server) handleRelicPrice(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a priceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Item == "" {
		return nil, errors.New("item is required")
	}
	if s.prices == nil {
		return nil, ErrNoPrices
	}

	price, err := s.prices.Price(ctx, a.Item)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"item":     a.Item,
		"url_name": market.URLName(a.Item),
		"price":    price,
	}, nil
}

// === Diagnostics ===

func (s *Server) handleOCRInfo() (interface{}, error) {
	if s.ocr == nil {
		return nil, ErrNoOCR
	}
	return s.ocr.Info(), nil
}
