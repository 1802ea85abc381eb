package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/catalog"
	"github.com/ironsheep/relic-scan/internal/imaging"
	"github.com/ironsheep/relic-scan/internal/ocr"
	"github.com/ironsheep/relic-scan/internal/session"
)

// Deps are the components the tools run against. Catalog and Session are
// required; Prices and OCR are optional and their tools fail without them.
type Deps struct {
	Catalog *catalog.Catalog
	Session *session.Session
	Prices  session.PriceLookup
	OCR     *ocr.Tesseract
	Cache   *imaging.ImageCache
	Logger  zerolog.Logger
	Version string
}

// Server handles MCP protocol communication
type Server struct {
	catalog *catalog.Catalog
	session *session.Session
	prices  session.PriceLookup
	ocr     *ocr.Tesseract
	cache   *imaging.ImageCache
	log     zerolog.Logger
	version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(deps Deps) *Server {
	cache := deps.Cache
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Server{
		catalog: deps.Catalog,
		session: deps.Session,
		prices:  deps.Prices,
		ocr:     deps.OCR,
		cache:   cache,
		log:     deps.Logger,
		version: version,
	}
}

// Run serves MCP on stdin and stdout until stdin closes or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "relic-scan",
				"version": s.version,
			},
		},
	}
}
