// Package server implements the MCP (Model Context Protocol) server for relic
// reward scanning.
//
// This package provides a JSON-RPC 2.0 server that exposes the scanning
// pipeline through the MCP protocol, so an assistant or any other MCP client
// can scan reward captures and inspect how each name was matched.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
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
// Scanning:
//   - relic_scan: Scan a capture, optionally with prices and an annotated copy
//   - relic_layouts: The fixed slot layouts
//
// Text:
//   - relic_match: Clean up and match OCR text
//   - relic_normalize: Clean up OCR text only
//   - relic_catalog: List known item names
//
// Market:
//   - relic_price: Cheapest in-game sell order for an item
//
// Diagnostics:
//   - relic_ocr_info: Tesseract availability and version
//
// # Image Caching
//
// Captures are cached by path for the lifetime of the server process, so
// scanning the same file twice skips decoding.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// A scan that finds no rewards is not an error. Its outcome has no layout
// and an empty name list.
package server
