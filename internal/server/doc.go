// Package server implements the MCP (Model Context Protocol) server for
// feature detection and matching tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the feature
// pipeline through the MCP protocol, so MCP-compatible clients can detect
// keypoints in images and match them across frames.
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
//   - image_load: Load image and get metadata
//   - features_algorithms: List supported algorithms and the defaults
//   - features_detect: Detect keypoints in one image
//   - features_match: Match keypoints between a source and a reference image
//   - features_match_sequence: Match consecutive frames of a sequence
//
// The feature tools accept every pipeline configuration field as an
// optional argument. Arguments are decoded over the configuration the
// server was started with, so a call only needs the fields it changes.
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images and of the
// grayscale frames derived from them. The cache persists for the lifetime
// of the server process; sequence matching evicts frames it no longer needs.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger), server.WithConfig(cfg))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server stopped")
//	}
package server
