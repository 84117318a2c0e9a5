package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/feature-match-mcp/internal/features"
	"github.com/ironsheep/feature-match-mcp/internal/imaging"
	"github.com/ironsheep/feature-match-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "features_match").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
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
//
// Feature tools decode their arguments over a copy of the server's base
// pipeline configuration, so any configuration field may be overridden per
// call and omitted fields keep their configured values.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "features_algorithms":
		return s.handleAlgorithms()
	case "features_detect":
		return s.handleDetect(args)
	case "features_match":
		return s.handleMatch(args)
	case "features_match_sequence":
		return s.handleMatchSequence(args)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Algorithm Catalogue ===

type algorithmInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Format    string `json:"format,omitempty"`
}

type algorithmsResult struct {
	Detectors   []algorithmInfo `json:"detectors"`
	Descriptors []algorithmInfo `json:"descriptors"`
	Matchers    []string        `json:"matchers"`
	Selectors   []string        `json:"selectors"`
	Defaults    pipeline.Config `json:"defaults"`
}

func (s *Server) handleAlgorithms() (interface{}, error) {
	res := &algorithmsResult{
		Matchers: []string{
			features.MatcherBruteForce.String(),
			features.MatcherApproximateNN.String(),
		},
		Selectors: []string{
			features.SelectorNearestNeighbor.String(),
			features.SelectorRatioTestKNN.String(),
		},
		Defaults: s.config,
	}
	for _, k := range features.DetectorKinds() {
		res.Detectors = append(res.Detectors, algorithmInfo{
			Name:      k.String(),
			Available: features.DetectorAvailable(k),
		})
	}
	for _, k := range features.DescriptorKinds() {
		res.Descriptors = append(res.Descriptors, algorithmInfo{
			Name:      k.String(),
			Available: features.DescriptorAvailable(k),
			Format:    k.Format().String(),
		})
	}
	return res, nil
}

// === Feature Tools ===

type detectArgs struct {
	Path string `json:"path"`
	pipeline.Config
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	a := detectArgs{Config: s.config}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	p, err := s.newPipeline(a.Config)
	if err != nil {
		return nil, err
	}
	return p.DetectFile(a.Path)
}

type matchArgs struct {
	Source    string `json:"source"`
	Reference string `json:"reference"`
	pipeline.Config
}

func (s *Server) handleMatch(args json.RawMessage) (interface{}, error) {
	a := matchArgs{Config: s.config}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" || a.Reference == "" {
		return nil, fmt.Errorf("source and reference are required")
	}
	p, err := s.newPipeline(a.Config)
	if err != nil {
		return nil, err
	}
	return p.MatchFiles(a.Source, a.Reference)
}

type matchSequenceArgs struct {
	Paths []string `json:"paths"`
	pipeline.Config
}

func (s *Server) handleMatchSequence(args json.RawMessage) (interface{}, error) {
	a := matchSequenceArgs{Config: s.config}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) < 2 {
		return nil, fmt.Errorf("paths needs at least 2 frames, got %d", len(a.Paths))
	}
	p, err := s.newPipeline(a.Config)
	if err != nil {
		return nil, err
	}
	return p.RunSequence(a.Paths)
}

func (s *Server) newPipeline(cfg pipeline.Config) (*pipeline.Pipeline, error) {
	return pipeline.New(cfg, pipeline.WithCache(s.cache), pipeline.WithLogger(s.logger))
}
