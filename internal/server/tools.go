package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and color model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Algorithm Catalogue
		{
			Name:        "features_algorithms",
			Description: "List the detector, descriptor, matcher and selector names this build supports, whether each is available, and the default configuration.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Feature Operations
		{
			Name:        "features_detect",
			Description: "Detect keypoints in an image. Returns keypoint positions, sizes and responses in the coordinates of the preprocessed frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "features_match",
			Description: "Detect, describe and match keypoints between a source and a reference image. Each match pairs a source keypoint index with a reference keypoint index and their descriptor distance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"source": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the source image",
					},
					"reference": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the reference image",
					},
				}),
				"required": []string{"source", "reference"},
			},
		},
		{
			Name:        "features_match_sequence",
			Description: "Match each consecutive pair of frames in an image sequence. The earlier frame of each pair is the source, the later one is the reference.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withConfigProperties(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    2,
						"description": "Absolute paths of the frames in order",
					},
				}),
				"required": []string{"paths"},
			},
		},
	}
}

// withConfigProperties adds the pipeline configuration fields shared by
// the feature tools to props. Every field is optional and overrides the
// server's configuration for that call only.
func withConfigProperties(props map[string]interface{}) map[string]interface{} {
	props["detector"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"SHITOMASI", "HARRIS", "FAST", "BRISK", "ORB", "AKAZE", "SIFT"},
		"description": "Keypoint detector",
	}
	props["descriptor"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"BRIEF", "BRISK", "ORB", "AKAZE", "FREAK", "SIFT"},
		"description": "Descriptor extractor",
	}
	props["matcher"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"MAT_BF", "MAT_FLANN"},
		"description": "Brute force or approximate nearest-neighbour search",
	}
	props["selector"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"SEL_NN", "SEL_KNN"},
		"description": "Best match only, or 2-NN with ratio test",
	}
	props["ratio"] = map[string]interface{}{
		"type":        "number",
		"description": "Ratio test threshold for SEL_KNN (default: 0.8)",
	}
	props["cross_check"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Keep only mutual best matches; MAT_BF with SEL_NN only (default: false)",
	}
	props["checks"] = map[string]interface{}{
		"type":        "integer",
		"description": "Leaves visited per approximate query; negative searches exactly (default: 32)",
	}
	props["harris"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"block_size":    map[string]interface{}{"type": "integer"},
			"aperture_size": map[string]interface{}{"type": "integer", "enum": []int{3, 5, 7}},
			"k":             map[string]interface{}{"type": "number"},
			"min_response":  map[string]interface{}{"type": "number"},
			"max_overlap":   map[string]interface{}{"type": "number"},
			"policy":        map[string]interface{}{"type": "string", "enum": []string{"best", "first"}},
		},
	}
	props["shi_tomasi"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"block_size":    map[string]interface{}{"type": "integer"},
			"max_overlap":   map[string]interface{}{"type": "number"},
			"quality_level": map[string]interface{}{"type": "number"},
			"use_harris":    map[string]interface{}{"type": "boolean"},
			"k":             map[string]interface{}{"type": "number"},
			"max_corners":   map[string]interface{}{"type": "integer"},
		},
	}
	props["fast"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"threshold":          map[string]interface{}{"type": "integer"},
			"nonmax_suppression": map[string]interface{}{"type": "boolean"},
			"type":               map[string]interface{}{"type": "string", "enum": []string{"9_16", "7_12", "5_8"}},
		},
	}
	props["brief"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"bytes":       map[string]interface{}{"type": "integer", "enum": []int{16, 32, 64}},
			"half_window": map[string]interface{}{"type": "integer"},
			"blur_radius": map[string]interface{}{"type": "number"},
			"seed":        map[string]interface{}{"type": "integer"},
		},
	}
	props["image"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"scale":       map[string]interface{}{"type": "number"},
			"grayscale":   map[string]interface{}{"type": "string", "enum": []string{"luma", "lightness"}},
			"blur_radius": map[string]interface{}{"type": "number"},
		},
		"description": "Preprocessing applied before detection",
	}
	props["focus"] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"description": "Keep keypoints inside this region, in original image pixels",
	}
	props["max_keypoints"] = map[string]interface{}{
		"type":        "integer",
		"description": "Keep only the strongest N keypoints when positive",
	}
	return props
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
