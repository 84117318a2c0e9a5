package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/feature-match-mcp/internal/features"
	"github.com/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Resolves(t *testing.T) {
	r, err := DefaultConfig().Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.Detector != features.DetectorShiTomasi {
		t.Errorf("detector: got %v", r.Detector)
	}
	if r.Descriptor != features.DescriptorBRIEF {
		t.Errorf("descriptor: got %v", r.Descriptor)
	}
	if r.Match.Matcher != features.MatcherBruteForce || r.Match.Selector != features.SelectorNearestNeighbor {
		t.Errorf("match options: got %+v", r.Match)
	}
	if r.Match.Ratio != 0.8 {
		t.Errorf("ratio: got %g, want 0.8", r.Match.Ratio)
	}
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"detector": "harris",
		"selector": "SEL_KNN",
		"harris": {"min_response": 100, "policy": "first"},
		"fast": {"type": "7_12"},
		"image": {"grayscale": "lightness"},
		"max_keypoints": 50
	}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Harris.MinResponse != 100 || cfg.Harris.Policy != features.PolicyFirstMatch {
		t.Errorf("harris: got %+v", cfg.Harris)
	}
	if cfg.Harris.BlockSize != 2 || cfg.Harris.ApertureSize != 3 {
		t.Errorf("harris defaults lost: %+v", cfg.Harris)
	}
	if cfg.FAST.Type != features.FAST712 || cfg.FAST.Threshold != 80 {
		t.Errorf("fast: got %+v", cfg.FAST)
	}
	if cfg.Image.Scale != 1 || cfg.Image.Gray != "lightness" {
		t.Errorf("image: got %+v", cfg.Image)
	}
	if cfg.MaxKeypoints != 50 {
		t.Errorf("max_keypoints: got %d", cfg.MaxKeypoints)
	}

	r, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if r.Detector != features.DetectorHarris || r.Match.Selector != features.SelectorRatioTestKNN {
		t.Errorf("resolved: got %+v", r)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"detektor": "FAST"}`},
		{"bad json", `{"detector": `},
		{"bad policy", `{"harris": {"policy": "worst"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(EnvDetector, "FAST")
	t.Setenv(EnvMatcher, "MAT_FLANN")
	t.Setenv(EnvSelector, "SEL_KNN")
	t.Setenv(EnvRatio, "0.7")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Detector != "FAST" || cfg.Matcher != "MAT_FLANN" || cfg.Selector != "SEL_KNN" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Descriptor != "BRIEF" {
		t.Errorf("descriptor changed without env: %s", cfg.Descriptor)
	}
	if cfg.Ratio != 0.7 {
		t.Errorf("ratio: got %g, want 0.7", cfg.Ratio)
	}

	t.Setenv(EnvRatio, "most")
	if err := cfg.ApplyEnv(); !errors.Is(err, features.ErrInvalidParameter) {
		t.Errorf("bad ratio: got %v, want ErrInvalidParameter", err)
	}
}

func TestConfig_ResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"detector", func(c *Config) { c.Detector = "SURF" }, features.ErrUnsupportedAlgorithm},
		{"descriptor", func(c *Config) { c.Descriptor = "LATCH" }, features.ErrUnsupportedAlgorithm},
		{"matcher", func(c *Config) { c.Matcher = "MAT_LSH" }, features.ErrUnsupportedAlgorithm},
		{"selector", func(c *Config) { c.Selector = "SEL_ALL" }, features.ErrUnsupportedAlgorithm},
		{"image scale", func(c *Config) { c.Image.Scale = 0 }, features.ErrInvalidParameter},
		{"max keypoints", func(c *Config) { c.MaxKeypoints = -1 }, features.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := cfg.Resolve(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
